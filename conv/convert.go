package conv

import (
	"strconv"

	"github.com/ericlagergren/decimal"
)

// MinorUnitPrecision is the number of decimals of the currency minor unit
const MinorUnitPrecision = 2

var zeroRounded decimal.Big

func init() {
	zeroRounded = decimal.Big{}
	zeroRounded.Context = decimal.Context128
	zeroRounded.Context.RoundingMode = decimal.ToZero
	zeroRounded.Quantize(8)
}

// ToUnits converts the given decimal amount into integer minor units. Digits
// beyond precision are truncated.
func ToUnits(amounts string, precision uint8) int64 {
	bytes := []byte(amounts)
	size := len(bytes)
	start := false
	pointPos := 0
	var dec int64
	i := 0
	for i = 0; i < size && (!start || (start && i-pointPos <= int(precision))); i++ {
		if !start && bytes[i] == '.' {
			start = true
			pointPos = i
		} else {
			dec = 10*dec + int64(bytes[i]-48) // ascii char for 0
		}
	}
	if !start {
		i = 1
	}
	for i-pointPos <= int(precision) {
		dec *= 10
		i++
	}
	return dec
}

// FromUnits formats integer minor units as a decimal string
func FromUnits(number int64, precision uint8) string {
	sign := ""
	if number < 0 {
		sign = "-"
		number = -number
	}
	bytes := []byte{48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48, 48}
	i := 0
	for (number != 0 || i < int(precision)) && i <= 28 {
		add := uint8(number % 10)
		number /= 10
		bytes[28-i] = 48 + add
		if i == int(precision)-1 {
			i++
			bytes[28-i] = 46 // . char
		}
		i++
	}
	i--
	if bytes[28-i] == 46 {
		return sign + string(bytes[28-i-1:])
	}

	return sign + string(bytes[28-i:])
}

// ParseMinorUnits parses an amount such as "12.34" into minor units (1234)
func ParseMinorUnits(amount string) int64 {
	return ToUnits(amount, MinorUnitPrecision)
}

// FormatMinorUnits formats minor units as an amount string
func FormatMinorUnits(amount int64) string {
	return FromUnits(amount, MinorUnitPrecision)
}

// NewRate builds an exact decimal rate from its shortest float representation
// so 0.03 is 3/100 and not the nearest binary fraction
func NewRate(rate float64) *decimal.Big {
	d := NewDecimalWithPrecision()
	if _, ok := d.SetString(strconv.FormatFloat(rate, 'f', -1, 64)); !ok {
		d.SetFloat64(0)
	}
	return d
}

// ApplyRate returns floor(amount * rate) for non negative amounts
func ApplyRate(amount int64, rate *decimal.Big) int64 {
	z := &decimal.Big{}
	z.Context = decimal.Context128
	z.Context.RoundingMode = decimal.ToZero
	z.Mul(new(decimal.Big).SetMantScale(amount, 0), rate)
	z.Quantize(0)
	v, ok := z.Int64()
	if !ok {
		return 0
	}
	return v
}

func CloneToPrecision(devAmount *decimal.Big) *decimal.Big {
	dec := &decimal.Big{}
	dec.Context = decimal.Context128
	dec.Context.RoundingMode = decimal.ToZero
	dec.Copy(devAmount)
	dec.Quantize(8)
	return dec
}

func NewDecimalWithPrecision() *decimal.Big {
	z := zeroRounded
	return &z
}
