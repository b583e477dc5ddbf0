package model

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestReferralCodePrefix(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{
			name:     "Short username is uppercased",
			username: "alice",
			want:     "ALICE",
		},
		{
			name:     "Long username is truncated",
			username: "maximiliano",
			want:     "MAXIMILI",
		},
		{
			name:     "Separators and symbols are dropped",
			username: "john.doe_99-xyz",
			want:     "JOHNDOE9",
		},
		{
			name:     "Non ascii letters are dropped",
			username: "joão",
			want:     "JOO",
		},
		{
			name:     "Nothing usable gives an empty prefix",
			username: "__--",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferralCodePrefix(tt.username, 8))
		})
	}
}

func TestNewReferralCode(t *testing.T) {
	rc := NewReferralCode(&Creator{ID: "c1", Username: "Ana.Paula"}, 8, "x7k2")
	assert.Equal(t, "ANAPAULAX7K2", rc.Code)
	assert.Equal(t, "c1", rc.OwnerCreatorID)
	assert.Equal(t, true, rc.Active)
	assert.Equal(t, "ANAPAULAX7K2", NormalizeReferralCode(" anapaulax7k2 "))
}

func TestLedgerTotalsFinancials(t *testing.T) {
	f := LedgerTotals{Direct: 800, Network: 150, Withdrawals: 300, Monthly: 500}.Financials("c1")
	assert.Equal(t, int64(950), f.TotalEarnings)
	assert.Equal(t, int64(650), f.AvailableBalance)
	assert.Equal(t, f.TotalEarnings, f.DirectEarnings+f.NetworkEarnings)
	assert.Equal(t, int64(500), f.MonthlyRevenue)
}
