package actions

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/creatorhub/commission_api/httputils"
	"gitlab.com/creatorhub/commission_api/logger"
	"gitlab.com/creatorhub/commission_api/service"
)

// Ping godoc
// swagger:route GET /ping misc ping
// Ping
//
// Ping the server
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
func Ping(c *gin.Context) {
	c.JSON(OK, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Stack().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message})
}

// abortWithServiceError maps an error returned by the service to a response
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidReferralCode):
		abortWithError(c, ValidationFailed, "invalid referral code")
	case errors.Is(err, service.ErrDuplicateMembership):
		abortWithError(c, Conflict, "creator already belongs to a network")
	case errors.Is(err, service.ErrReferralCycle):
		abortWithError(c, Conflict, "referral would create a cycle")
	case errors.Is(err, service.ErrUsernameTaken):
		abortWithError(c, Conflict, "username already taken")
	case errors.Is(err, service.ErrCreatorNotFound):
		abortWithError(c, NotFound, "creator not found")
	case errors.Is(err, service.ErrInvalidAmount):
		abortWithError(c, BadRequest, "invalid amount")
	case errors.Is(err, service.ErrMissingEventID):
		abortWithError(c, BadRequest, "event_id is required")
	case errors.Is(err, service.ErrInsufficientFunds):
		abortWithError(c, PaymentRequired, "insufficient funds")
	case errors.Is(err, service.ErrConcurrentBalanceUpdateConflict):
		abortWithError(c, ServiceUnavailable, "concurrent balance update, try again")
	default:
		l := getlog(c)
		l.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		abortWithError(c, ServerError, "server error, try again")
	}
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}

func getQueryAsInt(c *gin.Context, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	param, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return param
}

// maxAmountDigits keeps parsed amounts inside int64 minor units
const maxAmountDigits = 15

// validateAmount accepts a decimal with at most two fraction digits
func validateAmount(amount string) bool {
	if amount == "" {
		return false
	}
	dotFlag := false
	digits, fraction := 0, 0
	for _, ch := range amount {
		if ch >= '0' && ch <= '9' {
			digits++
			if dotFlag {
				fraction++
			}
			continue
		} else if ch == '.' && !dotFlag {
			dotFlag = true
		} else {
			return false
		}
	}

	return digits > 0 && digits <= maxAmountDigits && fraction <= 2
}
