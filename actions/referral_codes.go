package actions

import (
	"github.com/gin-gonic/gin"
)

// ValidateReferralCode godoc
// swagger:route GET /referral-codes/{code} referrals validate_referral_code
// Validate referral code
//
// Returns the owner of an active referral code
//
//	Responses:
//	  200: CreatorRef
//	  422: RequestErrorResp
func (actions *Actions) ValidateReferralCode(c *gin.Context) {
	owner, err := actions.service.ValidateReferralCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, owner)
}

// IssueReferralCode godoc
// swagger:route POST /creators/{creator_id}/referral-code referrals issue_referral_code
// Issue referral code
//
// Returns the active referral code of the creator, creating one when needed
//
//	Responses:
//	  200: ReferralCodeResponse
//	  404: RequestErrorResp
func (actions *Actions) IssueReferralCode(c *gin.Context) {
	code, err := actions.service.IssueOrGetReferralCode(c.Request.Context(), c.Param("creator_id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, code)
}

func (actions *Actions) DeactivateReferralCode(c *gin.Context) {
	if err := actions.service.DeactivateReferralCode(c.Request.Context(), c.Param("code")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, "ok")
}
