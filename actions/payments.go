package actions

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/creatorhub/commission_api/model"
)

// ProcessPayment godoc
// swagger:route POST /internal/payments internal process_payment
// Process payment
//
// Splits a completed payment between the paid creator, its upline and the
// platform. Replaying an event_id returns the first result.
//
//	Consumes:
//	- application/json
//	- application/x-www-form-urlencoded
//
//	Responses:
//	  200: CommissionResult
//	  400: RequestErrorResp
//	  404: RequestErrorResp
//	  503: RequestErrorResp
func (actions *Actions) ProcessPayment(c *gin.Context) {
	event := model.EarningEvent{}
	if err := c.ShouldBind(&event); err != nil {
		abortWithError(c, BadRequest, "invalid payment event")
		return
	}
	result, err := actions.service.ProcessPayment(c.Request.Context(), event)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, result)
}

// DistributeEarning godoc
// swagger:route POST /internal/commissions internal distribute_earning
// Distribute earning
//
// Pays the upline commissions of an earning without crediting the creator
//
//	Responses:
//	  200: CommissionResult
//	  400: RequestErrorResp
//	  503: RequestErrorResp
func (actions *Actions) DistributeEarning(c *gin.Context) {
	event := model.EarningEvent{}
	if err := c.ShouldBind(&event); err != nil {
		abortWithError(c, BadRequest, "invalid earning event")
		return
	}
	result, err := actions.service.DistributeEarning(c.Request.Context(), event)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, result)
}
