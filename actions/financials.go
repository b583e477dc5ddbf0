package actions

import (
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/creatorhub/commission_api/conv"
	"gitlab.com/creatorhub/commission_api/model"
)

// GetFinancials godoc
// swagger:route GET /creators/{creator_id}/financials financials get_financials
// Get financials
//
// Returns the balances and earnings of the creator in minor units
//
//	Responses:
//	  200: CreatorFinancials
//	  404: RequestErrorResp
func (actions *Actions) GetFinancials(c *gin.Context) {
	financials, err := actions.service.GetFinancials(c.Request.Context(), c.Param("creator_id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, financials)
}

// GetTransactions godoc
// swagger:route GET /creators/{creator_id}/transactions financials get_transactions
// Get transactions
//
// Lists the ledger of the creator, most recent first
//
//	Responses:
//	  200: TransactionList
//	  404: RequestErrorResp
func (actions *Actions) GetTransactions(c *gin.Context) {
	limit := getQueryAsInt(c, "limit", 0)
	list, err := actions.service.GetTransactions(c.Request.Context(), c.Param("creator_id"), limit)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, list)
}

// RequestWithdrawal godoc
// swagger:route POST /creators/{creator_id}/withdrawals financials request_withdrawal
// Request withdrawal
//
// Debits the available balance of the creator. A repeated request_id returns
// the first withdrawal.
//
//	Consumes:
//	- application/json
//	- application/x-www-form-urlencoded
//
//	Responses:
//	  201: Transaction
//	  400: RequestErrorResp
//	  402: RequestErrorResp
func (actions *Actions) RequestWithdrawal(c *gin.Context) {
	req := model.WithdrawalRequest{}
	if err := c.ShouldBind(&req); err != nil || !validateAmount(req.Amount) {
		abortWithError(c, BadRequest, "invalid amount")
		return
	}
	tx, err := actions.service.RequestWithdrawal(c.Request.Context(), c.Param("creator_id"), conv.ParseMinorUnits(req.Amount), req.RequestID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(Created, tx)
}

func (actions *Actions) RecomputeFinancials(c *gin.Context) {
	financials, err := actions.service.RecomputeFinancials(c.Request.Context(), c.Param("creator_id"), time.Now())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, financials)
}
