package actions

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/creatorhub/commission_api/model"
)

// AddMembership godoc
// swagger:route POST /internal/memberships internal add_membership
// Add membership
//
// Places a creator under the owner of the given referral code
//
//	Consumes:
//	- application/json
//	- application/x-www-form-urlencoded
//
//	Responses:
//	  201: NetworkMembership
//	  409: RequestErrorResp
//	  422: RequestErrorResp
func (actions *Actions) AddMembership(c *gin.Context) {
	req := model.MembershipRequest{}
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, BadRequest, "creator_id and referral_code are required")
		return
	}
	membership, err := actions.service.AddMembership(c.Request.Context(), req.CreatorID, req.CreatorUsername, req.ReferralCode)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(Created, membership)
}

// GetNetworkTree godoc
// swagger:route GET /network/{username}/tree network get_network_tree
// Get network tree
//
// Returns the downline of the creator nested up to depth levels
//
//	Responses:
//	  200: []TreeNode
//	  404: RequestErrorResp
func (actions *Actions) GetNetworkTree(c *gin.Context) {
	depth := getQueryAsInt(c, "depth", model.MaxCommissionDepth)
	tree, err := actions.service.GetNetworkTree(c.Request.Context(), c.Param("username"), depth)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, tree)
}

// GetDirectDownline godoc
// swagger:route GET /network/{username}/direct network get_direct_downline
// Get direct downline
//
//	Responses:
//	  200: []NetworkMembership
//	  404: RequestErrorResp
func (actions *Actions) GetDirectDownline(c *gin.Context) {
	list, err := actions.service.GetDirectDownline(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, list)
}

// GetUpline returns the ancestors of the creator, nearest first
func (actions *Actions) GetUpline(c *gin.Context) {
	depth := getQueryAsInt(c, "depth", model.MaxCommissionDepth)
	chain, err := actions.service.GetAncestorChain(c.Request.Context(), c.Param("username"), depth)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, chain)
}
