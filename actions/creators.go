package actions

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/creatorhub/commission_api/model"
)

// RegisterCreator godoc
// swagger:route PUT /internal/creators/{creator_id} internal register_creator
// Register creator
//
// Adds a creator to the directory or renames it
//
//	Consumes:
//	- application/json
//	- application/x-www-form-urlencoded
//
//	Responses:
//	  200: Creator
//	  400: RequestErrorResp
//	  409: RequestErrorResp
func (actions *Actions) RegisterCreator(c *gin.Context) {
	req := model.RegisterCreatorRequest{}
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, BadRequest, "username is required")
		return
	}
	creator, err := actions.service.RegisterCreator(c.Request.Context(), c.Param("creator_id"), req.Username)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(OK, creator)
}
