package actions

import (
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/service"
)

// Actions structure
type Actions struct {
	cfg     config.Config
	service *service.Service
}

// NewActions constructor
func NewActions(cfg config.Config, srv *service.Service) *Actions {
	return &Actions{
		cfg:     cfg,
		service: srv,
	}
}
