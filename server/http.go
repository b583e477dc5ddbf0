package server

import (
	"fmt"
	"net/http"

	limit "github.com/bu/gin-access-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.com/creatorhub/commission_api/actions"
	"gitlab.com/creatorhub/commission_api/logger"
)

// NewRouter registers every route of the API
func NewRouter(a *actions.Actions, internalAllowedIPs string) *gin.Engine {
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "X-Requested-With", "Content-Length", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "PUT", "POST", "OPTIONS"}

	r.Use(cors.New(corsConfig)) // Allow requests from anywhere
	r.Use(gin.Recovery())       // Recovery middleware recovers from any panics and writes a 500 if there was one.

	r.Use(logger.SetLogger(logger.Config{SkipPath: []string{"/ping"}}))

	r.GET("/ping", actions.Ping)

	r.GET("/referral-codes/:code", a.ValidateReferralCode)

	creators := r.Group("/creators/:creator_id")
	{
		creators.POST("/referral-code", a.IssueReferralCode)
		creators.GET("/financials", a.GetFinancials)
		creators.GET("/transactions", a.GetTransactions)
		creators.POST("/withdrawals", a.RequestWithdrawal)
	}

	network := r.Group("/network/:username")
	{
		network.GET("/tree", a.GetNetworkTree)
		network.GET("/direct", a.GetDirectDownline)
		network.GET("/upline", a.GetUpline)
	}

	// internal API
	internal := r.Group("/internal")
	{
		limit.TrustedHeaderField = "X-Forwarded-For"
		internal.Use(limit.CIDR(internalAllowedIPs))

		internal.PUT("/creators/:creator_id", a.RegisterCreator)
		internal.POST("/memberships", a.AddMembership)
		internal.POST("/payments", a.ProcessPayment)
		internal.POST("/commissions", a.DistributeEarning)
		internal.PUT("/referral-codes/:code/deactivate", a.DeactivateReferralCode)
		internal.POST("/financials/:creator_id/recompute", a.RecomputeFinancials)
	}

	return r
}

func (srv *server) newHTTPServer() *http.Server {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.config.Server.API.Port),
		Handler: NewRouter(srv.actions, srv.config.Server.API.InternalAllowedIPs),
	}
	httpServer.SetKeepAlivesEnabled(srv.config.Server.API.KeepAlive)
	return httpServer
}

func (srv *server) ListenToRequests() error {
	log.Info().Str("worker", "http_listen_to_requests").Str("action", "start").Msg("HTTP Listen to requests - started")
	defer log.Info().Str("worker", "http_listen_to_requests").Str("action", "stop").Msg("HTTP Listen to requests - stopped")

	port := srv.config.Server.API.Port
	if err := srv.HTTP.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			log.Error().Err(err).Str("section", "server").Str("action", "ListenToRequests").Msgf("Unable to listen %d port", port)
			return err
		}
	}
	return nil
}
