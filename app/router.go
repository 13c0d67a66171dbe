// Package app implements chess.com profile and game ingestion and the HTTP
// routes that expose it, for both local and Lambda execution.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"example/chess-ingest/app/config"
	"example/chess-ingest/auth"
)

// NewRouter builds the shared HTTP router. Every route except /health sits
// behind the bearer-token middleware.
func NewRouter(api *API, authCfg config.AuthConfig) (*gin.Engine, error) {
	var verifier *auth.Verifier
	if !authCfg.Disabled {
		v, err := auth.NewVerifierFromConfig(authCfg)
		if err != nil {
			return nil, err
		}
		verifier = v
	}
	return newRouter(api, verifier, authCfg.Disabled), nil
}

func newRouter(api *API, verifier *auth.Verifier, authDisabled bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", Health)

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{
		Disabled: authDisabled,
		Logger:   api.Logger,
	}))

	read := protected.Group("/", auth.RequireScopes(auth.ScopeRead))
	read.GET("/players/profiles", api.GetProfiles)
	read.GET("/players/games", api.GetGames)
	read.GET("/players/:username/archives", api.GetArchives)
	read.GET("/jobs/:jobid", api.GetJobStatus)

	protected.POST("/jobs", auth.RequireScopes(auth.ScopeWrite), api.CreateJob)

	return router
}
