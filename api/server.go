package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/blacklist"
	"github.com/katatrina/complaint-BE/internal/event"
	"github.com/katatrina/complaint-BE/internal/proxy"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/katatrina/complaint-BE/internal/util"
	"github.com/rs/zerolog/log"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	tokenMaker  token.Maker
	blacklist   blacklist.Blacklist
	proxyRouter *proxy.Router
	hub         *event.Hub
	config      util.Config
}

// NewServer creates a new HTTP server and set up routing.
// proxyRouter may be nil, in which case the partner routes are not mounted.
func NewServer(config util.Config, tokenBlacklist blacklist.Blacklist, proxyRouter *proxy.Router, hub *event.Hub) (*Server, error) {
	// Create a new JWT token maker
	tokenMaker, err := token.NewJWTMaker(config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	server := &Server{
		tokenMaker:  tokenMaker,
		blacklist:   tokenBlacklist,
		proxyRouter: proxyRouter,
		hub:         hub,
		config:      config,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/health", server.health)

	// The socket handshake authenticates itself from the query string.
	router.GET("/socket", server.serveSocket)

	router.POST("/auth/verify", server.verifyAccessToken)

	authGroup := router.Group("/")
	authGroup.Use(authMiddleware(server.tokenMaker, server.blacklist))
	{
		authGroup.POST("auth/logout", server.logoutUser)
		authGroup.GET("events/stream", server.streamEvents)

		if server.proxyRouter != nil {
			authGroup.Any("admin/*path", server.proxyAdminRequest)
		} else {
			log.Warn().Msg("PARTNER_API_BASE_URL is not set, partner proxy routes are disabled ⚠️")
		}
	}

	server.router = router
	return router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	server.httpServer = &http.Server{
		Addr:    address,
		Handler: server.router,
	}

	err := server.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (server *Server) Shutdown(ctx context.Context) error {
	if server.httpServer == nil {
		return nil
	}
	return server.httpServer.Shutdown(ctx)
}

func (server *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"proxy":   server.proxyRouter != nil,
		"clients": server.hub.ClientCount(),
	})
}
