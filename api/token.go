package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/rs/zerolog/log"
)

type verifyAccessTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type verifyAccessTokenResponse struct {
	Principal token.Principal `json:"principal"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (server *Server) verifyAccessToken(c *gin.Context) {
	req := new(verifyAccessTokenRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	payload, err := verifyToken(c, server.tokenMaker, server.blacklist, req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, verifyAccessTokenResponse{
		Principal: payload.Principal(),
		ExpiresAt: payload.ExpiresAtTime(),
	})
}

// logoutUser blacklists the caller's token until it would have expired anyway.
func (server *Server) logoutUser(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)
	accessToken := c.GetString(accessTokenKey)

	if err := server.blacklist.Add(c, accessToken, authPayload.ExpiresAtTime()); err != nil {
		log.Error().Err(err).Str("user", authPayload.Subject).Msg("failed to blacklist token")
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	log.Info().Str("user", authPayload.Subject).Msg("user logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
