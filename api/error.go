package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthorized         = errors.New("Unauthorized")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrMissingAccessToken   = errors.New("access token is not provided")
	ErrBlacklistUnavailable = errors.New("token blacklist is unavailable")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
