package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/blacklist"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/rs/zerolog/log"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "Bearer"
	authorizationPayloadKey = "authPayload"
	accessTokenKey          = "accessToken"
)

// authMiddleware authenticates the user and rejects logged-out tokens.
func authMiddleware(tokenMaker token.Maker, tokenBlacklist blacklist.Blacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorizationHeader := ctx.GetHeader(authorizationHeaderKey)
		if authorizationHeader == "" {
			err := errors.New("authorization header is not provided")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) != 2 {
			err := errors.New("invalid authorization header format")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		authorizationHeaderType := fields[0]
		if authorizationHeaderType != authorizationTypeBearer {
			err := errors.New("unsupported authorization header type")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		accessToken := fields[1]
		payload, err := verifyToken(ctx, tokenMaker, tokenBlacklist, accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		ctx.Set(authorizationPayloadKey, payload)
		ctx.Set(accessTokenKey, accessToken)
		ctx.Next()
	}
}

// verifyToken checks the signature and expiry, then the blacklist.
// A blacklist lookup failure rejects the token.
func verifyToken(ctx context.Context, tokenMaker token.Maker, tokenBlacklist blacklist.Blacklist, accessToken string) (*token.Payload, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	payload, err := tokenMaker.VerifyToken(accessToken)
	if err != nil {
		return nil, err
	}

	revoked, err := tokenBlacklist.Contains(ctx, accessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to check token blacklist")
		return nil, ErrBlacklistUnavailable
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return payload, nil
}
