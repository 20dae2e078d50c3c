package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/complaint-BE/internal/proxy"
	"github.com/katatrina/complaint-BE/internal/token"
)

// proxyAdminRequest hands every /admin/* call to the proxy router and mirrors its response.
func (server *Server) proxyAdminRequest(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, server.config.MaxRequestBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, errorResponse(err))
				return
			}
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	resp := server.proxyRouter.Serve(c.Request.Context(), &proxy.Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.EscapedPath(),
		RawQuery:      c.Request.URL.RawQuery,
		ContentType:   c.GetHeader("Content-Type"),
		Authorization: c.GetHeader(authorizationHeaderKey),
		Body:          body,
		Principal:     authPayload.Principal(),
	})

	for key, values := range resp.Header {
		for _, value := range values {
			c.Writer.Header().Add(key, value)
		}
	}

	c.Status(resp.StatusCode)
	if len(resp.Body) > 0 {
		_, _ = c.Writer.Write(resp.Body)
	}
}
