// Package proxy forwards gateway requests to the ledger services.
package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/gin-gonic/gin"
)

// hopHeaders are not forwarded in either direction.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Upgrade":           true,
	"Content-Length":    true,
}

type Proxy struct {
	client *http.Client
	logger *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *Proxy {
	return &Proxy{client: &http.Client{Timeout: timeout}, logger: logger}
}

// To returns a handler that replays the request against serviceURL with the
// same path and query, stamping the authenticated caller as X-User-ID.
func (p *Proxy) To(serviceURL string) gin.HandlerFunc {
	serviceURL = strings.TrimSuffix(serviceURL, "/")
	return func(c *gin.Context) {
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, bytes.NewReader(bodyBytes))
		if err != nil {
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create request")
			return
		}
		for key, values := range c.Request.Header {
			if hopHeaders[key] {
				continue
			}
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
		if id := logging.RequestID(c.Request.Context()); id != "" {
			req.Header.Set(middleware.RequestIDHeader, id)
		}
		// only the verified token may name the caller
		req.Header.Del(middleware.UserIDHeader)
		if userID, ok := middleware.GetUserID(c); ok {
			req.Header.Set(middleware.UserIDHeader, userID)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			p.logger.Error("proxy request failed", "target", targetURL, "error", err)
			middleware.RespondWithError(c, http.StatusBadGateway, "Service unavailable")
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadGateway, "Failed to read response")
			return
		}
		for key, values := range resp.Header {
			if hopHeaders[key] || key == middleware.RequestIDHeader {
				continue
			}
			for _, value := range values {
				c.Writer.Header().Add(key, value)
			}
		}
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}

// RegisterRoutes exposes the public surface. The balance mutation and the
// transaction log stay internal.
func RegisterRoutes(r gin.IRouter, p *Proxy, auth gin.HandlerFunc, accountURL, depositURL, transferURL string) {
	r.POST("/accounts/create", auth, p.To(accountURL))
	r.GET("/accounts/user/:userId", auth, p.To(accountURL))
	r.GET("/accounts/:accountId", auth, p.To(accountURL))
	r.POST("/deposit", auth, p.To(depositURL))
	r.POST("/transfer", auth, p.To(transferURL))
}
