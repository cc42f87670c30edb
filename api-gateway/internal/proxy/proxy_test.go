package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/gin-gonic/gin"
)

func passAuth(c *gin.Context) { c.Next() }

func TestProxyForwardsRequest(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.URL.Path != "/transfer" || string(body) != `{"amount":"1"}` {
			t.Errorf("unexpected upstream request %s %s", r.URL.Path, body)
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			t.Errorf("authorization header not forwarded")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, New(time.Second, logging.Discard()), passAuth, upstream.URL, upstream.URL, upstream.URL)

	req, _ := http.NewRequest(http.MethodPost, "/transfer", strings.NewReader(`{"amount":"1"}`))
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated || w.Body.String() != `{"ok":true}` {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, New(time.Second, logging.Discard()), passAuth, url, url, url)

	req, _ := http.NewRequest(http.MethodGet, "/accounts/1234567", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestBalanceMutationNotExposed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, New(time.Second, logging.Discard()), passAuth, "http://unused", "http://unused", "http://unused")

	req, _ := http.NewRequest(http.MethodPut, "/accounts/1234567/balance", strings.NewReader(`{"amount":"100"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected the balance route to be absent, got %d", w.Code)
	}
}

func authAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	}
}

func TestProxyStampsCaller(t *testing.T) {
	tests := []struct {
		name        string
		auth        gin.HandlerFunc
		spoofed     string
		wantForward string
	}{
		{name: "caller from token", auth: authAs("alice"), wantForward: "alice"},
		{name: "client header replaced by token", auth: authAs("alice"), spoofed: "bob", wantForward: "alice"},
		{name: "client header dropped without token identity", auth: passAuth, spoofed: "bob", wantForward: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Values(middleware.UserIDHeader)
				w.WriteHeader(http.StatusOK)
			}))
			defer upstream.Close()

			gin.SetMode(gin.TestMode)
			r := gin.New()
			RegisterRoutes(r, New(time.Second, logging.Discard()), tt.auth, upstream.URL, upstream.URL, upstream.URL)

			req, _ := http.NewRequest(http.MethodGet, "/accounts/user/bob", nil)
			if tt.spoofed != "" {
				req.Header.Set(middleware.UserIDHeader, tt.spoofed)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("unexpected status %d", w.Code)
			}
			if tt.wantForward == "" {
				if len(got) != 0 {
					t.Errorf("expected no caller header upstream, got %v", got)
				}
				return
			}
			if len(got) != 1 || got[0] != tt.wantForward {
				t.Errorf("expected caller %q upstream, got %v", tt.wantForward, got)
			}
		})
	}
}
