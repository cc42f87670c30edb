package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const testSecret = "test-secret"

func init() {
	MustInitJWTSecret(testSecret)
}

func signToken(t *testing.T, secret, userID string, expires time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "success - valid token",
			header:         "Bearer " + signToken(t, testSecret, "7", time.Now().Add(time.Hour)),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorised - missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - wrong scheme",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - wrong secret",
			header:         "Bearer " + signToken(t, "other", "7", time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - expired",
			header:         "Bearer " + signToken(t, testSecret, "7", time.Now().Add(-time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - no user id claim",
			header:         "Bearer " + signToken(t, testSecret, "", time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newAuthTestRouter().ServeHTTP(w, req)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NotFound("account", "1"), http.StatusNotFound},
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.ErrSameAccountTransfer, http.StatusBadRequest},
		{apperrors.ErrInsufficientFunds, http.StatusBadRequest},
		{apperrors.ErrInvalidPin, http.StatusUnauthorized},
		{apperrors.ErrUnauthorized, http.StatusForbidden},
		{fmt.Errorf("x: %w", apperrors.ErrDependencyFailure), http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondWithAppErrorIncludesStage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithAppError(c, &apperrors.StageError{
		Operation: "transfer",
		Stage:     8,
		Step:      "credit destination",
		Effect:    apperrors.EffectPartial,
		Err:       fmt.Errorf("upstream: %w", apperrors.ErrDependencyFailure),
	})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stage == nil || *body.Stage != 8 || body.Effect != "partial" || body.Code != apperrors.CodeDependencyFailure {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestRespondWithAppErrorKeepsStageZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithAppError(c, &apperrors.StageError{
		Operation: "transfer",
		Stage:     0,
		Step:      "validate request",
		Effect:    apperrors.EffectNone,
		Err:       apperrors.Validation("amount must be positive"),
	})
	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if stage, ok := raw["stage"]; !ok || stage != float64(0) {
		t.Errorf("expected stage 0 in body, got %s", w.Body.String())
	}
}

func TestRespondWithAppErrorPlainErrorHasNoStage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithAppError(c, apperrors.NotFound("account", "1234567"))
	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["stage"]; ok {
		t.Errorf("expected no stage for a non-orchestrated error, got %s", w.Body.String())
	}
}

func TestValidateRequestDecimal(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		valid  bool
	}{
		{"positive", decimal.RequireFromString("0.01"), true},
		{"zero", decimal.Zero, false},
		{"negative", decimal.RequireFromString("-5"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := models.DepositRequest{AccountID: "1234567", Amount: tt.amount}
			errs := ValidateRequest(req)
			if tt.valid && errs != nil {
				t.Errorf("expected valid, got %+v", errs)
			}
			if !tt.valid && errs == nil {
				t.Error("expected validation errors")
			}
		})
	}
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware(logging.Discard()))
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logging.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if seen != "req-123" || w.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("expected propagated request id, got ctx=%q header=%q", seen, w.Header().Get(RequestIDHeader))
	}

	req, _ = http.NewRequest(http.MethodGet, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if seen == "" || seen == "req-123" {
		t.Errorf("expected a fresh request id, got %q", seen)
	}
}
