// Package clients holds the HTTP clients the orchestrators use to reach the
// account, transaction and PIN services. Every failure is classified into the
// apperrors taxonomy; anything that cannot be classified, including timeouts,
// is a dependency failure with unknown remote effect.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eaglebank/ledger/shared/apperrors"
	"github.com/eaglebank/ledger/shared/logging"
	"github.com/eaglebank/ledger/shared/models"
)

const requestIDHeader = "X-Request-ID"

type baseClient struct {
	baseURL string
	http    *http.Client
}

func newBaseClient(baseURL string, timeout time.Duration) baseClient {
	return baseClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// doJSON sends body (if any) as JSON and decodes a 2xx reply into out.
func (b baseClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrDependencyFailure, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %v", apperrors.ErrDependencyFailure, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", apperrors.ErrDependencyFailure, method, path, err)
	}
	return nil
}

// decodeError rebuilds the remote classification from the error body. A 5xx
// is always a dependency failure regardless of its code.
func decodeError(status int, body []byte, method, path string) error {
	var er models.ErrorResponse
	_ = json.Unmarshal(body, &er)
	msg := er.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	if status < 500 {
		if sentinel := apperrors.FromCode(er.Code); sentinel != nil {
			return fmt.Errorf("%s: %w", msg, sentinel)
		}
		switch status {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w", msg, apperrors.ErrValidation)
		}
	}
	return fmt.Errorf("%w: %s %s returned %d: %s", apperrors.ErrDependencyFailure, method, path, status, msg)
}
