package clients

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// PinClient asks the register service whether a PIN belongs to a user.
type PinClient struct {
	baseClient
}

func NewPinClient(baseURL string, timeout time.Duration) *PinClient {
	return &PinClient{baseClient: newBaseClient(baseURL, timeout)}
}

func (c *PinClient) ValidatePin(ctx context.Context, userID, pin string) (bool, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("pin", pin)
	var valid bool
	if err := c.doJSON(ctx, http.MethodPost, "/register/validate-pin?"+q.Encode(), nil, &valid); err != nil {
		return false, err
	}
	return valid, nil
}
