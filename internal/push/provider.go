package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"artlink_backend/internal/models"
)

// ErrTokenInvalid marks a permanent provider rejection: the token is dead
// and the device must be deactivated. Every other provider error is treated
// as transient.
var ErrTokenInvalid = errors.New("push token permanently invalid")

// Payload is the provider-agnostic push content.
type Payload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Provider delivers one payload to one device token.
type Provider interface {
	Send(ctx context.Context, device *models.Device, payload Payload) error
}

// httpProvider posts payloads to a platform gateway over HTTPS. FCM, APNs
// and web push differ only in endpoint and auth header here; the response
// mapping is shared.
type httpProvider struct {
	endpoint  string
	authToken string
	client    *http.Client
}

func newHTTPProvider(endpoint, authToken string, timeout time.Duration) Provider {
	return &httpProvider{
		endpoint:  endpoint,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

type providerRequest struct {
	Token    string                 `json:"token"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	PushKeys json.RawMessage        `json:"push_keys,omitempty"`
}

func (p *httpProvider) Send(ctx context.Context, device *models.Device, payload Payload) error {
	reqBody := providerRequest{
		Token:    device.Token,
		Title:    payload.Title,
		Body:     payload.Body,
		Data:     payload.Data,
		PushKeys: json.RawMessage(device.PushKeys),
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.authToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The provider no longer knows this token.
		return ErrTokenInvalid
	default:
		return fmt.Errorf("push provider returned %d", resp.StatusCode)
	}
}
