// Package idp talks to the external identity provider, the system of record
// for authentication. The directory only holds one write capability toward
// it: deleting an identity.
package idp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuskit/campuskit/internal/shared"
)

// Client wraps the provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ping checks if the provider API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer drain(resp)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: health returned status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// DeleteIdentity removes the identity keyed by the provider's user id.
// Transport failures and provider-side outages surface as
// ErrProviderUnavailable; a missing identity surfaces as ErrNotFound.
func (c *Client) DeleteIdentity(ctx context.Context, externalID string) error {
	if externalID == "" {
		return fmt.Errorf("%w: external id required", shared.ErrValidation)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/v1/users/%s", c.baseURL, externalID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer drain(resp)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: delete returned status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("idp: delete identity %s: status %d", externalID, resp.StatusCode)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
