package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generator performs one generation call.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HTTPClient calls the remote generation endpoint.
type HTTPClient struct {
	URL    string
	Client *http.Client
}

var _ Generator = (*HTTPClient)(nil)

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token; the client forwards it
// as a bearer token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the token attached by WithAccessToken.
func AccessTokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(accessTokenKey{}).(string)
	return t
}

type generateResp struct {
	Content *string `json:"content"`
	Error   string  `json:"error,omitempty"`
}

// NewHTTPClient builds a client. A zero timeout means the call may hang until
// the caller cancels it.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.Client == nil {
		return "", errors.New("generate: http client is nil")
	}
	if strings.TrimSpace(c.URL) == "" {
		return "", errors.New("generate: service url is required")
	}

	b, err := json.Marshal(req.wire())
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if t := AccessTokenFrom(ctx); t != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var decoded generateResp
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(decoded.Error)
		}
		return "", &ServiceError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil || decoded.Content == nil {
		return "", &ServiceError{Status: resp.StatusCode}
	}
	return *decoded.Content, nil
}
