package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shiftbook/internal/client/models"
	"github.com/dmitrijs2005/shiftbook/internal/common"
)

// HTTPClient implements Client against the shift service REST API.
// It holds the current token pair; a 401, or a 500 whose body indicates an
// expired token, triggers exactly one refresh-and-retry before the call is
// treated as failed.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	// mu guards the token pair: the push scheduler, the online watcher and
	// UI-triggered pulls all share one client, so a refresh can run
	// concurrently with another request building its bearer header.
	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewHTTPClient returns a client for the service at baseURL
// (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.postJSON(ctx, "/api/register", credentials{Username: username, Password: password}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var pair tokenPair
	if err := c.postJSON(ctx, "/api/login", credentials{Username: username, Password: password}, &pair); err != nil {
		return err
	}
	c.setTokens(pair)
	return nil
}

func (c *HTTPClient) setTokens(pair tokenPair) {
	c.mu.Lock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	c.mu.Unlock()
}

func (c *HTTPClient) currentTokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// refresh rotates the token pair using the stored refresh token.
func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refreshToken := c.currentTokens()
	if refreshToken == "" {
		return common.ErrorUnauthorized
	}
	body := map[string]string{"refresh_token": refreshToken}
	var pair tokenPair
	if err := c.postJSON(ctx, "/api/refresh", body, &pair); err != nil {
		return err
	}
	c.setTokens(pair)
	return nil
}

// postJSON performs an unauthenticated POST (register/login/refresh).
func (c *HTTPClient) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrorUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s failed: %s", path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// do performs an authenticated request and retries once after a token
// refresh when the response signals an expired access token.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	resp, err := c.doOnce(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	if !tokenExpired(resp) {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	return c.doOnce(ctx, method, path, query, body)
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	accessToken, _ := c.currentTokens()
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)

	return c.http.Do(req)
}

// tokenExpired reports whether the response should trigger a token refresh:
// a plain 401, or a 500 whose body text mentions an expired/invalid token.
// The body is consumed in the 500 case.
func tokenExpired(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return true
	case http.StatusInternalServerError:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s := strings.ToLower(string(b))
		return strings.Contains(s, "token expired") || strings.Contains(s, "invalid token")
	default:
		return false
	}
}

func (c *HTTPClient) FetchDay(ctx context.Context, date string) (*DayPayload, error) {
	q := url.Values{"date": {date}}
	resp, err := c.do(ctx, http.MethodGet, "/api/shifts", q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var p DayPayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode day: %w", err)
		}
		return &p, nil
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("fetch day failed: %s", resp.Status)
	}
}

func (c *HTTPClient) PushDay(ctx context.Context, rec *models.DayRecord) (*PushResult, error) {
	b, err := json.Marshal(PayloadFromRecord(rec))
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPut, "/api/shifts", nil, b)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var res PushResult
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, fmt.Errorf("failed to decode push result: %w", err)
		}
		return &res, nil
	case http.StatusBadRequest:
		return nil, common.ErrEmptySegmentsRejected
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	default:
		return nil, fmt.Errorf("push day failed: %s", resp.Status)
	}
}

func (c *HTTPClient) DeleteDay(ctx context.Context, date string) error {
	q := url.Values{"date": {date}}
	resp, err := c.do(ctx, http.MethodDelete, "/api/shifts", q, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("delete day failed: %s", resp.Status)
	}
}

func (c *HTTPClient) ExportUploadURL(ctx context.Context) (string, string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/export/upload-url", nil, nil)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("export upload url failed: %s", resp.Status)
	}
	var out struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.Key, out.URL, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed: %s", resp.Status)
	}
	return nil
}
