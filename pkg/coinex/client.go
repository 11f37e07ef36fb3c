// Package coinex implements the small slice of the CoinEx v2 REST API
// the tracker needs: account balances and spot tickers. Requests are
// signed with HMAC-SHA256 over method, versioned path, body and timestamp.
package coinex

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultBaseURL = "https://api.coinex.com"
	apiVersion     = "v2"
	requestTimeout = 10 * time.Second
)

// APIError is a non-zero business code returned by the CoinEx API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coinex api error (code=%d): %s", e.Code, e.Message)
}

type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func NewClient(apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SpotBalance is one spot account asset as CoinEx reports it.
type SpotBalance struct {
	Ccy       string `json:"ccy"`
	Available string `json:"available"`
	Frozen    string `json:"frozen"`
}

// FuturesBalance is one futures account asset as CoinEx reports it.
type FuturesBalance struct {
	Ccy           string `json:"ccy"`
	Available     string `json:"available"`
	Frozen        string `json:"frozen"`
	Margin        string `json:"margin"`
	UnrealizedPNL string `json:"unrealized_pnl"`
}

// Ticker is the last trade price of one spot market.
type Ticker struct {
	Market string `json:"market"`
	Last   string `json:"last"`
}

// SpotBalances returns all spot account assets.
func (c *Client) SpotBalances(ctx context.Context) ([]SpotBalance, error) {
	var out []SpotBalance
	if err := c.get(ctx, "/assets/spot/balance", nil, true, &out); err != nil {
		return nil, errors.Wrap(err, "get spot balance")
	}
	return out, nil
}

// FuturesBalances returns all futures account assets.
func (c *Client) FuturesBalances(ctx context.Context) ([]FuturesBalance, error) {
	var out []FuturesBalance
	if err := c.get(ctx, "/assets/futures/balance", nil, true, &out); err != nil {
		return nil, errors.Wrap(err, "get futures balance")
	}
	return out, nil
}

// SpotTickers returns tickers for all spot markets.
func (c *Client) SpotTickers(ctx context.Context) ([]Ticker, error) {
	var out []Ticker
	if err := c.get(ctx, "/spot/ticker", nil, false, &out); err != nil {
		return nil, errors.Wrap(err, "get spot ticker")
	}
	return out, nil
}

// Ping checks connectivity to the API.
func (c *Client) Ping(ctx context.Context) error {
	var out json.RawMessage
	return c.get(ctx, "/ping", nil, false, &out)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, signed bool, out any) error {
	query := ""
	if len(params) > 0 {
		query = "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+apiVersion+path+query, nil)
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-COINEX-TIMESTAMP", timestamp)
	if signed {
		req.Header.Set("X-COINEX-KEY", c.apiKey)
		req.Header.Set("X-COINEX-SIGN", c.sign(http.MethodGet, path, query, timestamp))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("unexpected http status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode response data")
}

// sign computes the lowercase hex HMAC-SHA256 of
// METHOD + /v2 + path + body + timestamp, where body is the "?"-prefixed
// query string for GET requests.
func (c *Client) sign(method, path, body, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	fmt.Fprintf(mac, "%s/%s%s%s%s", method, apiVersion, path, body, timestamp)
	return hex.EncodeToString(mac.Sum(nil))
}
