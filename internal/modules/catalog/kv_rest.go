package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// restKV talks to a Redis REST endpoint (Upstash / Vercel KV):
// GET {base}/get/{key} and POST {base}/set/{key} with a bearer token.
type restKV struct {
	baseURL string
	token   string
	http    *http.Client
}

type restKVResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error"`
}

// NewRESTKV returns a KVClient for a Redis-over-HTTP store. A nil client
// uses http.DefaultClient.
func NewRESTKV(baseURL, token string, client *http.Client) KVClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &restKV{baseURL: baseURL, token: token, http: client}
}

func (c *restKV) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, ErrKeyNotFound
	}
	return []byte(*resp.Result), nil
}

func (c *restKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.do(ctx, http.MethodPost, "/set/"+url.PathEscape(key), value)
	return err
}

func (c *restKV) Close() error { return nil }

func (c *restKV) do(ctx context.Context, method, path string, body []byte) (*restKVResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "kv request")
	}
	defer res.Body.Close()

	var out restKVResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "kv response (status %d)", res.StatusCode)
	}
	if res.StatusCode >= 300 || out.Error != "" {
		return nil, fmt.Errorf("kv %s %s: status %d: %s", method, path, res.StatusCode, out.Error)
	}
	return &out, nil
}
