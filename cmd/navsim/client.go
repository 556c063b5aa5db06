package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wayfarer/internal/modules/heading"
	"wayfarer/internal/modules/routing"
	"wayfarer/internal/service"
	"wayfarer/internal/types"
)

type client struct {
	base  string
	token string
	httpc *http.Client
}

func newClient(base, token string) *client {
	return &client{base: base, token: token, httpc: &http.Client{Timeout: 30 * time.Second}}
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Message != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Message)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, e.Error)
	}
	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *client) requestRoute(ctx context.Context, req routing.Request) (*routing.Route, error) {
	var res routing.Result
	if err := c.post(ctx, "/api/routes", req, &res); err != nil {
		return nil, err
	}
	if res.Advisory != "" {
		fmt.Println(res.Advisory)
	}
	return res.Route, nil
}

func (c *client) setAuthorization(ctx context.Context, auth string) error {
	return c.do(ctx, http.MethodPut, "/api/device/authorization", map[string]string{"authorization": auth}, nil)
}

func (c *client) pushLocation(ctx context.Context, pos types.Position) error {
	body := map[string]any{"lat": pos.Lat, "lng": pos.Lng, "accuracy": pos.Accuracy, "timestamp": pos.Timestamp}
	return c.do(ctx, http.MethodPut, "/api/device/location", body, nil)
}

func (c *client) pushHeading(ctx context.Context, s heading.Sample) error {
	return c.do(ctx, http.MethodPut, "/api/device/heading", s, nil)
}

func (c *client) status(ctx context.Context) (service.Status, error) {
	var st service.Status
	err := c.do(ctx, http.MethodGet, "/api/navigation", nil, &st)
	return st, err
}
