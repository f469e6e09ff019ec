// Package signsrv is the RPC gateway to the external signing
// microservice. It fails fast: any transport error, non-200 status or
// isok=false answer becomes a SignError, and the gateway itself never
// retries.
package signsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mediapick/mediapick/internal/media"
)

const defaultTimeout = 60 * time.Second

type Client struct {
	endpoint string
	timeout  time.Duration
	caller   *media.Caller
}

func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		timeout:  defaultTimeout,
		caller:   media.DefaultCaller,
	}
}

// DouyinSignRequest asks for the a_bogus token computed over the
// already-encoded query string.
type DouyinSignRequest struct {
	URI         string `json:"uri"`
	QueryParams string `json:"query_params"`
	UserAgent   string `json:"user_agent"`
	Cookies     string `json:"cookies"`
}

type DouyinTokens struct {
	ABogus string `json:"a_bogus"`
}

// XhsSignRequest asks for the signed header set over a URI (GET) or a
// request body (POST).
type XhsSignRequest struct {
	URI     string `json:"uri"`
	Data    any    `json:"data"`
	Cookies string `json:"cookies"`
}

type XhsTokens struct {
	XS         string `json:"x_s"`
	XT         string `json:"x_t"`
	XSCommon   string `json:"x_s_common"`
	XB3TraceID string `json:"x_b3_traceid"`
}

// BilibiliSignRequest asks for the wbi signature over the request
// parameters.
type BilibiliSignRequest struct {
	ReqData map[string]string `json:"req_data"`
	Cookies string            `json:"cookies"`
}

type BilibiliTokens struct {
	Wts  string `json:"wts"`
	WRid string `json:"w_rid"`
}

type envelope struct {
	IsOK    bool            `json:"isok"`
	BizCode int             `json:"biz_code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, uri string, payload any, tokens any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &media.SignError{Msg: "encode sign request", Err: err}
	}

	resp, err := c.caller.Call(ctx, c.endpoint+uri, media.RequestParams{
		Method: fasthttp.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"Connection":   "close",
		},
		Body:    body,
		Timeout: c.timeout,
	})
	if err != nil {
		return &media.SignError{Msg: "sign server unreachable", Err: err}
	}
	if resp.StatusCode != fasthttp.StatusOK {
		slog.Error("Sign server rejected request",
			"uri", uri,
			"status", resp.StatusCode,
			"body", string(resp.Body))
		return &media.SignError{Msg: fmt.Sprintf("sign server status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return &media.SignError{Msg: "decode sign response", Err: err}
	}
	if !env.IsOK {
		return &media.SignError{Msg: env.Msg}
	}
	if err := json.Unmarshal(env.Data, tokens); err != nil {
		return &media.SignError{Msg: "decode sign tokens", Err: err}
	}
	return nil
}

func (c *Client) DouyinSign(ctx context.Context, req DouyinSignRequest) (*DouyinTokens, error) {
	var tokens DouyinTokens
	if err := c.post(ctx, "/signsrv/v1/douyin/sign", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) XhsSign(ctx context.Context, req XhsSignRequest) (*XhsTokens, error) {
	var tokens XhsTokens
	if err := c.post(ctx, "/signsrv/v1/xhs/sign", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) BilibiliSign(ctx context.Context, req BilibiliSignRequest) (*BilibiliTokens, error) {
	var tokens BilibiliTokens
	if err := c.post(ctx, "/signsrv/v1/bilibili/sign", req, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Pong probes the sign server before heavy use.
func (c *Client) Pong(ctx context.Context) error {
	resp, err := c.caller.Call(ctx, c.endpoint+"/signsrv/pong", media.RequestParams{
		Method:  fasthttp.MethodGet,
		Timeout: c.timeout,
	})
	if err != nil {
		return errors.Wrap(err, "sign server pong")
	}
	if resp.StatusCode != fasthttp.StatusOK {
		return errors.Errorf("sign server pong status %d", resp.StatusCode)
	}
	return nil
}
