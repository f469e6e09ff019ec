package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// RequestParams describes one outbound platform HTTP call.
type RequestParams struct {
	Method  string            // "GET" or "POST"
	Headers map[string]string // includes Cookie and User-Agent
	Query   map[string]string // extra query args for GET
	Body    []byte            // JSON body for POST
	Timeout time.Duration     // per-call bound, DefaultTimeout if zero
}

// Response is a detached copy of the platform answer; the underlying
// fasthttp objects are released before it is returned.
type Response struct {
	StatusCode int
	Body       []byte
	headers    map[string]string
	Cookies    map[string]string
}

// Header returns the response header value for key, case-insensitively.
func (r *Response) Header(key string) string {
	return r.headers[strings.ToLower(key)]
}

type Caller struct {
	Client *fasthttp.Client
}

var DefaultCaller = &Caller{
	Client: &fasthttp.Client{
		ReadBufferSize:  16 * 1024,
		MaxConnsPerHost: 1024,
	},
}

func (c *Caller) Call(ctx context.Context, url string, params RequestParams) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(params.Method)
	req.SetRequestURI(url)
	for key, value := range params.Headers {
		req.Header.Set(key, value)
	}

	switch params.Method {
	case fasthttp.MethodGet:
		for key, value := range params.Query {
			req.URI().QueryArgs().Add(key, value)
		}
	case fasthttp.MethodPost:
		req.SetBody(params.Body)
	default:
		return nil, fmt.Errorf("unsupported method: %s", params.Method)
	}

	timeout := params.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.Client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), resp.Body()...),
		headers:    make(map[string]string),
		Cookies:    make(map[string]string),
	}
	resp.Header.VisitAll(func(key, value []byte) {
		out.headers[strings.ToLower(string(key))] = string(value)
	})
	resp.Header.VisitAllCookie(func(key, value []byte) {
		cookie := fasthttp.AcquireCookie()
		if err := cookie.ParseBytes(value); err == nil {
			out.Cookies[string(key)] = string(cookie.Value())
		}
		fasthttp.ReleaseCookie(cookie)
	})
	return out, nil
}
