// Package xhs fetches creator and note metadata from the Xiaohongshu
// web API. Every API call carries a signed header set from the sign
// server; the creator profile and the note detail fallback come from
// scraping the web pages instead.
package xhs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/signsrv"
)

const (
	apiURL   = "https://edith.xiaohongshu.com"
	indexURL = "https://www.xiaohongshu.com"

	fixedUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	pageSize = 30

	htmlDetailAttempts = 5
)

type Config struct {
	Cookies   string
	UserAgent string
	Timeout   time.Duration
	Sign      *signsrv.Client
}

type Client struct {
	cookies   string
	userAgent string
	timeout   time.Duration
	sign      *signsrv.Client
	caller    *media.Caller
	retry     media.RetryPolicy

	apiBase   string
	indexBase string

	// sleep is replaceable in tests; production uses time.Sleep.
	sleep func(time.Duration)
}

func New(cfg Config) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = fixedUserAgent
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = media.DefaultTimeout
	}
	return &Client{
		cookies:   cfg.Cookies,
		userAgent: userAgent,
		timeout:   timeout,
		sign:      cfg.Sign,
		caller:    media.DefaultCaller,
		retry:     media.XhsRetry,
		apiBase:   apiURL,
		indexBase: indexURL,
		sleep:     time.Sleep,
	}
}

func (c *Client) InitializeSession(context.Context) error { return nil }

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json;charset=UTF-8",
		"Accept":       "application/json, text/plain, */*",
		"Cookie":       c.cookies,
		"origin":       "https://www.xiaohongshu.com",
		"referer":      "https://www.xiaohongshu.com/",
		"user-agent":   c.userAgent,
	}
}

func (c *Client) signedHeaders(ctx context.Context, uri string, data any) (map[string]string, error) {
	tokens, err := c.sign.XhsSign(ctx, signsrv.XhsSignRequest{
		URI:     uri,
		Data:    data,
		Cookies: c.cookies,
	})
	if err != nil {
		return nil, err
	}
	headers := c.headers()
	headers["X-S"] = tokens.XS
	headers["X-T"] = tokens.XT
	headers["x-S-Common"] = tokens.XSCommon
	headers["X-B3-Traceid"] = tokens.XB3TraceID
	return headers, nil
}

// request issues one signed call under the retry policy and unwraps
// the JSON envelope. HTTP 471/461 means a captcha wall; the envelope
// code table separates IP blocks and sign faults from plain failures.
func (c *Client) request(ctx context.Context, method, fullURL string, headers map[string]string, body []byte, out any) error {
	return c.retry.Do(ctx, func() error {
		resp, err := c.caller.Call(ctx, fullURL, media.RequestParams{
			Method:  method,
			Headers: headers,
			Body:    body,
			Timeout: c.timeout,
		})
		if err != nil {
			return errors.Wrap(err, "xhs: request")
		}
		if resp.StatusCode == 471 || resp.StatusCode == 461 {
			return &media.CaptchaRequiredError{
				VerifyType: resp.Header("Verifytype"),
				VerifyUUID: resp.Header("Verifyuuid"),
			}
		}
		var env envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return errors.Wrap(err, "xhs: decode response")
		}
		if env.Success {
			if out == nil || len(env.Data) == 0 {
				return nil
			}
			return errors.Wrap(json.Unmarshal(env.Data, out), "xhs: decode data")
		}
		switch env.Code {
		case codeIPBlock:
			return &media.IPBlockError{Msg: "网络连接异常，请检查网络设置或重启试试"}
		case codeSignFault:
			return &media.SignError{Msg: "签名校验失败，请检查签名服务"}
		case codeAccessFrequency:
			slog.Error("Xiaohongshu flagged the access frequency, backing off")
			c.sleep(randomDelay(2*time.Second, 10*time.Second))
			return &media.AccessFrequencyError{Msg: "访问频次异常，请稍后重试"}
		default:
			return errors.Errorf("xhs: request failed: code=%d msg=%s", env.Code, env.Msg)
		}
	})
}

func (c *Client) get(ctx context.Context, uri string, params url.Values, out any) error {
	finalURI := uri
	if len(params) > 0 {
		finalURI = uri + "?" + params.Encode()
	}
	headers, err := c.signedHeaders(ctx, finalURI, nil)
	if err != nil {
		return err
	}
	return c.request(ctx, fasthttp.MethodGet, c.apiBase+finalURI, headers, nil, out)
}

func (c *Client) post(ctx context.Context, uri string, data any, out any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "xhs: encode body")
	}
	headers, err := c.signedHeaders(ctx, uri, data)
	if err != nil {
		return err
	}
	return c.request(ctx, fasthttp.MethodPost, c.apiBase+uri, headers, body, out)
}

// CheckAlive verifies the sign server first, then the login state via
// the self-info endpoint.
func (c *Client) CheckAlive(ctx context.Context) bool {
	if err := c.sign.Pong(ctx); err != nil {
		slog.Error("Sign server unavailable",
			"error", err.Error())
		return false
	}
	var info selfInfoData
	if err := c.get(ctx, "/api/sns/web/v1/user/selfinfo", nil, &info); err != nil {
		slog.Error("Xiaohongshu self info failed",
			"error", err.Error())
		return false
	}
	return info.Result.Success
}

// CreatorProfile scrapes the public profile page. The API exposes no
// equivalent endpoint for other users, but the page embeds the data in
// window.__INITIAL_STATE__.
func (c *Client) CreatorProfile(ctx context.Context, creatorID string) (*media.CreatorProfile, error) {
	var html string
	err := c.retry.Do(ctx, func() error {
		resp, err := c.caller.Call(ctx, c.indexBase+"/user/profile/"+creatorID, media.RequestParams{
			Method:  fasthttp.MethodGet,
			Headers: c.headers(),
			Timeout: c.timeout,
		})
		if err != nil {
			return errors.Wrap(err, "xhs: profile page")
		}
		html = string(resp.Body)
		return nil
	})
	if err != nil {
		return nil, err
	}
	state, err := parseUserState(html)
	if err != nil {
		return nil, err
	}
	return extractCreatorProfile(state, creatorID), nil
}

func (c *Client) CreatorContents(ctx context.Context, creatorID, cursor string) (*media.ContentPage, error) {
	params := url.Values{
		"user_id":       {creatorID},
		"cursor":        {cursor},
		"num":           {strconv.Itoa(pageSize)},
		"image_formats": {"jpg,webp,avif"},
	}
	var data userPostedData
	if err := c.get(ctx, "/api/sns/web/v1/user_posted", params, &data); err != nil {
		return nil, err
	}
	return extractContents(&data), nil
}

// ContentDetail fetches a note through the feed endpoint, falling back
// to scraping the note page when the API returns nothing. Both paths
// need the xsec token pair carried in the original share URL.
func (c *Client) ContentDetail(ctx context.Context, contentID, originalURL string) (*media.Content, error) {
	if contentID == "" {
		return nil, &media.InvalidInputError{Msg: "note id required"}
	}
	xsecToken, xsecSource := xsecParams(originalURL)

	n, err := c.noteByID(ctx, contentID, xsecToken, xsecSource)
	if err != nil || n == nil {
		if err != nil {
			slog.Error("Xiaohongshu note detail API failed, falling back to HTML",
				"note_id", contentID,
				"error", err.Error())
		}
		n = c.noteFromHTML(ctx, contentID, xsecToken, xsecSource)
		if n == nil {
			return nil, &media.DataFetchError{Msg: "获取笔记详情失败"}
		}
	}
	content := extractContent(n)
	if content == nil {
		return nil, &media.DataFetchError{Msg: "未知的笔记类型"}
	}
	return content, nil
}

func (c *Client) noteByID(ctx context.Context, noteID, xsecToken, xsecSource string) (*note, error) {
	body := map[string]any{
		"source_note_id": noteID,
		"image_formats":  []string{"jpg", "webp", "avif"},
		"extra":          map[string]any{"need_body_topic": 1},
	}
	if xsecToken != "" {
		body["xsec_token"] = xsecToken
		body["xsec_source"] = xsecSource
	}
	var data feedData
	if err := c.post(ctx, "/api/sns/web/v1/feed", body, &data); err != nil {
		return nil, err
	}
	if len(data.Items) == 0 {
		return nil, nil
	}
	return &data.Items[0].NoteCard, nil
}

// noteFromHTML tries the note page a few times. The first attempts go
// out without the Cookie header: the anonymous page is less likely to
// hit the captcha wall.
func (c *Client) noteFromHTML(ctx context.Context, noteID, xsecToken, xsecSource string) *note {
	reqURL := c.indexBase + "/explore/" + noteID +
		"?xsec_token=" + url.QueryEscape(xsecToken) +
		"&xsec_source=" + url.QueryEscape(xsecSource)

	for attempt := 1; attempt <= htmlDetailAttempts; attempt++ {
		headers := c.headers()
		if attempt <= 3 {
			delete(headers, "Cookie")
		}
		resp, err := c.caller.Call(ctx, reqURL, media.RequestParams{
			Method:  fasthttp.MethodGet,
			Headers: headers,
			Timeout: c.timeout,
		})
		if err != nil {
			slog.Error("Xiaohongshu note page request failed",
				"note_id", noteID,
				"attempt", attempt,
				"error", err.Error())
			c.sleep(randomDelay(0, time.Second))
			continue
		}
		if n, ok := parseNoteFromHTML(noteID, string(resp.Body)); ok {
			return n
		}
		c.sleep(randomDelay(0, time.Second))
	}
	return nil
}

func xsecParams(originalURL string) (token, source string) {
	parsed, err := url.Parse(originalURL)
	if err != nil {
		return "", ""
	}
	query := parsed.Query()
	return query.Get("xsec_token"), query.Get("xsec_source")
}

func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}
