// Package douyin fetches creator and content metadata from the Douyin
// web API. Every GET carries the common browser parameters plus the
// webid/msToken verify pair, and is signed with an a_bogus token from
// the sign server.
package douyin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/signsrv"
)

const (
	apiURL = "https://www.douyin.com"

	fixedUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	pageSize = 18
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

	verify    *verifyParams
	bootstrap bootstrapEndpoints
	apiBase   string
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
		retry:     media.DouyinRetry,
		bootstrap: defaultBootstrapEndpoints,
		apiBase:   apiURL,
	}
}

// InitializeSession obtains (or synthesizes) the msToken/webid/verifyFp
// set. The remote bootstrap endpoints have local fallbacks, so this
// only fails when even those cannot produce values.
func (c *Client) InitializeSession(ctx context.Context) error {
	verify, err := fetchVerifyParams(ctx, c.caller, c.userAgent, c.bootstrap)
	if err != nil {
		return errors.Wrap(err, "douyin: initialize session")
	}
	c.verify = verify
	return nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type":    "application/json;charset=UTF-8",
		"accept":          "application/json, text/plain, */*",
		"accept-language": "zh-CN,zh;q=0.9",
		"Cookie":          c.cookies,
		"origin":          "https://www.douyin.com",
		"referer":         "https://www.douyin.com/",
		"user-agent":      c.userAgent,
	}
}

func (c *Client) commonParams() url.Values {
	return url.Values{
		"device_platform":             {"webapp"},
		"aid":                         {"6383"},
		"channel":                     {"channel_pc_web"},
		"publish_video_strategy_type": {"2"},
		"update_version_code":         {"170400"},
		"pc_client_type":              {"1"},
		"version_code":                {"170400"},
		"version_name":                {"17.4.0"},
		"cookie_enabled":              {"true"},
		"screen_width":                {"2560"},
		"screen_height":               {"1440"},
		"browser_language":            {"zh-CN"},
		"browser_platform":            {"MacIntel"},
		"browser_name":                {"Chrome"},
		"browser_version":             {"127.0.0.0"},
		"browser_online":              {"true"},
		"engine_name":                 {"Blink"},
		"engine_version":              {"127.0.0.0"},
		"os_name":                     {"Mac+OS"},
		"os_version":                  {"10.15.7"},
		"cpu_core_num":                {"8"},
		"device_memory":               {"8"},
		"platform":                    {"PC"},
		"downlink":                    {"4.45"},
		"effective_type":              {"4g"},
		"round_trip_time":             {"100"},
	}
}

// get merges the common and verify params into the request, signs the
// encoded query via the gateway, then runs the HTTP call under the
// retry policy. Signing happens once: a SignError is never retried.
func (c *Client) get(ctx context.Context, uri string, params url.Values, out any) error {
	if c.verify == nil {
		return &media.InvalidInputError{Msg: "session not initialized"}
	}

	merged := c.commonParams()
	for key, values := range params {
		merged[key] = values
	}
	merged.Set("webid", c.verify.webID)
	merged.Set("msToken", c.verify.msToken)

	tokens, err := c.sign.DouyinSign(ctx, signsrv.DouyinSignRequest{
		URI:         uri,
		QueryParams: merged.Encode(),
		UserAgent:   c.userAgent,
		Cookies:     c.cookies,
	})
	if err != nil {
		return err
	}
	merged.Set("a_bogus", tokens.ABogus)
	fullURL := c.apiBase + uri + "?" + merged.Encode()

	return c.retry.Do(ctx, func() error {
		resp, err := c.caller.Call(ctx, fullURL, media.RequestParams{
			Method:  fasthttp.MethodGet,
			Headers: c.headers(),
			Timeout: c.timeout,
		})
		if err != nil {
			return errors.Wrap(err, "douyin: request")
		}
		body := strings.TrimSpace(string(resp.Body))
		if body == "" || body == "blocked" {
			slog.Error("Douyin rejected the request",
				"uri", uri,
				"body", body)
			return &media.DataFetchError{Msg: "account blocked"}
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return errors.Wrap(err, "douyin: decode response")
		}
		return nil
	})
}

// CheckAlive probes the self-info endpoint. The response includes the
// user agent of the logged-in browser session; when present it replaces
// the configured one so subsequent signatures match.
func (c *Client) CheckAlive(ctx context.Context) bool {
	var info selfInfo
	if err := c.get(ctx, "/aweme/v1/web/query/user/", url.Values{}, &info); err != nil {
		slog.Error("Douyin self query failed",
			"error", err.Error())
		return false
	}
	if info.UserUID == "" || info.ID == "" {
		slog.Error("Douyin self query returned no identity",
			"user_uid", info.UserUID)
		return false
	}
	if info.UserAgent != "" {
		c.userAgent = info.UserAgent
	}
	return true
}

func (c *Client) CreatorProfile(ctx context.Context, creatorID string) (*media.CreatorProfile, error) {
	params := url.Values{
		"sec_user_id":                 {creatorID},
		"publish_video_strategy_type": {"2"},
		"personal_center_strategy":    {"1"},
	}
	var resp userProfileResponse
	if err := c.get(ctx, "/aweme/v1/web/user/profile/other/", params, &resp); err != nil {
		return nil, err
	}
	return extractCreatorProfile(&resp), nil
}

func (c *Client) CreatorContents(ctx context.Context, creatorID, cursor string) (*media.ContentPage, error) {
	if cursor == "" {
		cursor = "0"
	}
	params := url.Values{
		"sec_user_id":                 {creatorID},
		"count":                       {strconv.Itoa(pageSize)},
		"max_cursor":                  {cursor},
		"locate_query":                {"false"},
		"publish_video_strategy_type": {"2"},
		"verifyFp":                    {c.verifyFp()},
		"fp":                          {c.verifyFp()},
	}
	var resp postListResponse
	if err := c.get(ctx, "/aweme/v1/web/aweme/post/", params, &resp); err != nil {
		return nil, err
	}
	return extractContents(&resp), nil
}

func (c *Client) ContentDetail(ctx context.Context, contentID, _ string) (*media.Content, error) {
	if contentID == "" {
		return nil, &media.InvalidInputError{Msg: "content id required"}
	}
	params := url.Values{"aweme_id": {contentID}}
	var resp detailResponse
	if err := c.get(ctx, "/aweme/v1/web/aweme/detail/", params, &resp); err != nil {
		return nil, err
	}
	if resp.AwemeDetail == nil {
		return nil, nil
	}
	return extractContent(resp.AwemeDetail), nil
}

func (c *Client) verifyFp() string {
	if c.verify == nil {
		return ""
	}
	return c.verify.verifyFp
}
