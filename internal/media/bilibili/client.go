// Package bilibili fetches creator and video metadata from the
// Bilibili web API. Some endpoints require the wbi signature (wts and
// w_rid) from the sign server, and the profile endpoint additionally
// needs the w_webid scraped from the space dynamic page.
package bilibili

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"github.com/mediapick/mediapick/internal/cache"
	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/signsrv"
)

const (
	apiURL   = "https://api.bilibili.com"
	indexURL = "https://www.bilibili.com"
	spaceURL = "https://space.bilibili.com"

	fixedUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	pageSize = 30

	wWebIDCacheKey = "bilibili:w_webid"
	wWebIDCacheTTL = 12 * time.Hour
)

type Config struct {
	Cookies   string
	UserAgent string
	Timeout   time.Duration
	Sign      *signsrv.Client
	Cache     cache.Cache
}

type Client struct {
	cookies   string
	userAgent string
	timeout   time.Duration
	sign      *signsrv.Client
	cache     cache.Cache
	caller    *media.Caller
	retry     media.RetryPolicy

	apiBase   string
	spaceBase string
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
	store := cfg.Cache
	if store == nil {
		store = cache.NewMemory()
	}
	return &Client{
		cookies:   cfg.Cookies,
		userAgent: userAgent,
		timeout:   timeout,
		sign:      cfg.Sign,
		cache:     store,
		caller:    media.DefaultCaller,
		retry:     media.BilibiliRetry,
		apiBase:   apiURL,
		spaceBase: spaceURL,
	}
}

func (c *Client) InitializeSession(context.Context) error { return nil }

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json;charset=UTF-8",
		"Accept":       "application/json, text/plain, */*",
		"Cookie":       c.cookies,
		"origin":       indexURL,
		"referer":      indexURL,
		"user-agent":   c.userAgent,
	}
}

// get runs one API call under the retry policy and unwraps the code
// envelope. When signIt is set the parameters are extended with the
// wbi signature first; signing happens once per logical call.
func (c *Client) get(ctx context.Context, uri string, params map[string]string, signIt bool, out any) error {
	if signIt {
		tokens, err := c.sign.BilibiliSign(ctx, signsrv.BilibiliSignRequest{
			ReqData: params,
			Cookies: c.cookies,
		})
		if err != nil {
			return err
		}
		params["wts"] = tokens.Wts
		params["w_rid"] = tokens.WRid
	}
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	fullURL := c.apiBase + uri
	if len(values) > 0 {
		fullURL += "?" + values.Encode()
	}

	return c.retry.Do(ctx, func() error {
		resp, err := c.caller.Call(ctx, fullURL, media.RequestParams{
			Method:  fasthttp.MethodGet,
			Headers: c.headers(),
			Timeout: c.timeout,
		})
		if err != nil {
			return errors.Wrap(err, "bilibili: request")
		}
		var env envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			return errors.Wrap(err, "bilibili: decode response")
		}
		if env.Code != 0 {
			if env.Code == codeNotFound {
				slog.Warn("Bilibili resource not visible",
					"uri", uri,
					"message", env.Message)
				return nil
			}
			return errors.Errorf("bilibili: request failed: code=%d message=%s", env.Code, env.Message)
		}
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(env.Data, out), "bilibili: decode data")
	})
}

// CheckAlive reads the nav endpoint once, without the retry budget.
func (c *Client) CheckAlive(ctx context.Context) bool {
	resp, err := c.caller.Call(ctx, c.apiBase+"/x/web-interface/nav", media.RequestParams{
		Method:  fasthttp.MethodGet,
		Headers: c.headers(),
		Timeout: c.timeout,
	})
	if err != nil {
		slog.Error("Bilibili nav probe failed",
			"error", err.Error())
		return false
	}
	var env struct {
		Code int     `json:"code"`
		Data navData `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return false
	}
	return env.Code == 0 && env.Data.IsLogin
}

// wWebID returns the cached access id, scraping the creator's space
// dynamic page on a miss. Concurrent misses share one scrape.
func (c *Client) wWebID(ctx context.Context, creatorID string) (string, error) {
	return c.cache.GetOrFill(ctx, wWebIDCacheKey, wWebIDCacheTTL, func(ctx context.Context) (string, error) {
		resp, err := c.caller.Call(ctx, c.spaceBase+"/"+creatorID+"/dynamic", media.RequestParams{
			Method:  fasthttp.MethodGet,
			Headers: c.headers(),
			Timeout: c.timeout,
		})
		if err != nil {
			return "", errors.Wrap(err, "bilibili: space page")
		}
		return extractWWebID(string(resp.Body))
	})
}

// CreatorProfile gathers the account info, the relation counters and
// the space nav numbers concurrently.
func (c *Client) CreatorProfile(ctx context.Context, creatorID string) (*media.CreatorProfile, error) {
	webID, err := c.wWebID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	var (
		info     upInfo
		relation relationStat
		navnum   spaceNavnum
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		params := map[string]string{
			"mid":          creatorID,
			"token":        "",
			"platform":     "web",
			"web_location": "1550101",
			"w_webid":      webID,
			// Browser fingerprint fields the endpoint checks for.
			"dm_img_list":      "[]",
			"dm_img_str":       "V2ViR0wgMS4wIChPcGVuR0wgRVMgMi4wIENocm9taXVtKQ",
			"dm_cover_img_str": "QU5HTEUgKEFwcGxlLCBBTkdMRSBNZXRhbCBSZW5kZXJlcjogQXBwbGUgTTEsIFVuc3BlY2lmaWVkIFZlcnNpb24pR29vZ2xlIEluYy4gKEFwcGxlKQ",
			"dm_img_inter":     `{"ds":[],"wh":[4437,2834,85],"of":[321,642,321]}`,
		}
		return c.get(groupCtx, "/x/space/wbi/acc/info", params, true, &info)
	})
	group.Go(func() error {
		params := map[string]string{"vmid": creatorID, "web_location": "333.999"}
		return c.get(groupCtx, "/x/relation/stat", params, true, &relation)
	})
	group.Go(func() error {
		params := map[string]string{"mid": creatorID, "platform": "web", "web_location": "333.999"}
		return c.get(groupCtx, "/x/space/navnum", params, true, &navnum)
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return extractCreatorProfile(&info, &relation, &navnum), nil
}

// SpaceUpStat reads the aggregate play and like counters; the endpoint
// is one of the few that takes no signature.
func (c *Client) SpaceUpStat(ctx context.Context, creatorID string) (*UpStat, error) {
	params := map[string]string{"mid": creatorID, "platform": "web", "web_location": "333.999"}
	var stat UpStat
	if err := c.get(ctx, "/x/space/upstat", params, false, &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}

// CreatorContents pages the creator's uploads. The cursor is a numeric
// page index starting at 1.
func (c *Client) CreatorContents(ctx context.Context, creatorID, cursor string) (*media.ContentPage, error) {
	if cursor == "" {
		cursor = "1"
	}
	pn, err := strconv.Atoi(cursor)
	if err != nil || pn < 1 {
		return nil, &media.InvalidInputError{Msg: "cursor must be a page number: " + cursor}
	}
	params := map[string]string{
		"mid":   creatorID,
		"pn":    strconv.Itoa(pn),
		"ps":    strconv.Itoa(pageSize),
		"order": "pubdate",
	}
	var data arcSearchData
	if err := c.get(ctx, "/x/space/wbi/arc/search", params, true, &data); err != nil {
		return nil, err
	}
	return extractContents(pn, &data), nil
}

var (
	videoBvRe = regexp.MustCompile(`/video/(BV\w+)`)
	videoAvRe = regexp.MustCompile(`/video/av(\d+)`)
)

// resolveVideoID works out the aid or bvid from the content id or the
// original URL, whichever carries it.
func resolveVideoID(contentID, originalURL string) (aid string, bvid string) {
	videoURL := originalURL
	if videoURL == "" {
		videoURL = contentID
	}
	switch {
	case strings.HasPrefix(contentID, "BV"):
		return "", contentID
	case strings.HasPrefix(contentID, "av"):
		return strings.TrimPrefix(contentID, "av"), ""
	case isDigits(contentID):
		return contentID, ""
	case strings.Contains(videoURL, "bilibili.com/video/"):
		if match := videoBvRe.FindStringSubmatch(videoURL); len(match) > 1 {
			return "", match[1]
		}
		if match := videoAvRe.FindStringSubmatch(videoURL); len(match) > 1 {
			return match[1], ""
		}
	}
	return "", contentID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ContentDetail chains the view endpoint (aid, cid, title, cover) with
// the signed playurl endpoint that yields the download streams.
func (c *Client) ContentDetail(ctx context.Context, contentID, originalURL string) (*media.Content, error) {
	aid, bvid := resolveVideoID(contentID, originalURL)
	if aid == "" && bvid == "" {
		return nil, &media.InvalidInputError{Msg: "cannot resolve video id: " + contentID}
	}

	viewParams := map[string]string{}
	if aid != "" {
		viewParams["aid"] = aid
	} else {
		viewParams["bvid"] = bvid
	}
	var view videoView
	if err := c.get(ctx, "/x/web-interface/wbi/view", viewParams, false, &view); err != nil {
		return nil, err
	}
	if view.Aid == 0 || view.Cid == 0 {
		return nil, nil
	}

	playParams := map[string]string{
		"avid": strconv.FormatInt(view.Aid, 10),
		"cid":  strconv.FormatInt(view.Cid, 10),
		// Ask for the highest quality; the API caps at what the
		// session may actually stream.
		"qn":       "127",
		"fnval":    "4048",
		"fnver":    "0",
		"fourk":    "1",
		"platform": "pc",
	}
	var play playData
	if err := c.get(ctx, "/x/player/wbi/playurl", playParams, true, &play); err != nil {
		return nil, err
	}
	return extractDetail(&view, &play), nil
}
