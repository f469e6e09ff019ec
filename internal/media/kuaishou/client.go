// Package kuaishou fetches creator and video metadata from the
// Kuaishou web GraphQL endpoint. No request signing is involved; the
// cookie header alone carries the session.
package kuaishou

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/mediapick/mediapick/internal/media"
)

const (
	graphqlURL = "https://www.kuaishou.com/graphql"
	indexURL   = "https://www.kuaishou.com"

	fixedUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
)

type Config struct {
	Cookies   string
	UserAgent string
	Timeout   time.Duration
}

type Client struct {
	cookies   string
	userAgent string
	timeout   time.Duration
	caller    *media.Caller
	retry     media.RetryPolicy
	queries   queryStore

	endpoint string
}

func New(cfg Config) (*Client, error) {
	queries, err := loadQueries()
	if err != nil {
		return nil, err
	}
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
		caller:    media.DefaultCaller,
		retry:     media.KuaishouRetry,
		queries:   queries,
		endpoint:  graphqlURL,
	}, nil
}

func (c *Client) InitializeSession(context.Context) error { return nil }

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json;charset=UTF-8",
		"Accept":       "application/json, text/plain, */*",
		"Cookie":       c.cookies,
		"origin":       indexURL,
		"referer":      indexURL + "/",
		"user-agent":   c.userAgent,
	}
}

// query posts one GraphQL operation under the retry policy. A non-empty
// errors array is terminal: the query itself is wrong, not the network.
func (c *Client) query(ctx context.Context, operation string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{
		OperationName: operation,
		Variables:     variables,
		Query:         c.queries.get(queryFileFor(operation)),
	})
	if err != nil {
		return errors.Wrap(err, "kuaishou: encode request")
	}
	return c.retry.Do(ctx, func() error {
		resp, err := c.caller.Call(ctx, c.endpoint, media.RequestParams{
			Method:  fasthttp.MethodPost,
			Headers: c.headers(),
			Body:    body,
			Timeout: c.timeout,
		})
		if err != nil {
			return errors.Wrap(err, "kuaishou: request")
		}
		var envelope graphqlResponse
		if err := json.Unmarshal(resp.Body, &envelope); err != nil {
			return errors.Wrap(err, "kuaishou: decode response")
		}
		if len(envelope.Errors) > 0 {
			return &media.DataFetchError{Msg: "graphql errors: " + envelope.Errors[0].Message}
		}
		if out == nil || len(envelope.Data) == 0 {
			return nil
		}
		return errors.Wrap(json.Unmarshal(envelope.Data, out), "kuaishou: decode data")
	})
}

func queryFileFor(operation string) string {
	switch operation {
	case "visionProfile":
		return queryVisionProfile
	case "visionProfilePhotoList":
		return queryVisionProfilePhotoList
	case "visionVideoDetail":
		return queryVideoDetail
	case "visionProfileUserList":
		return queryVisionProfileUserList
	default:
		return operation
	}
}

// CheckAlive probes the follow list, which requires a live login.
func (c *Client) CheckAlive(ctx context.Context) bool {
	var data profileUserListData
	err := c.query(ctx, "visionProfileUserList", map[string]any{"ftype": 1}, &data)
	if err != nil {
		slog.Error("Kuaishou liveness probe failed",
			"error", err.Error())
		return false
	}
	return data.VisionProfileUserList.Result == 1
}

func (c *Client) CreatorProfile(ctx context.Context, creatorID string) (*media.CreatorProfile, error) {
	var data profileData
	err := c.query(ctx, "visionProfile", map[string]any{"userId": creatorID}, &data)
	if err != nil {
		return nil, err
	}
	profile := extractCreatorProfile(&data)
	if profile == nil {
		return nil, &media.DataFetchError{Msg: "creator not found: " + creatorID}
	}
	return profile, nil
}

func (c *Client) CreatorContents(ctx context.Context, creatorID, cursor string) (*media.ContentPage, error) {
	var data photoListData
	err := c.query(ctx, "visionProfilePhotoList", map[string]any{
		"pcursor": cursor,
		"userId":  creatorID,
		"page":    "profile",
	}, &data)
	if err != nil {
		return nil, err
	}
	return extractContents(&data), nil
}

func (c *Client) ContentDetail(ctx context.Context, contentID, _ string) (*media.Content, error) {
	if contentID == "" {
		return nil, &media.InvalidInputError{Msg: "photo id required"}
	}
	var data videoDetailData
	err := c.query(ctx, "visionVideoDetail", map[string]any{
		"photoId": contentID,
		"page":    "search",
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.VisionVideoDetail.Status != 1 {
		return nil, nil
	}
	return extractContent(data.VisionVideoDetail.Photo), nil
}
