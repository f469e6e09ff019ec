// Package media defines the platform-agnostic model and the capability
// contract shared by every platform client, plus the pieces all clients
// route through: the HTTP caller, the retry policy, the error taxonomy
// and the URL resolvers.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

type Platform string

const (
	PlatformDouyin   Platform = "dy"
	PlatformXhs      Platform = "xhs"
	PlatformBilibili Platform = "bili"
	PlatformKuaishou Platform = "ks"
)

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeNote  ContentType = "note"
)

// Content is one publishable unit (video or image/text note),
// normalized from a single raw API response.
type Content struct {
	ID               string         `json:"id"`
	URL              string         `json:"url"`
	Title            string         `json:"title"`
	ContentType      ContentType    `json:"content_type"`
	CoverURL         string         `json:"cover_url"`
	ImageURLs        []string       `json:"image_urls,omitempty"`
	VideoDownloadURL string         `json:"video_download_url"`
	Extra            map[string]any `json:"extra,omitempty"`
}

// CreatorProfile keeps its counts as display strings: platforms report
// them inconsistently (pre-formatted "1.2万", plain ints, or "未知").
type CreatorProfile struct {
	Nickname       string `json:"nickname"`
	Avatar         string `json:"avatar"`
	Description    string `json:"description"`
	UserID         string `json:"user_id"`
	FollowerCount  string `json:"follower_count"`
	FollowingCount string `json:"following_count"`
	ContentCount   string `json:"content_count"`
}

// ContentPage is one page of a creator feed. NextCursor is opaque and
// must be echoed back unchanged; it is always empty when HasMore is
// false.
type ContentPage struct {
	Contents   []Content `json:"contents"`
	HasMore    bool      `json:"has_more"`
	NextCursor string    `json:"next_cursor"`
}

// Client is implemented by every platform variant. InitializeSession
// must complete before any other call. CheckAlive reports whether the
// supplied cookies represent a live session; it never returns an error.
type Client interface {
	InitializeSession(ctx context.Context) error
	CheckAlive(ctx context.Context) bool
	CreatorProfile(ctx context.Context, creatorID string) (*CreatorProfile, error)
	CreatorContents(ctx context.Context, creatorID, cursor string) (*ContentPage, error)
	ContentDetail(ctx context.Context, contentID, originalURL string) (*Content, error)
}

// DefaultTimeout bounds a single platform HTTP call.
const DefaultTimeout = 10 * time.Second

// LooseString decodes a JSON string or number into a display string.
// Platform counters arrive as either, sometimes pre-formatted.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}
	*s = LooseString(b)
	return nil
}

func (s LooseString) String() string { return string(s) }
