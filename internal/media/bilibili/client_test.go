package bilibili

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/signsrv"
)

func newSignServer(t *testing.T) *signsrv.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"isok": true,
			"data": map[string]string{"wts": "1700000000", "w_rid": "deadbeef"},
		})
	}))
	t.Cleanup(server.Close)
	return signsrv.New(server.URL)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	c := New(Config{Cookies: "SESSDATA=abc", Sign: newSignServer(t)})
	c.apiBase = api.URL
	c.spaceBase = api.URL
	c.retry = media.RetryPolicy{Attempts: 5, Backoff: media.BackoffNone}
	return c
}

func TestGetAddsWbiSignature(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{}})
	})

	var out map[string]any
	params := map[string]string{"mid": "434377496"}
	require.NoError(t, c.get(context.Background(), "/x/space/wbi/arc/search", params, true, &out))
	assert.Equal(t, "1700000000", gotQuery.Get("wts"))
	assert.Equal(t, "deadbeef", gotQuery.Get("w_rid"))
	assert.Equal(t, "434377496", gotQuery.Get("mid"))
}

func TestNotFoundCodeYieldsEmptyResult(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(map[string]any{"code": -404, "message": "啥都木有"})
	})

	var view videoView
	require.NoError(t, c.get(context.Background(), "/x/web-interface/wbi/view", map[string]string{"bvid": "BVgone"}, false, &view))
	assert.Equal(t, 1, attempts, "-404 is not retried")
	assert.Zero(t, view.Aid)
}

func TestNonZeroCodeIsRetried(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(map[string]any{"code": -509, "message": "请求过于频繁"})
	})

	err := c.get(context.Background(), "/x/relation/stat", map[string]string{"vmid": "1"}, false, nil)
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
}

func TestCreatorContentsInvalidCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid cursor")
	})

	_, err := c.CreatorContents(context.Background(), "434377496", "not-a-number")
	var inputErr *media.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
}

func TestCreatorContentsDefaultsToPageOne(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pn"))
		assert.Equal(t, "30", r.URL.Query().Get("ps"))
		assert.Equal(t, "pubdate", r.URL.Query().Get("order"))
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"list": map[string]any{"vlist": []map[string]any{{"bvid": "BV1", "title": "t", "pic": "p"}}},
				"page": map[string]any{"pn": 1, "ps": 30, "count": 1},
			},
		})
	})

	page, err := c.CreatorContents(context.Background(), "434377496", "")
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	require.Len(t, page.Contents, 1)
	assert.Equal(t, "BV1", page.Contents[0].ID)
}

func TestCreatorContentsWalksAllPages(t *testing.T) {
	// 35 uploads total: page 1 carries 30, page 2 the remaining 5.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pn := r.URL.Query().Get("pn")
		size := 30
		if pn == "2" {
			size = 5
		}
		vlist := make([]map[string]any, size)
		for i := range vlist {
			vlist[i] = map[string]any{"bvid": "BV" + pn + "_" + string(rune('a'+i%26)), "title": "t", "pic": "p"}
		}
		pnInt := 1
		if pn == "2" {
			pnInt = 2
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"list": map[string]any{"vlist": vlist},
				"page": map[string]any{"pn": pnInt, "ps": 30, "count": 35},
			},
		})
	})

	seen := map[string]bool{}
	cursor := ""
	total := 0
	for {
		page, err := c.CreatorContents(context.Background(), "434377496", cursor)
		require.NoError(t, err)
		total += len(page.Contents)
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		require.NotEmpty(t, page.NextCursor)
		require.False(t, seen[page.NextCursor], "cursor %s revisited", page.NextCursor)
		seen[page.NextCursor] = true
		cursor = page.NextCursor
	}
	assert.Equal(t, 35, total)
}

func TestSpaceUpStatUnsigned(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/space/upstat", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("w_rid"), "upstat is not signed")
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"archive": map[string]any{"view": 1234567}, "likes": 89},
		})
	})

	stat, err := c.SpaceUpStat(context.Background(), "434377496")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567), stat.Archive.View)
	assert.Equal(t, int64(89), stat.Likes)
}

func TestWWebIDScrapedOnceAndCached(t *testing.T) {
	var scrapes atomic.Int32
	payload := url.QueryEscape(`{"access_id":"cached_webid"}`)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		scrapes.Add(1)
		w.Write([]byte(`<script id="__RENDER_DATA__" type="application/json">` + payload + `</script>`))
	})

	for i := 0; i < 3; i++ {
		webID, err := c.wWebID(context.Background(), "434377496")
		require.NoError(t, err)
		assert.Equal(t, "cached_webid", webID)
	}
	assert.Equal(t, int32(1), scrapes.Load())
}

func TestCheckAlive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/x/web-interface/nav", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"isLogin": true},
		})
	})
	assert.True(t, c.CheckAlive(context.Background()))

	loggedOut := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"isLogin": false},
		})
	})
	assert.False(t, loggedOut.CheckAlive(context.Background()))
}

func TestContentDetailChainsViewAndPlayurl(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/x/web-interface/wbi/view":
			assert.Equal(t, "BV1d54y1g7db", r.URL.Query().Get("bvid"))
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{
					"bvid": "BV1d54y1g7db", "aid": 170001, "cid": 279786,
					"title": "标题", "pic": "https://cdn/c.jpg", "duration": 120,
				},
			})
		case "/x/player/wbi/playurl":
			assert.Equal(t, "170001", r.URL.Query().Get("avid"))
			assert.Equal(t, "279786", r.URL.Query().Get("cid"))
			assert.Equal(t, "127", r.URL.Query().Get("qn"))
			assert.Equal(t, "4048", r.URL.Query().Get("fnval"))
			assert.NotEmpty(t, r.URL.Query().Get("w_rid"), "playurl must be signed")
			json.NewEncoder(w).Encode(map[string]any{
				"code": 0,
				"data": map[string]any{
					"dash": map[string]any{
						"video": []map[string]any{{"id": 80, "baseUrl": "https://cdn/v.m4s"}},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	content, err := c.ContentDetail(context.Background(), "BV1d54y1g7db", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/v.m4s", content.VideoDownloadURL)
	assert.Equal(t, "BV1d54y1g7db", content.ID)
}
