package bilibili

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDetailDASHPicksHighestQuality(t *testing.T) {
	view := &videoView{
		Bvid:     "BV1d54y1g7db",
		Aid:      170001,
		Cid:      279786,
		Title:    "标题",
		Pic:      "https://cdn/cover.jpg",
		Duration: 213,
	}
	play := &playData{
		Dash: &dashInfo{
			Video: []dashStream{
				{ID: 80, BaseURL: "https://cdn/1080p.m4s"},
				{ID: 116, BaseURL: "https://cdn/1080p60.m4s"},
				{ID: 32, BaseURLSnake: "https://cdn/480p.m4s"},
			},
			Audio: []dashStream{
				{ID: 30216, BaseURL: "https://cdn/audio-lo.m4s"},
				{ID: 30280, BaseURL: "https://cdn/audio-hi.m4s"},
			},
		},
	}

	content := extractDetail(view, play)
	assert.Equal(t, "https://cdn/1080p60.m4s", content.VideoDownloadURL)
	assert.Equal(t, "DASH", content.Extra["media_format"])
	assert.Equal(t, "https://cdn/audio-hi.m4s", content.Extra["audio_url"])
	assert.Equal(t, "https://www.bilibili.com/video/BV1d54y1g7db", content.URL)
	assert.Equal(t, int64(213), content.Extra["duration"])
}

func TestExtractDetailAudioOnlyFallback(t *testing.T) {
	play := &playData{
		Dash: &dashInfo{
			Audio: []dashStream{{ID: 30280, BaseURL: "https://cdn/audio.m4s"}},
		},
	}
	content := extractDetail(&videoView{Bvid: "BV1"}, play)
	assert.Equal(t, "https://cdn/audio.m4s", content.VideoDownloadURL)
}

func TestExtractDetailMP4Durl(t *testing.T) {
	play := &playData{
		Durl: []durlSegment{
			{Order: 1, URL: "https://cdn/part1.mp4"},
			{Order: 2, URL: "https://cdn/part2.mp4"},
		},
	}
	content := extractDetail(&videoView{Aid: 170001}, play)
	assert.Equal(t, "https://cdn/part1.mp4", content.VideoDownloadURL)
	assert.Equal(t, "MP4", content.Extra["media_format"])
	assert.Equal(t, "av170001", content.ID)
}

func TestExtractContentsPagination(t *testing.T) {
	data := &arcSearchData{}
	data.List.VList = []arcVideo{
		{Bvid: "BV1", Title: "a", Pic: "p1"},
		{Bvid: "BV2", Title: "b", Pic: "p2"},
	}
	data.Page.Pn = 1
	data.Page.Count = 35

	page := extractContents(1, data)
	assert.True(t, page.HasMore, "35 items total, page 1 of 30")
	assert.Equal(t, "2", page.NextCursor)
	require.Len(t, page.Contents, 2)

	data.Page.Pn = 2
	page = extractContents(2, data)
	assert.False(t, page.HasMore, "35 items total, page 2 exhausts")
	assert.Empty(t, page.NextCursor)
}

func TestExtractWWebID(t *testing.T) {
	payload := url.QueryEscape(`{"access_id":"w_webid_value_123"}`)
	html := `<html><head><script id="__RENDER_DATA__" type="application/json">` + payload + `</script></head></html>`

	webID, err := extractWWebID(html)
	require.NoError(t, err)
	assert.Equal(t, "w_webid_value_123", webID)
}

func TestExtractWWebIDMissing(t *testing.T) {
	_, err := extractWWebID("<html><body>nothing</body></html>")
	require.Error(t, err)
}

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		name      string
		contentID string
		url       string
		wantAid   string
		wantBvid  string
	}{
		{name: "bv id", contentID: "BV1d54y1g7db", wantBvid: "BV1d54y1g7db"},
		{name: "av prefix", contentID: "av170001", wantAid: "170001"},
		{name: "bare digits", contentID: "170001", wantAid: "170001"},
		{name: "bv from url", contentID: "x", url: "https://www.bilibili.com/video/BV1d54y1g7db", wantBvid: "BV1d54y1g7db"},
		{name: "av from url", contentID: "x", url: "https://www.bilibili.com/video/av170001?p=1", wantAid: "170001"},
		{name: "fallback treats id as bvid", contentID: "1d54y1g7db", wantBvid: "1d54y1g7db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aid, bvid := resolveVideoID(tt.contentID, tt.url)
			assert.Equal(t, tt.wantAid, aid)
			assert.Equal(t, tt.wantBvid, bvid)
		})
	}
}
