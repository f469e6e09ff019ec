package bilibili

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/mediapick/mediapick/internal/media"
)

func extractCreatorProfile(info *upInfo, relation *relationStat, navnum *spaceNavnum) *media.CreatorProfile {
	return &media.CreatorProfile{
		Nickname:       info.Name,
		Avatar:         info.Face,
		Description:    info.Sign,
		UserID:         info.Mid.String(),
		FollowerCount:  strconv.FormatInt(relation.Follower, 10),
		FollowingCount: strconv.FormatInt(relation.Following, 10),
		ContentCount:   strconv.FormatInt(navnum.Video, 10),
	}
}

func extractContents(pn int, data *arcSearchData) *media.ContentPage {
	page := &media.ContentPage{
		Contents: make([]media.Content, 0, len(data.List.VList)),
		HasMore:  data.Page.Count > pn*pageSize,
	}
	for _, v := range data.List.VList {
		page.Contents = append(page.Contents, media.Content{
			ID:          v.Bvid,
			URL:         indexURL + "/video/" + v.Bvid,
			Title:       v.Title,
			ContentType: media.ContentTypeVideo,
			CoverURL:    v.Pic,
		})
	}
	if page.HasMore {
		page.NextCursor = strconv.Itoa(pn + 1)
	}
	return page
}

// extractDetail merges the view and playurl answers. DASH picks the
// highest-quality video stream (audio-only uploads fall back to the
// best audio stream); legacy MP4 answers use the first durl segment.
func extractDetail(view *videoView, play *playData) *media.Content {
	var downloadURL, audioURL, mediaFormat string

	switch {
	case play.Dash != nil && (len(play.Dash.Video) > 0 || len(play.Dash.Audio) > 0):
		mediaFormat = "DASH"
		if streams := play.Dash.Video; len(streams) > 0 {
			sorted := append([]dashStream(nil), streams...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
			downloadURL = sorted[0].url()
		}
		if streams := play.Dash.Audio; len(streams) > 0 {
			sorted := append([]dashStream(nil), streams...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
			audioURL = sorted[0].url()
			if downloadURL == "" {
				downloadURL = audioURL
			}
		}
	case len(play.Durl) > 0:
		mediaFormat = "MP4"
		downloadURL = play.Durl[0].URL
	}

	id := view.Bvid
	if id == "" {
		id = "av" + strconv.FormatInt(view.Aid, 10)
	}
	return &media.Content{
		ID:               id,
		URL:              indexURL + "/video/" + id,
		Title:            view.Title,
		ContentType:      media.ContentTypeVideo,
		CoverURL:         view.Pic,
		VideoDownloadURL: downloadURL,
		Extra: map[string]any{
			"media_format": mediaFormat,
			"audio_url":    audioURL,
			"duration":     view.Duration,
			"owner":        view.Owner,
		},
	}
}

// extractWWebID pulls the access_id out of the __RENDER_DATA__ script
// embedded in the space dynamic page. The payload is URL-escaped JSON.
func extractWWebID(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "bilibili: parse space page")
	}
	raw := doc.Find(`script#__RENDER_DATA__`).Text()
	if raw == "" {
		return "", errors.New("bilibili: render data not found")
	}
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return "", errors.Wrap(err, "bilibili: unescape render data")
	}
	var payload struct {
		AccessID string `json:"access_id"`
	}
	if err := json.Unmarshal([]byte(unescaped), &payload); err != nil {
		return "", errors.Wrap(err, "bilibili: decode render data")
	}
	if payload.AccessID == "" {
		return "", errors.New("bilibili: empty access_id")
	}
	return payload.AccessID, nil
}
