package douyin

import (
	"strconv"

	"github.com/mediapick/mediapick/internal/media"
)

const maxTitleRunes = 1024

func extractCreatorProfile(resp *userProfileResponse) *media.CreatorProfile {
	profile := &media.CreatorProfile{}
	u := resp.User
	if u == nil {
		return profile
	}
	profile.UserID = u.SecUID
	profile.Nickname = u.Nickname
	profile.Description = u.Signature
	if len(u.Avatar.URLList) > 0 {
		profile.Avatar = u.Avatar.URLList[0]
	}
	profile.FollowerCount = strconv.FormatInt(u.FollowerCount, 10)
	profile.FollowingCount = strconv.FormatInt(u.FollowingCount, 10)
	profile.ContentCount = strconv.FormatInt(u.AwemeCount, 10)
	return profile
}

func extractContents(resp *postListResponse) *media.ContentPage {
	page := &media.ContentPage{
		Contents: make([]media.Content, 0, len(resp.AwemeList)),
		HasMore:  resp.HasMore == 1,
	}
	for i := range resp.AwemeList {
		page.Contents = append(page.Contents, *extractContent(&resp.AwemeList[i]))
	}
	if page.HasMore {
		page.NextCursor = strconv.FormatInt(resp.MaxCursor, 10)
	}
	return page
}

func extractContent(a *aweme) *media.Content {
	content := &media.Content{
		ID:          a.AwemeID,
		Title:       pickTitle(a),
		ContentType: media.ContentTypeVideo,
		Extra:       map[string]any{"aweme_type": a.AwemeType},
	}
	if a.AwemeType == awemeTypeNote {
		content.ContentType = media.ContentTypeNote
		for _, img := range a.Images {
			if len(img.URLList) > 0 {
				content.ImageURLs = append(content.ImageURLs, img.URLList[0])
			}
		}
	} else {
		content.VideoDownloadURL = pickVideoURL(&a.Video)
	}
	content.URL = media.ContentURL(media.PlatformDouyin, content.ContentType, a.AwemeID)
	content.CoverURL = pickCoverURL(a)
	return content
}

func pickTitle(a *aweme) string {
	title := a.Caption
	if title == "" {
		title = a.Desc
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes])
	}
	return title
}

// pickVideoURL prefers the H.264 address, then the 256-encoded one,
// then the generic play address. The second list entry carries the
// CDN host that serves without login, so shorter lists are skipped.
func pickVideoURL(v *video) string {
	for _, addr := range []*playAddr{v.PlayAddrH264, v.PlayAddr256, v.PlayAddr} {
		if addr != nil && len(addr.URLList) >= 2 {
			return addr.URLList[1]
		}
	}
	return ""
}

func pickCoverURL(a *aweme) string {
	for _, cover := range []*urlList{a.Video.RawCover, a.Video.OriginCover} {
		if cover != nil && len(cover.URLList) >= 2 {
			return cover.URLList[1]
		}
	}
	for _, img := range a.Images {
		if len(img.URLList) > 0 {
			return img.URLList[0]
		}
	}
	return ""
}
