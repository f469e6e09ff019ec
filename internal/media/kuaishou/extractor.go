package kuaishou

import (
	"github.com/mediapick/mediapick/internal/media"
)

const maxTitleRunes = 1024

// pcursorExhausted is the sentinel the API returns on the last page.
const pcursorExhausted = "no_more"

func extractCreatorProfile(data *profileData) *media.CreatorProfile {
	if data.VisionProfile.Result != 1 {
		return nil
	}
	profile := &data.VisionProfile.UserProfile.Profile
	counts := &data.VisionProfile.UserProfile.OwnerCount
	return &media.CreatorProfile{
		Nickname:       profile.UserName,
		Avatar:         profile.HeadURL,
		Description:    profile.UserText,
		UserID:         profile.UserID,
		FollowerCount:  counts.Fan.String(),
		FollowingCount: counts.Follow.String(),
		ContentCount:   counts.PhotoPublic.String(),
	}
}

func extractContents(data *photoListData) *media.ContentPage {
	list := &data.VisionProfilePhotoList
	if list.Result != 1 {
		return &media.ContentPage{}
	}
	page := &media.ContentPage{
		HasMore: list.Pcursor != pcursorExhausted && list.Pcursor != "",
	}
	for _, f := range list.Feeds {
		if content := extractContent(f.Photo); content != nil {
			page.Contents = append(page.Contents, *content)
		}
	}
	if page.HasMore {
		page.NextCursor = list.Pcursor
	}
	return page
}

func extractContent(p *photo) *media.Content {
	if p == nil || p.ID == "" {
		return nil
	}
	return &media.Content{
		ID:               p.ID,
		URL:              indexURL + "/short-video/" + p.ID,
		Title:            pickTitle(p),
		ContentType:      media.ContentTypeVideo,
		CoverURL:         pickCoverURL(p),
		VideoDownloadURL: pickVideoURL(p),
	}
}

func pickTitle(p *photo) string {
	title := p.OriginCaption
	if title == "" {
		title = p.Caption
	}
	if title == "" {
		title = "快手视频_" + p.ID
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes])
	}
	return title
}

func pickCoverURL(p *photo) string {
	if p.CoverURL != "" {
		return p.CoverURL
	}
	if len(p.CoverURLs) > 0 {
		return p.CoverURLs[0].URL
	}
	return p.AnimatedCover
}

// pickVideoURL prefers the H.265 address, then the plain one, then the
// adaptive video resource (hevc before h264).
func pickVideoURL(p *photo) string {
	if p.PhotoH265URL != "" {
		return p.PhotoH265URL
	}
	if p.PhotoURL != "" {
		return p.PhotoURL
	}
	if p.VideoResource == nil {
		return ""
	}
	for _, codec := range []*codecResource{p.VideoResource.Hevc, p.VideoResource.H264} {
		if codec == nil || len(codec.AdaptationSet) == 0 {
			continue
		}
		if reps := codec.AdaptationSet[0].Representation; len(reps) > 0 && reps[0].URL != "" {
			return reps[0].URL
		}
	}
	return ""
}
