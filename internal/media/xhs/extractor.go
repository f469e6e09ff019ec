package xhs

import (
	"github.com/mediapick/mediapick/internal/media"
)

func extractCreatorProfile(state *htmlUserState, creatorID string) *media.CreatorProfile {
	data := &state.User.UserPageData
	var fans, follows string
	for _, interaction := range data.Interactions {
		switch interaction.Type {
		case "fans":
			fans = interaction.Count.String()
		case "follows":
			follows = interaction.Count.String()
		}
	}
	return &media.CreatorProfile{
		Nickname:       data.BasicInfo.Nickname,
		Avatar:         data.BasicInfo.Images,
		Description:    data.BasicInfo.Desc,
		UserID:         creatorID,
		FollowerCount:  fans,
		FollowingCount: follows,
		// The profile page does not expose a note total.
		ContentCount: "未知",
	}
}

func extractContents(data *userPostedData) *media.ContentPage {
	page := &media.ContentPage{HasMore: data.HasMore}
	for i := range data.Notes {
		if content := extractContent(&data.Notes[i]); content != nil {
			page.Contents = append(page.Contents, *content)
		}
	}
	if page.HasMore {
		page.NextCursor = data.Cursor.String()
	}
	return page
}

// extractContent normalizes one note; items that are neither notes nor
// videos are dropped. The feed omits image lists and video addresses,
// those only arrive with the detail endpoint.
func extractContent(n *note) *media.Content {
	var contentType media.ContentType
	switch n.Type {
	case noteTypeNormal:
		contentType = media.ContentTypeNote
	case noteTypeVideo:
		contentType = media.ContentTypeVideo
	default:
		return nil
	}

	content := &media.Content{
		ID:          n.NoteID,
		URL:         noteURL(n),
		Title:       pickTitle(n),
		ContentType: contentType,
		CoverURL:    n.Cover.URLDefault,
	}
	for _, img := range n.ImageList {
		if img.URLDefault != "" {
			content.ImageURLs = append(content.ImageURLs, img.URLDefault)
		}
	}
	if streams := n.Video.Media.Stream.H264; len(streams) > 0 {
		content.VideoDownloadURL = streams[0].MasterURL
	}
	if content.CoverURL == "" && len(content.ImageURLs) > 0 {
		content.CoverURL = content.ImageURLs[0]
	}
	return content
}

func pickTitle(n *note) string {
	if n.DisplayTitle != "" {
		return n.DisplayTitle
	}
	return n.Title
}

func noteURL(n *note) string {
	return indexURL + "/explore/" + n.NoteID + "?xsec_token=" + n.XsecToken + "&xsec_source=pc_user"
}
