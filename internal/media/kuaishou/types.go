package kuaishou

import (
	"encoding/json"

	"github.com/mediapick/mediapick/internal/media"
)

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type profileUserListData struct {
	VisionProfileUserList struct {
		Result int `json:"result"`
	} `json:"visionProfileUserList"`
}

type profileData struct {
	VisionProfile struct {
		Result      int `json:"result"`
		UserProfile struct {
			Profile struct {
				UserName string `json:"user_name"`
				UserID   string `json:"user_id"`
				HeadURL  string `json:"headurl"`
				UserText string `json:"user_text"`
			} `json:"profile"`
			OwnerCount struct {
				Fan         media.LooseString `json:"fan"`
				Follow      media.LooseString `json:"follow"`
				PhotoPublic media.LooseString `json:"photo_public"`
			} `json:"ownerCount"`
		} `json:"userProfile"`
	} `json:"visionProfile"`
}

type photoListData struct {
	VisionProfilePhotoList struct {
		Result  int    `json:"result"`
		Pcursor string `json:"pcursor"`
		Feeds   []feed `json:"feeds"`
	} `json:"visionProfilePhotoList"`
}

type videoDetailData struct {
	VisionVideoDetail struct {
		Status int    `json:"status"`
		Photo  *photo `json:"photo"`
	} `json:"visionVideoDetail"`
}

type feed struct {
	Photo *photo `json:"photo"`
}

type photo struct {
	ID            string         `json:"id"`
	Caption       string         `json:"caption"`
	OriginCaption string         `json:"originCaption"`
	CoverURL      string         `json:"coverUrl"`
	CoverURLs     []coverURL     `json:"coverUrls"`
	AnimatedCover string         `json:"animatedCoverUrl"`
	PhotoURL      string         `json:"photoUrl"`
	PhotoH265URL  string         `json:"photoH265Url"`
	VideoResource *videoResource `json:"videoResource"`
	Duration      int64          `json:"duration"`
}

type coverURL struct {
	URL string `json:"url"`
}

type videoResource struct {
	Hevc *codecResource `json:"hevc"`
	H264 *codecResource `json:"h264"`
}

type codecResource struct {
	AdaptationSet []adaptationSet `json:"adaptationSet"`
}

type adaptationSet struct {
	Representation []representation `json:"representation"`
}

type representation struct {
	URL string `json:"url"`
}
