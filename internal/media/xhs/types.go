package xhs

import "github.com/mediapick/mediapick/internal/media"

// Note type discriminator values used by the web API.
const (
	noteTypeNormal = "normal"
	noteTypeVideo  = "video"
)

// Error codes from the JSON envelope.
const (
	codeIPBlock         = 300012
	codeAccessFrequency = 300013
	codeSignFault       = 300015
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    jsonRawOptional `json:"data"`
}

// jsonRawOptional keeps the raw bytes of an optional object field.
type jsonRawOptional []byte

func (r *jsonRawOptional) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

type selfInfoData struct {
	Result struct {
		Success bool `json:"success"`
	} `json:"result"`
}

// note is the API-shaped note item, shared between the user_posted
// feed and the note_card returned by the feed detail endpoint.
type note struct {
	NoteID       string    `json:"note_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	DisplayTitle string    `json:"display_title"`
	XsecToken    string    `json:"xsec_token"`
	Cover        coverInfo `json:"cover"`
	ImageList    []image   `json:"image_list"`
	Video        videoInfo `json:"video"`
}

type coverInfo struct {
	URLDefault string `json:"url_default"`
}

type image struct {
	URLDefault string `json:"url_default"`
}

type videoInfo struct {
	Media struct {
		Stream struct {
			H264 []stream `json:"h264"`
		} `json:"stream"`
	} `json:"media"`
}

type stream struct {
	MasterURL string `json:"master_url"`
}

type userPostedData struct {
	Notes   []note            `json:"notes"`
	Cursor  media.LooseString `json:"cursor"`
	HasMore bool              `json:"has_more"`
}

type feedData struct {
	Items []struct {
		NoteCard note `json:"note_card"`
	} `json:"items"`
}
