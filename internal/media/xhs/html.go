package xhs

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/mediapick/mediapick/internal/media"
)

// The profile page and the note detail page both embed their state in
// window.__INITIAL_STATE__ with camelCase keys, unlike the snake_case
// JSON the API endpoints return. These mirror structs decode the HTML
// shape and convert into the API shape where useful.

var initialStateRe = regexp.MustCompile(`window\.__INITIAL_STATE__=(\{.*\})</script>`)

type htmlUserState struct {
	User struct {
		UserPageData struct {
			BasicInfo struct {
				Nickname string `json:"nickname"`
				Images   string `json:"images"`
				Desc     string `json:"desc"`
			} `json:"basicInfo"`
			Interactions []struct {
				Type  string            `json:"type"`
				Count media.LooseString `json:"count"`
			} `json:"interactions"`
		} `json:"userPageData"`
	} `json:"user"`
}

type htmlNoteState struct {
	Note struct {
		NoteDetailMap map[string]struct {
			Note htmlNote `json:"note"`
		} `json:"noteDetailMap"`
	} `json:"note"`
}

type htmlNote struct {
	NoteID    string `json:"noteId"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	XsecToken string `json:"xsecToken"`
	ImageList []struct {
		URLDefault string `json:"urlDefault"`
	} `json:"imageList"`
	Video htmlVideo `json:"video"`
}

// htmlVideo tolerates the "" left behind when an undefined video field
// is scrubbed out of the page state.
type htmlVideo struct {
	Media struct {
		Stream struct {
			H264 []struct {
				MasterURL string `json:"masterUrl"`
			} `json:"h264"`
		} `json:"stream"`
	} `json:"media"`
}

func (v *htmlVideo) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	type plain htmlVideo
	return json.Unmarshal(b, (*plain)(v))
}

// toNote maps the camelCase HTML shape onto the API note shape so one
// extractor serves both sources.
func (h *htmlNote) toNote() *note {
	n := &note{
		NoteID:    h.NoteID,
		Type:      h.Type,
		Title:     h.Title,
		XsecToken: h.XsecToken,
	}
	for _, img := range h.ImageList {
		n.ImageList = append(n.ImageList, image{URLDefault: img.URLDefault})
	}
	for _, s := range h.Video.Media.Stream.H264 {
		n.Video.Media.Stream.H264 = append(n.Video.Media.Stream.H264, stream{MasterURL: s.MasterURL})
	}
	return n
}

func parseUserState(html string) (*htmlUserState, error) {
	match := initialStateRe.FindStringSubmatch(html)
	if len(match) < 2 {
		return nil, errors.New("xhs: initial state not found in profile page")
	}
	raw := strings.ReplaceAll(match[1], ":undefined", ":null")
	var state htmlUserState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, errors.Wrap(err, "xhs: decode profile state")
	}
	return &state, nil
}

// parseNoteFromHTML pulls a note out of a detail page. A page without
// noteDetailMap means either a captcha wall or a deleted note; both
// report as not found.
func parseNoteFromHTML(noteID, html string) (*note, bool) {
	if !strings.Contains(html, "noteDetailMap") {
		return nil, false
	}
	match := initialStateRe.FindStringSubmatch(html)
	if len(match) < 2 {
		return nil, false
	}
	raw := strings.ReplaceAll(match[1], "undefined", `""`)
	var state htmlNoteState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false
	}
	entry, ok := state.Note.NoteDetailMap[noteID]
	if !ok || entry.Note.NoteID == "" {
		return nil, false
	}
	return entry.Note.toNote(), true
}
