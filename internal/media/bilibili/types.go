package bilibili

import "encoding/json"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// codeNotFound marks hidden or deleted resources; it maps to an empty
// result instead of an error.
const codeNotFound = -404

type navData struct {
	IsLogin bool `json:"isLogin"`
}

type upInfo struct {
	Mid  json.Number `json:"mid"`
	Name string      `json:"name"`
	Face string      `json:"face"`
	Sign string      `json:"sign"`
}

type relationStat struct {
	Follower  int64 `json:"follower"`
	Following int64 `json:"following"`
}

type spaceNavnum struct {
	Video int64 `json:"video"`
}

// UpStat carries the aggregate view and like counters from the
// unsigned upstat endpoint.
type UpStat struct {
	Archive struct {
		View int64 `json:"view"`
	} `json:"archive"`
	Likes int64 `json:"likes"`
}

type arcSearchData struct {
	List struct {
		VList []arcVideo `json:"vlist"`
	} `json:"list"`
	Page struct {
		Pn    int `json:"pn"`
		Ps    int `json:"ps"`
		Count int `json:"count"`
	} `json:"page"`
}

type arcVideo struct {
	Bvid  string `json:"bvid"`
	Title string `json:"title"`
	Pic   string `json:"pic"`
}

type videoView struct {
	Bvid     string     `json:"bvid"`
	Aid      int64      `json:"aid"`
	Cid      int64      `json:"cid"`
	Title    string     `json:"title"`
	Pic      string     `json:"pic"`
	Duration int64      `json:"duration"`
	Owner    videoOwner `json:"owner"`
}

type videoOwner struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
	Face string `json:"face"`
}

type playData struct {
	Dash *dashInfo     `json:"dash"`
	Durl []durlSegment `json:"durl"`
}

type dashInfo struct {
	Duration int64        `json:"duration"`
	Video    []dashStream `json:"video"`
	Audio    []dashStream `json:"audio"`
}

// dashStream tolerates both key spellings the API has shipped.
type dashStream struct {
	ID           int    `json:"id"`
	BaseURL      string `json:"baseUrl"`
	BaseURLSnake string `json:"base_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Bandwidth    int64  `json:"bandwidth"`
	Codecs       string `json:"codecs"`
}

func (s *dashStream) url() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return s.BaseURLSnake
}

type durlSegment struct {
	Order  int    `json:"order"`
	URL    string `json:"url"`
	Length int64  `json:"length"`
	Size   int64  `json:"size"`
}
