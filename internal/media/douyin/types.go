package douyin

type selfInfo struct {
	UserUID   string `json:"user_uid"`
	ID        string `json:"id"`
	UserAgent string `json:"user_agent"`
}

type userProfileResponse struct {
	StatusCode int   `json:"status_code"`
	User       *user `json:"user"`
}

type user struct {
	SecUID         string  `json:"sec_uid"`
	UID            string  `json:"uid"`
	Nickname       string  `json:"nickname"`
	Signature      string  `json:"signature"`
	Avatar         urlList `json:"avatar_larger"`
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
	AwemeCount     int64   `json:"aweme_count"`
}

type postListResponse struct {
	StatusCode int     `json:"status_code"`
	AwemeList  []aweme `json:"aweme_list"`
	HasMore    int     `json:"has_more"`
	MaxCursor  int64   `json:"max_cursor"`
}

type detailResponse struct {
	StatusCode  int    `json:"status_code"`
	AwemeDetail *aweme `json:"aweme_detail"`
}

// awemeTypeNote marks image-post content; zero means video.
const awemeTypeNote = 68

type aweme struct {
	AwemeID   string  `json:"aweme_id"`
	Desc      string  `json:"desc"`
	Caption   string  `json:"caption"`
	AwemeType int     `json:"aweme_type"`
	ShareURL  string  `json:"share_url"`
	Video     video   `json:"video"`
	Images    []image `json:"images"`
}

type video struct {
	PlayAddrH264 *playAddr `json:"play_addr_h264"`
	PlayAddr256  *playAddr `json:"play_addr_256"`
	PlayAddr     *playAddr `json:"play_addr"`
	RawCover     *urlList  `json:"raw_cover"`
	OriginCover  *urlList  `json:"origin_cover"`
}

type playAddr struct {
	URLList []string `json:"url_list"`
}

type urlList struct {
	URLList []string `json:"url_list"`
}

type image struct {
	URLList []string `json:"url_list"`
}
