package media

import (
	"net/url"
	"regexp"
	"strings"
)

// URL resolvers: strip query/fragment noise, then try an ordered list
// of platform patterns until one matches. Order matters — Douyin
// exposes the content id both as a query parameter (checked first) and
// as a path segment.

var (
	douyinVideoRe   = regexp.MustCompile(`/video/([^/]+)`)
	douyinNoteRe    = regexp.MustCompile(`/note/([^/]+)`)
	douyinUserRe    = regexp.MustCompile(`/user/([^/]+)`)
	xhsExploreRe    = regexp.MustCompile(`/explore/(\w+)`)
	xhsItemRe       = regexp.MustCompile(`/discovery/item/(\w+)`)
	xhsProfileRe    = regexp.MustCompile(`/user/profile/([^/]+)`)
	biliBvRe        = regexp.MustCompile(`/video/(BV\w+)`)
	biliAvRe        = regexp.MustCompile(`/video/av(\d+)`)
	biliSpaceRe     = regexp.MustCompile(`space\.bilibili\.com/(\d+)`)
	ksShortVideoRe  = regexp.MustCompile(`/short-video/([^/]+)`)
	ksProfileRe     = regexp.MustCompile(`/profile/([^/]+)`)
)

// ResolveContentID extracts the canonical content id from a platform
// content URL. It returns (valid, message, id).
func ResolveContentID(platform Platform, rawURL string) (bool, string, string) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false, "无效的URL", ""
	}
	cleaned := strings.TrimSuffix(parsed.Host+parsed.Path, "/")
	query := parsed.Query()

	var patterns []*regexp.Regexp
	switch platform {
	case PlatformDouyin:
		if id := query.Get("aweme_id"); id != "" {
			return true, "", id
		}
		if id := query.Get("modal_id"); id != "" {
			return true, "", id
		}
		patterns = []*regexp.Regexp{douyinVideoRe, douyinNoteRe}
	case PlatformXhs:
		patterns = []*regexp.Regexp{xhsExploreRe, xhsItemRe}
	case PlatformBilibili:
		patterns = []*regexp.Regexp{biliBvRe, biliAvRe}
	case PlatformKuaishou:
		patterns = []*regexp.Regexp{ksShortVideoRe}
	default:
		return false, "无效的自媒体平台", ""
	}

	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(cleaned); len(match) > 1 {
			return true, "", match[1]
		}
	}
	return false, "无效的URL", ""
}

// ResolveCreatorID extracts the canonical creator id from a platform
// profile URL.
func ResolveCreatorID(platform Platform, rawURL string) (bool, string, string) {
	cleaned := strings.TrimSpace(rawURL)
	if i := strings.IndexByte(cleaned, '?'); i >= 0 {
		cleaned = cleaned[:i]
	}
	cleaned = strings.TrimSuffix(cleaned, "/")

	var pattern *regexp.Regexp
	switch platform {
	case PlatformDouyin:
		pattern = douyinUserRe
	case PlatformXhs:
		pattern = xhsProfileRe
	case PlatformBilibili:
		pattern = biliSpaceRe
	case PlatformKuaishou:
		pattern = ksProfileRe
	default:
		return false, "无效的自媒体平台", ""
	}

	if match := pattern.FindStringSubmatch(cleaned); len(match) > 1 {
		return true, "", match[1]
	}
	return false, "无效的创作者URL", ""
}

// ContentURL rebuilds the canonical URL for a resolved content id; the
// inverse of ResolveContentID for round-trip checks.
func ContentURL(platform Platform, contentType ContentType, id string) string {
	switch platform {
	case PlatformDouyin:
		return "https://www.douyin.com/" + string(contentType) + "/" + id
	case PlatformXhs:
		return "https://www.xiaohongshu.com/explore/" + id
	case PlatformBilibili:
		return "https://www.bilibili.com/video/" + id
	case PlatformKuaishou:
		return "https://www.kuaishou.com/short-video/" + id
	default:
		return ""
	}
}
