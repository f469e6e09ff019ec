package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/mediapick/mediapick/internal/media"
)

// verifyParams is the token triple every Douyin request carries.
type verifyParams struct {
	msToken  string
	webID    string
	verifyFp string
}

type bootstrapEndpoints struct {
	msTokenURL string
	webIDURL   string
}

var defaultBootstrapEndpoints = bootstrapEndpoints{
	msTokenURL: "https://mssdk.bytedance.com/web/report",
	webIDURL:   "https://mcs.zijieapi.com/webid",
}

const msTokenMagic = 538969122

// fetchVerifyParams asks the bootstrap endpoints for real tokens and
// falls back to locally synthesized ones when they refuse. Either way
// the triple comes back usable.
func fetchVerifyParams(ctx context.Context, caller *media.Caller, userAgent string, eps bootstrapEndpoints) (*verifyParams, error) {
	msToken, err := fetchMsToken(ctx, caller, userAgent, eps.msTokenURL)
	if err != nil || msToken == "" {
		msToken = fakeMsToken()
	}
	webID, err := fetchWebID(ctx, caller, userAgent, eps.webIDURL)
	if err != nil || webID == "" {
		webID = fakeWebID()
	}
	return &verifyParams{
		msToken:  msToken,
		webID:    webID,
		verifyFp: genVerifyFp(),
	}, nil
}

func fetchMsToken(ctx context.Context, caller *media.Caller, userAgent, endpoint string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"magic":         msTokenMagic,
		"version":       1,
		"dataType":      8,
		"strData":       randString(1344),
		"tspFromClient": time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	resp, err := caller.Call(ctx, endpoint, media.RequestParams{
		Method: fasthttp.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"User-Agent":   userAgent,
		},
		Body:    payload,
		Timeout: media.DefaultTimeout,
	})
	if err != nil {
		return "", err
	}
	token := resp.Cookies["msToken"]
	// Real tokens come back at 120 or 128 characters. Anything else is
	// a throttled answer and not worth keeping.
	if len(token) != 120 && len(token) != 128 {
		return "", fmt.Errorf("douyin: unexpected msToken length %d", len(token))
	}
	return token, nil
}

func fakeMsToken() string {
	return randString(126) + "=="
}

func fetchWebID(ctx context.Context, caller *media.Caller, userAgent, endpoint string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"app_id":         6383,
		"url":            "https://www.douyin.com/",
		"user_agent":     userAgent,
		"referer":        "https://www.douyin.com/",
		"user_unique_id": "",
	})
	if err != nil {
		return "", err
	}
	resp, err := caller.Call(ctx, endpoint, media.RequestParams{
		Method: fasthttp.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=UTF-8",
			"User-Agent":   userAgent,
		},
		Body:    payload,
		Timeout: media.DefaultTimeout,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		WebID string `json:"web_id"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", err
	}
	return out.WebID, nil
}

func fakeWebID() string {
	digits := make([]byte, 19)
	digits[0] = byte('1' + rand.IntN(9))
	for i := 1; i < len(digits); i++ {
		digits[i] = byte('0' + rand.IntN(10))
	}
	return string(digits)
}

// genVerifyFp reproduces the browser fingerprint format:
// "verify_" + base36 millis + "_" + 36 chars where positions 8, 13, 18
// and 23 are underscores, position 14 is '4' and position 19 encodes
// the UUID variant bits.
func genVerifyFp() string {
	const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	millis := strconv.FormatInt(time.Now().UnixMilli(), 36)

	o := make([]byte, 36)
	for i := range o {
		o[i] = charset[rand.IntN(len(charset))]
	}
	o[8], o[13], o[18], o[23] = '_', '_', '_', '_'
	o[14] = '4'
	n := rand.IntN(len(charset))
	o[19] = charset[3&n|8]

	return "verify_" + strings.ToLower(millis) + "_" + string(o)
}

func randString(n int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}
