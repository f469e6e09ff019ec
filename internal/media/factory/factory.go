// Package factory builds a ready-to-use platform client from a
// platform tag and the session material supplied by the caller.
package factory

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mediapick/mediapick/internal/cache"
	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/media/bilibili"
	"github.com/mediapick/mediapick/internal/media/douyin"
	"github.com/mediapick/mediapick/internal/media/kuaishou"
	"github.com/mediapick/mediapick/internal/media/xhs"
	"github.com/mediapick/mediapick/internal/signsrv"
)

type Config struct {
	Cookies      string
	UserAgent    string
	Timeout      time.Duration
	SignEndpoint string
	Cache        cache.Cache
}

// New constructs the client for platform and runs its session
// initialization before handing it out.
func New(ctx context.Context, platform media.Platform, cfg Config) (media.Client, error) {
	sign := signsrv.New(cfg.SignEndpoint)

	var client media.Client
	switch platform {
	case media.PlatformDouyin:
		client = douyin.New(douyin.Config{
			Cookies:   cfg.Cookies,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Sign:      sign,
		})
	case media.PlatformXhs:
		client = xhs.New(xhs.Config{
			Cookies:   cfg.Cookies,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Sign:      sign,
		})
	case media.PlatformBilibili:
		client = bilibili.New(bilibili.Config{
			Cookies:   cfg.Cookies,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			Sign:      sign,
			Cache:     cfg.Cache,
		})
	case media.PlatformKuaishou:
		ks, err := kuaishou.New(kuaishou.Config{
			Cookies:   cfg.Cookies,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		client = ks
	default:
		return nil, &media.InvalidInputError{Msg: "unsupported platform: " + string(platform)}
	}

	if err := client.InitializeSession(ctx); err != nil {
		return nil, errors.Wrapf(err, "initialize %s session", platform)
	}
	return client, nil
}
