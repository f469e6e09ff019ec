package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediapick/mediapick/internal/cache"
	"github.com/mediapick/mediapick/internal/config"
	"github.com/mediapick/mediapick/internal/media"
	"github.com/mediapick/mediapick/internal/media/factory"
)

func main() {
	var (
		platformFlag = flag.String("platform", "", "platform tag: dy, xhs, bili or ks")
		action       = flag.String("action", "", "alive, profile, contents or detail")
		rawURL       = flag.String("url", "", "content or creator page URL")
		cookies      = flag.String("cookies", "", "login cookies for the platform")
		cursor       = flag.String("cursor", "", "pagination cursor for contents")
		userAgent    = flag.String("user-agent", "", "override the browser user agent")
	)
	flag.Parse()

	config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevel,
	})))

	platform := media.Platform(*platformFlag)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tuning, err := config.LoadPlatforms("platforms.yaml")
	if err != nil {
		log.Fatal(err)
	}

	var store cache.Cache
	if config.RedisAddr != "" {
		store, err = cache.NewRedis(config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		store = cache.NewMemory()
	}

	client, err := factory.New(ctx, platform, factory.Config{
		Cookies:      *cookies,
		UserAgent:    pickUserAgent(*userAgent, platform, tuning),
		Timeout:      pickTimeout(platform, tuning),
		SignEndpoint: config.SignSrvEndpoint(),
		Cache:        store,
	})
	if err != nil {
		log.Fatal(err)
	}

	result, err := run(ctx, client, platform, *action, *rawURL, *cursor)
	if err != nil {
		log.Fatal(err)
	}
	emit(result)
}

func run(ctx context.Context, client media.Client, platform media.Platform, action, rawURL, cursor string) (any, error) {
	switch action {
	case "alive":
		return map[string]bool{"alive": client.CheckAlive(ctx)}, nil
	case "profile":
		ok, msg, creatorID := media.ResolveCreatorID(platform, rawURL)
		if !ok {
			return nil, &media.InvalidInputError{Msg: msg}
		}
		return client.CreatorProfile(ctx, creatorID)
	case "contents":
		ok, msg, creatorID := media.ResolveCreatorID(platform, rawURL)
		if !ok {
			return nil, &media.InvalidInputError{Msg: msg}
		}
		return client.CreatorContents(ctx, creatorID, cursor)
	case "detail":
		ok, msg, contentID := media.ResolveContentID(platform, rawURL)
		if !ok {
			return nil, &media.InvalidInputError{Msg: msg}
		}
		return client.ContentDetail(ctx, contentID, rawURL)
	default:
		return nil, &media.InvalidInputError{Msg: "unknown action: " + action}
	}
}

func pickUserAgent(override string, platform media.Platform, tuning *config.Platforms) string {
	if override != "" {
		return override
	}
	switch platform {
	case media.PlatformDouyin:
		return tuning.Douyin.UserAgent
	case media.PlatformXhs:
		return tuning.Xhs.UserAgent
	case media.PlatformBilibili:
		return tuning.Bilibili.UserAgent
	case media.PlatformKuaishou:
		return tuning.Kuaishou.UserAgent
	default:
		return ""
	}
}

func pickTimeout(platform media.Platform, tuning *config.Platforms) time.Duration {
	var seconds int
	switch platform {
	case media.PlatformDouyin:
		seconds = tuning.Douyin.TimeoutSeconds
	case media.PlatformXhs:
		seconds = tuning.Xhs.TimeoutSeconds
	case media.PlatformBilibili:
		seconds = tuning.Bilibili.TimeoutSeconds
	case media.PlatformKuaishou:
		seconds = tuning.Kuaishou.TimeoutSeconds
	}
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return config.RequestTimeout
}

func emit(result any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
