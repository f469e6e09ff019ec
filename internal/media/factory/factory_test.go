package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapick/mediapick/internal/media"
)

func TestNewBuildsEachPlatform(t *testing.T) {
	cfg := Config{
		Cookies:      "session=abc",
		SignEndpoint: "http://127.0.0.1:8989",
	}

	for _, platform := range []media.Platform{
		media.PlatformXhs,
		media.PlatformBilibili,
		media.PlatformKuaishou,
	} {
		client, err := New(context.Background(), platform, cfg)
		require.NoError(t, err, string(platform))
		assert.NotNil(t, client)
	}
}

func TestNewRejectsUnknownPlatform(t *testing.T) {
	_, err := New(context.Background(), media.Platform("tiktok"), Config{})
	var inputErr *media.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
}
