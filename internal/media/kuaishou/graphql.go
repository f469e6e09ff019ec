package kuaishou

import (
	"embed"
	"strings"

	"github.com/pkg/errors"
)

//go:embed graphql/*.graphql
var graphqlFS embed.FS

// The queries every client instance needs. Loading is eager so a
// missing or empty file fails construction instead of the first call.
const (
	queryVisionProfile          = "vision_profile"
	queryVisionProfilePhotoList = "vision_profile_photo_list"
	queryVideoDetail            = "video_detail"
	queryVisionProfileUserList  = "vision_profile_user_list"
)

var requiredQueries = []string{
	queryVisionProfile,
	queryVisionProfilePhotoList,
	queryVideoDetail,
	queryVisionProfileUserList,
}

type queryStore map[string]string

func loadQueries() (queryStore, error) {
	store := make(queryStore, len(requiredQueries))
	for _, name := range requiredQueries {
		raw, err := graphqlFS.ReadFile("graphql/" + name + ".graphql")
		if err != nil {
			return nil, errors.Wrapf(err, "kuaishou: load query %s", name)
		}
		query := strings.TrimSpace(string(raw))
		if query == "" {
			return nil, errors.Errorf("kuaishou: query %s is empty", name)
		}
		store[name] = query
	}
	return store, nil
}

func (s queryStore) get(name string) string { return s[name] }
