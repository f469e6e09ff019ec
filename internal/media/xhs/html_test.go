package xhs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNoteFromHTML(t *testing.T) {
	html := `<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{"66fad51c000000001b0224b8":{"note":{"noteId":"66fad51c000000001b0224b8","type":"normal","title":"图文笔记","xsecToken":"tok","imageList":[{"urlDefault":"https://cdn/1.webp"},{"urlDefault":"https://cdn/2.webp"}],"video":undefined}}}}}</script>`

	n, ok := parseNoteFromHTML("66fad51c000000001b0224b8", html)
	require.True(t, ok)
	assert.Equal(t, "66fad51c000000001b0224b8", n.NoteID)
	assert.Equal(t, "normal", n.Type)
	assert.Equal(t, "图文笔记", n.Title)
	require.Len(t, n.ImageList, 2)
	assert.Equal(t, "https://cdn/1.webp", n.ImageList[0].URLDefault)

	content := extractContent(n)
	require.NotNil(t, content)
	assert.Equal(t, []string{"https://cdn/1.webp", "https://cdn/2.webp"}, content.ImageURLs)
	assert.Equal(t, "https://cdn/1.webp", content.CoverURL)
}

func TestParseNoteFromHTMLMissingMap(t *testing.T) {
	_, ok := parseNoteFromHTML("abc", "<html>验证码</html>")
	assert.False(t, ok)

	_, ok = parseNoteFromHTML("abc", `<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{}}}</script>`)
	assert.False(t, ok)
}

func TestParseUserStateInvalid(t *testing.T) {
	_, err := parseUserState("<html>no state here</html>")
	require.Error(t, err)
}
