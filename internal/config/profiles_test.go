package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "page"}, profiles.Names())

	def, err := profiles.Get("")
	require.NoError(t, err)
	assert.Equal(t, "editor", def.Name)
	assert.Equal(t, int64(MaxEditorImageBytes), def.MaxBytes)

	page, err := profiles.Get("page")
	require.NoError(t, err)
	assert.Equal(t, int64(MaxPageImageBytes), page.MaxBytes)
	assert.True(t, page.Allows("image/svg+xml"))

	_, err = profiles.Get("avatar")
	assert.EqualError(t, err, "unknown upload profile: avatar")
}

func TestUploadProfile_Allows(t *testing.T) {
	p := &UploadProfile{AllowedTypes: []string{"image/png"}}
	assert.True(t, p.Allows("image/png"))
	assert.True(t, p.Allows(" IMAGE/PNG; charset=binary"))
	assert.False(t, p.Allows("image/gif"))

	open := &UploadProfile{}
	assert.True(t, open.Allows("image/gif"))
	assert.False(t, open.Allows("text/plain"))
}

func TestParseProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "default: editor\n", "no upload profiles defined"},
		{"zero size", "default: a\nprofiles:\n  a:\n    max_bytes: 0\n", "upload profile a: max_bytes must be positive"},
		{"unknown default", "default: b\nprofiles:\n  a:\n    max_bytes: 1\n", `default upload profile "b" is not defined`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfiles([]byte(tt.yaml))
			assert.EqualError(t, err, tt.want)
		})
	}
}
