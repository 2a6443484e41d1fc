package bindings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CM-Return", "control-mod1-Return"},
		{"MC-Return", "control-mod1-Return"},
		{"M-H", "mod1-shift-h"},
		{"MS-Tab", "mod1-shift-Tab"},
		{"4-x", "mod4-x"},
		{"CMS-q", "control-mod1-shift-q"},
		{"Return", "Return"},
		{"M-question", "mod1-question"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	for _, in := range []string{"", "C-", "X-a", "Cm-a"} {
		_, err := ParseKey(in)
		assert.Error(t, err, in)
	}
}

func TestParseButton(t *testing.T) {
	got, err := ParseButton("M-1")
	require.NoError(t, err)
	assert.Equal(t, "mod1-1", got)

	got, err = ParseButton("CMS-3")
	require.NoError(t, err)
	assert.Equal(t, "control-mod1-shift-3", got)

	got, err = ParseButton("2")
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	for _, in := range []string{"M-6", "M-x", "M-12"} {
		_, err := ParseButton(in)
		assert.Error(t, err, in)
	}
}

func TestIsRootAction(t *testing.T) {
	assert.True(t, IsRootAction("menu_cmd"))
	assert.False(t, IsRootAction("window_move"))
}
