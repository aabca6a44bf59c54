package boardconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kb9qrp/ironkeyer/element"
)

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidProfile(t *testing.T) {
	path := writeProfile(t, `
mode: superkeyer
unit_ms: 60
debounce_ms: 10
queue_capacity: 16
char_space_enabled: true
tone_hz: 700
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, element.SuperKeyer, cfg.Mode())
	assert.Equal(t, uint16(60), cfg.UnitMS())
	assert.True(t, cfg.CharSpaceEnabled())
}

func TestLoad_UnknownMode(t *testing.T) {
	path := writeProfile(t, `
mode: turbo
unit_ms: 60
debounce_ms: 10
queue_capacity: 16
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidRangeRejectedByElementConfig(t *testing.T) {
	path := writeProfile(t, `
mode: mode_a
unit_ms: 1000
debounce_ms: 10
queue_capacity: 16
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, element.ErrInvalidConfiguration)
}

func TestToneHz_DefaultsWhenUnset(t *testing.T) {
	path := writeProfile(t, `
mode: mode_a
unit_ms: 60
debounce_ms: 10
queue_capacity: 16
`)

	hz, err := ToneHz(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(600), hz)
}
