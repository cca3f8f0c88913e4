package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "novawc.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Nil(t, cfg)

	def := config.Default()
	assert.Equal(t, "headless", def.Backend)
	assert.Equal(t, "floating", def.Layout)
	assert.Equal(t, int32(25), def.Input.RepeatRate)
	assert.Equal(t, -1, def.ReadyFD)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
socket = "wayland-5"
layout = "tiling"
log-level = "debug"

[input]
repeat-rate = 40
repeat-delay = 250

[cursor]
theme = "Adwaita"
size = 32

[[output]]
name = "TEST-1"
width = 1280
height = 720
refresh = 60000
scale = 2

[[output]]
name = "TEST-2"
width = 800
height = 600
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wayland-5", cfg.Socket)
	assert.Equal(t, "tiling", cfg.Layout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "headless", cfg.Backend, "unset keys keep their defaults")
	assert.Equal(t, int32(40), cfg.Input.RepeatRate)
	assert.Equal(t, int32(250), cfg.Input.RepeatDelay)
	assert.Equal(t, "Adwaita", cfg.Cursor.Theme)
	assert.Equal(t, 32, cfg.Cursor.Size)

	require.Len(t, cfg.Outputs, 2)
	assert.Equal(t, "TEST-1", cfg.Outputs[0].Name)
	assert.Equal(t, 1280, cfg.Outputs[0].Width)
	assert.Equal(t, int32(2), cfg.Outputs[0].Scale)
	assert.Equal(t, "TEST-2", cfg.Outputs[1].Name)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `layout = "floating"`)
	t.Setenv("NOVAWC_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"layout":      `layout = "spiral"`,
		"output size": "[[output]]\nwidth = 0\nheight = 100\n",
		"repeat":      "[input]\nrepeat-rate = -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
