package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/reveal"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagecraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, reveal.DefaultURL, cfg.Browser.URL)
	assert.Equal(t, 1600, cfg.Browser.Width)
	assert.Equal(t, 900, cfg.Browser.Height)
	assert.Equal(t, 0.7, cfg.Browser.Zoom)
	assert.Equal(t, 200*time.Millisecond, cfg.Capture.FragmentThreshold)
	assert.Equal(t, 50*time.Millisecond, cfg.Capture.PreWait)
	assert.Equal(t, time.Second, cfg.Capture.SettleDelay)
	assert.Zero(t, cfg.Capture.ReadyTimeout)
	assert.Zero(t, cfg.Capture.QueryRetries)
	assert.False(t, cfg.Capture.IncludeFinal)
	assert.Equal(t, "stagecraft.json", cfg.Store.Path)
	assert.Equal(t, "disabled", cfg.Notes.EscapeMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
browser:
  url: http://localhost:9000/deck.html
  headful: true
  block_resources: [font, media]
capture:
  out_dir: shots
  settle_delay: 1500ms
  ready_timeout: 20s
  query_retries: 2
  include_final: true
store:
  path: runs.db
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/deck.html", cfg.Browser.URL)
	assert.True(t, cfg.Browser.Headful)
	assert.Equal(t, []string{"font", "media"}, cfg.Browser.BlockResources)
	assert.Equal(t, 1500*time.Millisecond, cfg.Capture.SettleDelay)
	assert.Equal(t, 20*time.Second, cfg.Capture.ReadyTimeout)
	assert.Equal(t, 2, cfg.Capture.QueryRetries)
	assert.True(t, cfg.Capture.IncludeFinal)
	assert.Equal(t, "runs.db", cfg.Store.Path)
	// untouched keys keep their defaults
	assert.Equal(t, 1600, cfg.Browser.Width)
	assert.Equal(t, capture.DefaultNamePattern, cfg.Capture.NamePattern)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "browser: [", "parse"},
		{"bad escape mode", "notes:\n  escape_mode: loud\n", "escape_mode"},
		{"bad delimiter", "notes:\n  strong_delimiter: '##'\n", "strong_delimiter"},
		{"bad pattern", "capture:\n  name_pattern: shot.png\n", "name_pattern"},
		{"bad run id", "store:\n  run_id: yesterday\n", "store.run_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Viper(t *testing.T) {
	path := writeFile(t, `
capture:
  pre_wait: 80ms
serve:
  addr: 127.0.0.1:9999
`)
	t.Setenv("STAGECRAFT_CAPTURE_SETTLE_DELAY", "2s")
	t.Setenv("STAGECRAFT_BROWSER_STEALTH", "true")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STAGECRAFT")
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 80*time.Millisecond, cfg.Capture.PreWait)
	assert.Equal(t, 2*time.Second, cfg.Capture.SettleDelay)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, "127.0.0.1:9999", cfg.Serve.Addr)
	assert.Equal(t, reveal.DefaultURL, cfg.Browser.URL)
}

func TestLoad_ExplicitSetWins(t *testing.T) {
	v := viper.New()
	v.SetEnvPrefix("STAGECRAFT")
	v.Set("store.path", "other.yaml")
	v.Set("capture.include_final", true)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", cfg.Store.Path)
	assert.True(t, cfg.Capture.IncludeFinal)
}

func TestComponentConfigs(t *testing.T) {
	cfg := Default()
	cfg.Capture.OutDir = "shots"
	cfg.Store.RunID = "run_x"
	cfg.Output.BaseDir = "/tmp/deck"

	rc := cfg.RevealConfig(nil)
	assert.Equal(t, cfg.Browser.URL, rc.URL)
	assert.Equal(t, cfg.Browser.LinkSelector, rc.LinkSelector)

	upper := strings.ToUpper
	cc := cfg.CaptureConfig(upper, nil)
	assert.Equal(t, "shots", cc.Dir)
	assert.Equal(t, "HI", cc.Transform("hi"))
	assert.Equal(t, cfg.Capture.FragmentThreshold, cc.FragmentThreshold)

	tc := cfg.ToolsConfig(nil)
	assert.Equal(t, "stagecraft.json", tc.Record)
	assert.Equal(t, "run_x", tc.RunID)
	assert.Equal(t, 1600.0, tc.Output.Width)
	assert.Equal(t, "/tmp/deck", tc.Output.BaseDir)

	assert.Equal(t, "run_x", cfg.StoreOptions(nil).RunID)
	assert.Equal(t, "disabled", cfg.NotesConfig(nil).EscapeMode)
	assert.Equal(t, cfg.Serve.Addr, cfg.PreviewConfig(nil).Addr)
}
