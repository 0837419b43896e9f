package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFiles_Priority(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 4000

[trello]
api_key = "file-key"
board_id = "board-1"
`), 0644))
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 5000

[scheduler]
schedule = "*/5 * * * *"
`), 0644))

	t.Setenv("ORDERSYNC_TRELLO_API_KEY", "env-key")

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Trello.APIKey)
	assert.Equal(t, "board-1", cfg.Trello.BoardID)
	assert.Equal(t, "*/5 * * * *", cfg.Scheduler.Schedule)
	// Untouched defaults survive
	assert.Equal(t, "https://api.trello.com/1", cfg.Trello.BaseURL)

	ApplyFlagOverrides(cfg, 6000, "0.0.0.0")
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadFromFiles_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\nschedule = \"every now and then\"\n"), 0644))

	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestTrelloConfig_IsConfigured(t *testing.T) {
	complete := TrelloConfig{APIKey: "k", APIToken: "t", BoardID: "b", ListID: "l"}
	assert.True(t, complete.IsConfigured())

	for _, missing := range []func(c *TrelloConfig){
		func(c *TrelloConfig) { c.APIKey = "" },
		func(c *TrelloConfig) { c.APIToken = "" },
		func(c *TrelloConfig) { c.BoardID = "" },
		func(c *TrelloConfig) { c.ListID = "" },
	} {
		c := complete
		missing(&c)
		assert.False(t, c.IsConfigured())
		assert.Error(t, c.Validate())
	}
}

func TestMarketplaceConfig_URLs(t *testing.T) {
	cfg := NewDefaultConfig().Marketplace

	assert.Equal(t, "https://www.g2g.com/order/sellOrder?status=5", cfg.ListingURL("preparing"))
	assert.Equal(t, "https://www.g2g.com/order/sellOrder?status=1", cfg.ListingURL("delivering"))
	assert.Equal(t, "", cfg.ListingURL("unknown"))
	assert.Equal(t, "https://www.g2g.com/order/sellOrder/order?oid=42", cfg.DetailURL("42"))
	assert.Equal(t, "https://www.g2g.com/login", cfg.LoginURL())
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDuration("2s", time.Minute))
	assert.Equal(t, time.Duration(0), ParseDuration("0s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
