package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Logging     LoggingConfig     `toml:"logging"`
	Storage     StorageConfig     `toml:"storage"`
	Browser     BrowserConfig     `toml:"browser"`
	Marketplace MarketplaceConfig `toml:"marketplace"`
	Trello      TrelloConfig      `toml:"trello"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup
}

// BrowserConfig controls the Chrome instance driving the marketplace pages.
// The user data directory keeps the marketplace session between runs.
type BrowserConfig struct {
	Headless          bool   `toml:"headless"`
	UserDataDir       string `toml:"user_data_dir"`
	ChromePath        string `toml:"chrome_path"` // Empty = let chromedp locate Chrome
	UserAgent         string `toml:"user_agent"`
	NavigationTimeout string `toml:"navigation_timeout"` // e.g. "60s"
	WindowWidth       int    `toml:"window_width"`
	WindowHeight      int    `toml:"window_height"`
}

// MarketplaceConfig describes the seller order pages and the retry budgets used on them
type MarketplaceConfig struct {
	BaseURL     string            `toml:"base_url"`
	LoginPath   string            `toml:"login_path"`
	ListingPath string            `toml:"listing_path"`
	DetailPath  string            `toml:"detail_path"`
	StageStatus map[string]string `toml:"stage_status"` // stage -> listing "status" query value

	ListingWait    string `toml:"listing_wait"`    // Max wait for the listing table
	RenderDelay    string `toml:"render_delay"`    // Settle time after navigation
	PollAttempts   int    `toml:"poll_attempts"`   // Stage-label confirmation polls
	PollInterval   string `toml:"poll_interval"`   // Delay between confirmation polls
	RetryAttempts  int    `toml:"retry_attempts"`  // Attempts on page context loss
	RetryDelay     string `toml:"retry_delay"`     // Delay before re-navigating
	ConfirmDelay   string `toml:"confirm_delay"`   // Delay before looking for a confirmation control
	LedgerPath     string `toml:"ledger_path"`     // JSON file of order ids advanced from NewOrder
	AdvanceEnabled bool   `toml:"advance_enabled"` // Drive NewOrder/Preparing transitions during a full pass
}

// TrelloConfig holds the board credentials. All four identifiers are required
// for any synchronization call.
type TrelloConfig struct {
	APIKey            string `toml:"api_key" validate:"required"`
	APIToken          string `toml:"api_token" validate:"required"`
	BoardID           string `toml:"board_id" validate:"required"`
	ListID            string `toml:"list_id" validate:"required"`
	BaseURL           string `toml:"base_url"`
	RequestsPerSecond int    `toml:"requests_per_second"`
	Timeout           string `toml:"timeout"`
	WriteDelay        string `toml:"write_delay"` // Pause between bulk card writes
}

type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Schedule     string `toml:"schedule"`      // Cron expression or "@every 2m"
	InitialDelay string `toml:"initial_delay"` // Delay before the first scheduled pass
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3000,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/runs",
			},
		},
		Browser: BrowserConfig{
			Headless:          true,
			UserDataDir:       "./.browser-data",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			NavigationTimeout: "60s",
			WindowWidth:       1920,
			WindowHeight:      1080,
		},
		Marketplace: MarketplaceConfig{
			BaseURL:     "https://www.g2g.com",
			LoginPath:   "/login",
			ListingPath: "/order/sellOrder",
			DetailPath:  "/order/sellOrder/order",
			StageStatus: map[string]string{
				"new_order":  "6",
				"preparing":  "5",
				"delivering": "1",
				"delivered":  "2",
				"completed":  "3",
				"cancelled":  "4",
			},
			ListingWait:    "10s",
			RenderDelay:    "2s",
			PollAttempts:   10,
			PollInterval:   "1s",
			RetryAttempts:  3,
			RetryDelay:     "2s",
			ConfirmDelay:   "1500ms",
			LedgerPath:     "./data/processed_orders.json",
			AdvanceEnabled: true,
		},
		Trello: TrelloConfig{
			BaseURL:           "https://api.trello.com/1",
			RequestsPerSecond: 8, // Trello allows 100 requests per 10s per token
			Timeout:           "30s",
			WriteDelay:        "500ms",
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			Schedule:     "@every 2m",
			InitialDelay: "30s",
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env.
// CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Later files override earlier ones
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := ValidateSchedule(config.Scheduler.Schedule); err != nil {
		return nil, fmt.Errorf("invalid scheduler.schedule: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies ORDERSYNC_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ORDERSYNC_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("ORDERSYNC_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ORDERSYNC_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging
	if level := os.Getenv("ORDERSYNC_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ORDERSYNC_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage
	if badgerPath := os.Getenv("ORDERSYNC_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Browser
	if headless := os.Getenv("ORDERSYNC_BROWSER_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if dir := os.Getenv("ORDERSYNC_BROWSER_USER_DATA_DIR"); dir != "" {
		config.Browser.UserDataDir = dir
	}
	if chromePath := os.Getenv("ORDERSYNC_BROWSER_CHROME_PATH"); chromePath != "" {
		config.Browser.ChromePath = chromePath
	}

	// Marketplace
	if baseURL := os.Getenv("ORDERSYNC_MARKETPLACE_BASE_URL"); baseURL != "" {
		config.Marketplace.BaseURL = baseURL
	}
	if ledgerPath := os.Getenv("ORDERSYNC_LEDGER_PATH"); ledgerPath != "" {
		config.Marketplace.LedgerPath = ledgerPath
	}
	if advance := os.Getenv("ORDERSYNC_MARKETPLACE_ADVANCE_ENABLED"); advance != "" {
		if a, err := strconv.ParseBool(advance); err == nil {
			config.Marketplace.AdvanceEnabled = a
		}
	}

	// Trello
	if apiKey := os.Getenv("ORDERSYNC_TRELLO_API_KEY"); apiKey != "" {
		config.Trello.APIKey = apiKey
	}
	if apiToken := os.Getenv("ORDERSYNC_TRELLO_API_TOKEN"); apiToken != "" {
		config.Trello.APIToken = apiToken
	}
	if boardID := os.Getenv("ORDERSYNC_TRELLO_BOARD_ID"); boardID != "" {
		config.Trello.BoardID = boardID
	}
	if listID := os.Getenv("ORDERSYNC_TRELLO_LIST_ID"); listID != "" {
		config.Trello.ListID = listID
	}

	// Scheduler
	if enabled := os.Getenv("ORDERSYNC_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("ORDERSYNC_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

var configValidator = validator.New()

// Validate reports which required Trello identifiers are missing
func (c TrelloConfig) Validate() error {
	return configValidator.Struct(c)
}

// IsConfigured returns true when key, token, board and list are all present
func (c TrelloConfig) IsConfigured() bool {
	return c.Validate() == nil
}

// ValidateSchedule validates a cron schedule expression (5 fields or a descriptor such as "@every 2m")
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// ListingURL returns the listing page for stage, or "" when the stage has no status filter configured
func (c MarketplaceConfig) ListingURL(stage string) string {
	status, ok := c.StageStatus[stage]
	if !ok || status == "" {
		return ""
	}
	return fmt.Sprintf("%s%s?status=%s", strings.TrimRight(c.BaseURL, "/"), c.ListingPath, status)
}

// DetailURL returns the canonical detail page of orderID
func (c MarketplaceConfig) DetailURL(orderID string) string {
	return fmt.Sprintf("%s%s?oid=%s", strings.TrimRight(c.BaseURL, "/"), c.DetailPath, orderID)
}

// LoginURL returns the marketplace sign-in page
func (c MarketplaceConfig) LoginURL() string {
	return strings.TrimRight(c.BaseURL, "/") + c.LoginPath
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ParseDuration parses s, falling back to def when s is empty or invalid
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
