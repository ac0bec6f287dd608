package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"owcs-analyzer/internal/stats"
)

// EnvPaths are tried in order; the first .env found is loaded
var EnvPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads the first .env file found and returns its path, or "" when
// none exists. Variables already set in the environment win.
func LoadEnv(paths ...string) string {
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Config holds the analyzer settings
type Config struct {
	Input       string `validate:"required"`
	OutputDir   string `validate:"required"`
	ChartFormat string `validate:"oneof=png svg"`
	SkipCharts  bool
	SkipJSON    bool

	SQLitePath string

	TursoURL   string
	TursoToken string
	SkipTurso  bool

	PostgresURL  string
	SkipPostgres bool

	DiscordWebhookURL string `validate:"omitempty,url"`
	SkipDiscord       bool

	MinHeroMaps int `validate:"gte=0"`
	BanLimit    int `validate:"gte=0"`
	SwitchLimit int `validate:"gte=0"`
	PlayerLimit int `validate:"gte=0"`

	Verbose bool
}

// TursoEnabled reports whether results should be pushed to Turso
func (c *Config) TursoEnabled() bool {
	return !c.SkipTurso && c.TursoURL != ""
}

// PostgresEnabled reports whether results should be pushed to Postgres
func (c *Config) PostgresEnabled() bool {
	return !c.SkipPostgres && c.PostgresURL != ""
}

// DiscordEnabled reports whether a run summary should be posted
func (c *Config) DiscordEnabled() bool {
	return !c.SkipDiscord && c.DiscordWebhookURL != ""
}

// ParseAnalyzer builds the analyzer config from the environment and the given
// command line arguments. Flags override environment values.
func ParseAnalyzer(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)

	fs.StringVar(&cfg.Input, "input", getEnv("OWCS_INPUT", "owcs25_emea_stage2.csv"), "Match export CSV (.csv or .csv.gz)")
	fs.StringVar(&cfg.OutputDir, "output-dir", getEnv("OWCS_OUTPUT_DIR", "./report"), "Directory for charts and data.json")
	fs.StringVar(&cfg.ChartFormat, "format", getEnv("OWCS_CHART_FORMAT", "png"), "Chart image format (png or svg)")
	fs.BoolVar(&cfg.SkipCharts, "skip-charts", false, "Skip chart rendering")
	fs.BoolVar(&cfg.SkipJSON, "skip-json", false, "Skip JSON export")
	fs.StringVar(&cfg.SQLitePath, "sqlite", getEnv("OWCS_SQLITE_PATH", ""), "Write results to this SQLite file")
	fs.BoolVar(&cfg.SkipTurso, "skip-turso", false, "Skip pushing to Turso")
	fs.BoolVar(&cfg.SkipPostgres, "skip-postgres", false, "Skip pushing to Postgres")
	fs.BoolVar(&cfg.SkipDiscord, "skip-discord", false, "Skip the Discord run summary")
	fs.IntVar(&cfg.MinHeroMaps, "min-hero-maps", stats.DefaultMinHeroMaps, "Heroes need more than this many maps for the win rate view")
	fs.IntVar(&cfg.BanLimit, "ban-limit", stats.DefaultBanLimit, "Number of heroes in the ban chart")
	fs.IntVar(&cfg.SwitchLimit, "switch-limit", stats.DefaultSwitchLimit, "Number of heroes in the switch chart")
	fs.IntVar(&cfg.PlayerLimit, "player-limit", stats.DefaultPlayerLimit, "Number of players in each metric chart")
	fs.BoolVar(&cfg.Verbose, "verbose", getEnvBool("OWCS_VERBOSE"), "Debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Input = strings.Trim(cfg.Input, "\"")
	cfg.TursoURL = os.Getenv("TURSO_DATABASE_URL")
	cfg.TursoToken = os.Getenv("TURSO_AUTH_TOKEN")
	cfg.PostgresURL = os.Getenv("DATABASE_URL")
	cfg.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ViewerConfig holds the chart viewer settings
type ViewerConfig struct {
	Dir  string `validate:"required"`
	Port string `validate:"required,numeric"`
}

// ParseViewer builds the viewer config from the environment and arguments
func ParseViewer(args []string) (*ViewerConfig, error) {
	cfg := &ViewerConfig{}
	fs := flag.NewFlagSet("viewer", flag.ContinueOnError)
	fs.StringVar(&cfg.Dir, "dir", getEnv("OWCS_OUTPUT_DIR", "./report"), "Directory written by the analyzer")
	fs.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "HTTP port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(v any) error {
	if err := validator.New().Struct(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
