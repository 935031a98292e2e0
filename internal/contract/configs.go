package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultDownloadDir         = "downloaded_repos"
	DefaultCloneTimeout        = 60 * time.Second
	DefaultRulesetURL          = "https://semgrep.dev/c/p/xss"
	DefaultRulesetFile         = "semgrep.yaml"
	DefaultSemgrepBinary       = "semgrep"
	DefaultHarvestDir          = "../../github_data/raw_commits"
	DefaultHarvestOutput       = "github_data.json"
	DefaultExcludeRepos        = "*webkit*"
	DefaultSupportedExtensions = ".go,.java,.js,.json,.py,.rb,.ts,.jsx,.tsx,.html,.erb,.jsp,.yml"
	DefaultLogLevel            = "info"
	DefaultStoreDBFile         = "data/xss_research.db"
)

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	InputFile           string
	ScanMode            schema.ScanMode
	SkipRulesetDownload bool
	Progress            bool

	RulesetURL    string
	RulesetFile   string
	SemgrepBinary string
	SemgrepArgs   []string

	DownloadDir         string
	CloneTimeout        time.Duration
	ExcludeRepos        []string
	SupportedExtensions []string

	HarvestDir string
	NoDownload bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   log.Level
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	DownloadDir    string `mapstructure:"download-dir"`
	LogLevel       string `mapstructure:"log-level"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`

	// --- Config-file / env only ---
	CloneTimeout        string `mapstructure:"clone-timeout"`
	ExcludeRepos        string `mapstructure:"exclude-repos"`
	SupportedExtensions string `mapstructure:"supported-extensions"`
	RulesetURL          string `mapstructure:"ruleset-url"`
	RulesetFile         string `mapstructure:"ruleset-file"`
	SemgrepBinary       string `mapstructure:"semgrep-binary"`
	SemgrepArgs         string `mapstructure:"semgrep-args"`

	// --- Fields from buildCmd.Flags() ---
	Input               string `mapstructure:"input"`
	DiffsOnly           bool   `mapstructure:"diffs-only"`
	SkipRulesetDownload bool   `mapstructure:"skip-ruleset-download"`
	Progress            bool   `mapstructure:"progress"`

	// --- Fields from harvestCmd.Flags() ---
	Directory  string `mapstructure:"directory"`
	NoDownload bool   `mapstructure:"no-download"`
}

// ProcessAndValidate turns raw input into a validated Config.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateStoreConfig(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPipelineInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for the given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateStoreBackend normalizes and checks a backend name.
func ValidateStoreBackend(raw string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateStoreConfig validates the findings store configuration.
func validateStoreConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ValidateStoreBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs handles output and logging options.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Width < 0 {
		return fmt.Errorf("width must be a positive number or 0 for auto-detect, got %d", input.Width)
	}
	cfg.Width = input.Width

	cfg.UseColors = true
	if input.Color != "" {
		useColors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color value: %w", err)
		}
		cfg.UseColors = useColors
	}

	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level '%s'. must be one of panic, fatal, error, warn, info, debug, trace", input.LogLevel)
	}
	cfg.LogLevel = level
	return nil
}

// processPipelineInputs handles the build and harvest options.
func processPipelineInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputFile = input.Input
	cfg.ScanMode = schema.WholeTreeScan
	if input.DiffsOnly {
		cfg.ScanMode = schema.ChangedFilesScan
	}
	cfg.SkipRulesetDownload = input.SkipRulesetDownload
	cfg.Progress = input.Progress

	cfg.RulesetURL = orDefault(input.RulesetURL, DefaultRulesetURL)
	cfg.RulesetFile = orDefault(input.RulesetFile, DefaultRulesetFile)
	cfg.SemgrepBinary = orDefault(input.SemgrepBinary, DefaultSemgrepBinary)
	cfg.SemgrepArgs = strings.Fields(input.SemgrepArgs)

	cfg.DownloadDir = orDefault(input.DownloadDir, DefaultDownloadDir)
	cfg.CloneTimeout = DefaultCloneTimeout
	if input.CloneTimeout != "" {
		timeout, err := time.ParseDuration(input.CloneTimeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("invalid clone-timeout '%s'. use a positive duration such as 60s or 2m", input.CloneTimeout)
		}
		cfg.CloneTimeout = timeout
	}

	cfg.ExcludeRepos = SplitList(input.ExcludeRepos)
	for _, pattern := range cfg.ExcludeRepos {
		if _, err := glob.Compile(strings.ToLower(pattern)); err != nil {
			return fmt.Errorf("invalid exclude-repos pattern '%s': %w", pattern, err)
		}
	}

	exts := input.SupportedExtensions
	if exts == "" {
		exts = DefaultSupportedExtensions
	}
	cfg.SupportedExtensions = SplitList(exts)
	for _, ext := range cfg.SupportedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid supported extension '%s'. extensions must start with '.'", ext)
		}
	}

	cfg.HarvestDir = orDefault(input.Directory, DefaultHarvestDir)
	cfg.NoDownload = input.NoDownload
	return nil
}

// HarvestOutputFile returns where the harvester writes its batch document.
func (c *Config) HarvestOutputFile() string {
	return orDefault(c.OutputFile, DefaultHarvestOutput)
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.SemgrepArgs = append([]string(nil), c.SemgrepArgs...)
	clone.ExcludeRepos = append([]string(nil), c.ExcludeRepos...)
	clone.SupportedExtensions = append([]string(nil), c.SupportedExtensions...)
	return &clone
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
