package contract

import (
	"testing"
	"time"

	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "empty input uses defaults",
			input: &ConfigRawInput{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.WholeTreeScan, cfg.ScanMode)
				assert.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
				assert.Equal(t, DefaultCloneTimeout, cfg.CloneTimeout)
				assert.Equal(t, DefaultRulesetURL, cfg.RulesetURL)
				assert.Equal(t, DefaultHarvestDir, cfg.HarvestDir)
				assert.Equal(t, log.InfoLevel, cfg.LogLevel)
				assert.Len(t, cfg.SupportedExtensions, 13)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "diffs only selects changed-files scanning",
			input: &ConfigRawInput{
				Input:       "github_data.json",
				DiffsOnly:   true,
				SemgrepArgs: "--metrics off --quiet",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.ChangedFilesScan, cfg.ScanMode)
				assert.Equal(t, "github_data.json", cfg.InputFile)
				assert.Equal(t, []string{"--metrics", "off", "--quiet"}, cfg.SemgrepArgs)
			},
		},
		{
			name:  "custom clone timeout and excludes",
			input: &ConfigRawInput{CloneTimeout: "2m", ExcludeRepos: "*webkit*, chromium/*"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2*time.Minute, cfg.CloneTimeout)
				assert.Equal(t, []string{"*webkit*", "chromium/*"}, cfg.ExcludeRepos)
			},
		},
		{
			name:        "invalid backend",
			input:       &ConfigRawInput{StoreBackend: "oracle"},
			expectError: true,
		},
		{
			name:        "mysql without connection string",
			input:       &ConfigRawInput{StoreBackend: "mysql"},
			expectError: true,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{Output: "xml"},
			expectError: true,
		},
		{
			name:        "negative clone timeout",
			input:       &ConfigRawInput{CloneTimeout: "-5s"},
			expectError: true,
		},
		{
			name:        "extension without dot",
			input:       &ConfigRawInput{SupportedExtensions: ".go,py"},
			expectError: true,
		},
		{
			name:        "bad glob",
			input:       &ConfigRawInput{ExcludeRepos: "[webkit"},
			expectError: true,
		},
		{
			name:        "bad log level",
			input:       &ConfigRawInput{LogLevel: "loud"},
			expectError: true,
		},
		{
			name:        "bad color value",
			input:       &ConfigRawInput{Color: "sometimes"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/xss"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=xss"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=xss"))
}

func TestHarvestOutputFile(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultHarvestOutput, cfg.HarvestOutputFile())
	cfg.OutputFile = "out.json"
	assert.Equal(t, "out.json", cfg.HarvestOutputFile())
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{ExcludeRepos: []string{"*webkit*"}, SemgrepArgs: []string{"--quiet"}}
	clone := cfg.Clone()
	clone.ExcludeRepos[0] = "changed"
	clone.SemgrepArgs = append(clone.SemgrepArgs, "--x")
	assert.Equal(t, "*webkit*", cfg.ExcludeRepos[0])
	assert.Equal(t, []string{"--quiet"}, cfg.SemgrepArgs)
}
