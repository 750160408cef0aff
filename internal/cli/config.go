package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/tailscale/hujson"

	"github.com/cybertec-postgresql/pgparse/internal/decoder"
	"github.com/cybertec-postgresql/pgparse/internal/discovery"
	perrors "github.com/cybertec-postgresql/pgparse/internal/errors"
	"github.com/cybertec-postgresql/pgparse/internal/report"
	"github.com/cybertec-postgresql/pgparse/internal/stream"
	"github.com/cybertec-postgresql/pgparse/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// DefaultConfigFile is read from the working directory when no --config
// flag is given. A missing default file is not an error.
const DefaultConfigFile = ".pgparse.json"

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	StandardConformingStrings: true,
	BackslashQuote:            "safe_encoding",
	Patterns:                  discovery.DefaultPatterns,
	Parallelism:               1,
	Timeout:                   30 * time.Second,
	ScratchDatabase:           true,
	ResultsFile:               ".pgparse/results.json",
	Format:                    "text",
	Color:                     "auto",
}

// NewConfig returns a copy of DefaultConfig that is safe to modify
func NewConfig() *Config {
	c := DefaultConfig
	c.Patterns = slices.Clone(DefaultConfig.Patterns)
	return &c
}

// Overrides carries values given on the command line or through PGPARSE_*
// environment variables. Zero values leave the configuration unchanged.
type Overrides struct {
	StandardConformingStrings *bool
	BackslashQuote            string
	Encoding                  string
	Patterns                  []string
	Parallelism               int
	Timeout                   time.Duration
	ConnectionString          string
	NoScratchDatabase         bool
	ResultsFile               string
	Format                    string
	OutputPath                string
	Color                     string
	Verbose                   bool
	Quiet                     bool
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, o Overrides) {
	if o.StandardConformingStrings != nil {
		c.StandardConformingStrings = *o.StandardConformingStrings
	}
	if o.BackslashQuote != "" {
		c.BackslashQuote = o.BackslashQuote
	}
	if o.Encoding != "" {
		c.Encoding = o.Encoding
	}
	if len(o.Patterns) > 0 {
		c.Patterns = o.Patterns
	}
	if o.Parallelism != 0 {
		c.Parallelism = o.Parallelism
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	if o.ConnectionString != "" {
		c.ConnectionString = o.ConnectionString
	}
	if o.NoScratchDatabase {
		c.ScratchDatabase = false
	}
	if o.ResultsFile != "" {
		c.ResultsFile = o.ResultsFile
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.OutputPath != "" {
		c.OutputPath = o.OutputPath
	}
	if o.Color != "" {
		c.Color = o.Color
	}
	c.Verbose = c.Verbose || o.Verbose
	c.Quiet = c.Quiet || o.Quiet
}

// fileConfig is the on-disk shape of Config. Durations are written as
// strings such as "30s".
type fileConfig struct {
	types.Config
	Timeout string `json:"timeout"`
}

// LoadConfigFile merges the JSON (with comments and trailing commas) file at
// path into c. When required is false a missing file is ignored.
func LoadConfigFile(c *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	data, err = hujson.Standardize(data)
	if err != nil {
		return perrors.NewConfigError(path, err.Error())
	}

	fc := fileConfig{Config: *c}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return perrors.NewConfigError(path, err.Error())
	}

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return perrors.NewConfigError("timeout", err.Error())
		}
		fc.Config.Timeout = d
	}

	*c = fc.Config
	return nil
}

// Validate checks that every configuration value is usable
func Validate(c *Config) error {
	if _, err := decoder.ParseBackslashQuote(c.BackslashQuote); err != nil {
		return perrors.NewConfigError("backslash_quote", err.Error())
	}
	if err := discovery.ValidateEncoding(c.Encoding); err != nil {
		return perrors.NewConfigError("encoding", err.Error())
	}
	if _, err := discovery.NewMatcher(c.Patterns); err != nil {
		return perrors.NewConfigError("patterns", err.Error())
	}
	if c.Parallelism < 1 {
		return perrors.NewConfigError("parallelism", fmt.Sprintf("must be at least 1, got %d", c.Parallelism))
	}
	if c.Timeout <= 0 {
		return perrors.NewConfigError("timeout", "must be positive")
	}
	if !report.ValidFormat(c.Format) {
		return perrors.NewConfigError("format", fmt.Sprintf("unsupported format %q (supported: %v)", c.Format, report.SupportedFormats()))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return perrors.NewConfigError("color", fmt.Sprintf("must be auto, always or never, got %q", c.Color))
	}
	return nil
}

// ParserConfig returns the scanner settings selected by c
func ParserConfig(c *Config) (stream.Config, error) {
	bq, err := decoder.ParseBackslashQuote(c.BackslashQuote)
	if err != nil {
		return stream.Config{}, perrors.NewConfigError("backslash_quote", err.Error())
	}
	return stream.Config{
		StandardConformingStrings: c.StandardConformingStrings,
		BackslashQuote:            bq,
	}, nil
}
