package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/genedata/internal/catalog"
	"github.com/starford/genedata/internal/report"
	"github.com/starford/genedata/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Catalog backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Input   InputConfig       `yaml:"input"`
	Output  OutputConfig      `yaml:"output"`
	Report  ReportConfig      `yaml:"report"`
	Catalog CatalogConfig     `yaml:"catalog"`
	HTTP    HTTPConfig        `yaml:"http"`
	Auth    AuthConfig        `yaml:"auth"`
	Watch   WatchConfig       `yaml:"watch"`
	S3      S3Config          `yaml:"s3"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// WorkDir is the directory relative stream paths resolve against.
	WorkDir string `yaml:"work_dir"`
}

// InputConfig names the two input streams.
type InputConfig struct {
	Catalog  string `yaml:"catalog"`
	Commands string `yaml:"commands"`
}

// Validate validates the input configuration.
func (c *InputConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Catalog, validation.Required),
		validation.Field(&c.Commands, validation.Required),
	); err != nil {
		return err
	}
	// The catalog is read to EOF before the first command.
	if c.Catalog == storage.StdinName && c.Commands == storage.StdinName {
		return fmt.Errorf("catalog and commands cannot both be read from stdin")
	}
	return nil
}

// OutputConfig names the report stream.
type OutputConfig struct {
	Report string `yaml:"report"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Report, validation.Required),
	)
}

// ReportConfig controls report formatting.
type ReportConfig struct {
	Label string `yaml:"label"`
}

// CatalogConfig selects the catalog store and the malformed-line policy.
type CatalogConfig struct {
	Backend     string `yaml:"backend"`
	OnMalformed string `yaml:"on_malformed"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendSQLite)),
		validation.Field(&c.OnMalformed, validation.Required,
			validation.In(string(catalog.PolicyFail), string(catalog.PolicySkip))),
	)
}

// Policy returns the load policy.
func (c *CatalogConfig) Policy() catalog.Policy {
	return catalog.Policy(c.OnMalformed)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig controls catalog hot reload in serve mode.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// S3Config configures the s3:// stream backend.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// Storage converts to the storage package's config.
func (c S3Config) Storage() storage.S3Config {
	return storage.S3Config{
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		PathStyle:       c.PathStyle,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
	}
}

// NewDefaultConfig returns a new Config with the tool's fixed
// stream names as defaults.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			WorkDir:  ".",
		},
		Input: InputConfig{
			Catalog:  "sequences.2.txt",
			Commands: "commands.2.txt",
		},
		Output: OutputConfig{
			Report: "genedata.txt",
		},
		Report: ReportConfig{
			Label: report.DefaultLabel,
		},
		Catalog: CatalogConfig{
			Backend:     BackendMemory,
			OnMalformed: string(catalog.PolicyFail),
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}
