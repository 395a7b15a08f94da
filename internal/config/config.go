package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultProfileName = "default"
	DefaultBaseURL     = "http://localhost:8080"
	DefaultStreamPath  = "/api/v1/chat/stream"
	DefaultIPLookupURL = "https://api.ipify.org?format=json"
)

type Profile struct {
	BaseURL    string            `json:"base_url" mapstructure:"base_url"`
	StreamPath string            `json:"stream_path,omitempty" mapstructure:"stream_path"`
	Mode       string            `json:"mode,omitempty" mapstructure:"mode"` // named or raw
	Headers    map[string]string `json:"headers,omitempty" mapstructure:"headers"`
	ContactURL string            `json:"contact_url,omitempty" mapstructure:"contact_url"`
	ResumeURL  string            `json:"resume_url,omitempty" mapstructure:"resume_url"`
}

type TypingConfig struct {
	Speed            float64 `json:"speed" mapstructure:"speed"` // runes per second, 0 disables the animation
	NaturalVariation bool    `json:"natural_variation" mapstructure:"natural_variation"`
}

type StreamConfig struct {
	ConnectTimeout string   `json:"connect_timeout" mapstructure:"connect_timeout"`
	IdleTimeout    string   `json:"idle_timeout" mapstructure:"idle_timeout"`
	NoisePatterns  []string `json:"noise_patterns,omitempty" mapstructure:"noise_patterns"`
}

type LoggingConfig struct {
	File  string `json:"file" mapstructure:"file"`
	Debug bool   `json:"debug" mapstructure:"debug"`
}

type Config struct {
	Profiles      map[string]Profile `json:"profiles" mapstructure:"profiles"`
	ActiveProfile string             `json:"active_profile" mapstructure:"active_profile"`
	Typing        TypingConfig       `json:"typing" mapstructure:"typing"`
	Stream        StreamConfig       `json:"stream" mapstructure:"stream"`
	InitStepDelay string             `json:"init_step_delay" mapstructure:"init_step_delay"`
	IPLookupURL   string             `json:"ip_lookup_url" mapstructure:"ip_lookup_url"`
	DownloadDir   string             `json:"download_dir,omitempty" mapstructure:"download_dir"`
	Logging       LoggingConfig      `json:"logging" mapstructure:"logging"`

	currentProfile *Profile
	path           string
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the config file at configPath, creating it with defaults
// when missing. TERMTWIN_* environment variables override file values.
func LoadFrom(configPath string) (*Config, error) {
	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := saveConfig(Default(), configPath); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("TERMTWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.path = configPath

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		ActiveProfile: DefaultProfileName,
		Typing:        TypingConfig{Speed: 30, NaturalVariation: true},
		Stream:        StreamConfig{ConnectTimeout: "30s", IdleTimeout: "90s"},
		InitStepDelay: "1s",
		IPLookupURL:   DefaultIPLookupURL,
		Logging:       LoggingConfig{File: "termtwin.log"},
	}
}

func DefaultProfile() Profile {
	return Profile{
		BaseURL:    DefaultBaseURL,
		StreamPath: DefaultStreamPath,
		Mode:       "named",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("active_profile", d.ActiveProfile)
	v.SetDefault("typing.speed", d.Typing.Speed)
	v.SetDefault("typing.natural_variation", d.Typing.NaturalVariation)
	v.SetDefault("stream.connect_timeout", d.Stream.ConnectTimeout)
	v.SetDefault("stream.idle_timeout", d.Stream.IdleTimeout)
	v.SetDefault("stream.noise_patterns", []string{})
	v.SetDefault("init_step_delay", d.InitStepDelay)
	v.SetDefault("ip_lookup_url", d.IPLookupURL)
	v.SetDefault("download_dir", "")
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.debug", false)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	for _, d := range []struct{ key, value string }{
		{"stream.connect_timeout", c.Stream.ConnectTimeout},
		{"stream.idle_timeout", c.Stream.IdleTimeout},
		{"init_step_delay", c.InitStepDelay},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.value, err)
		}
	}
	for name, p := range c.Profiles {
		if p.Mode != "" && p.Mode != "named" && p.Mode != "raw" {
			return fmt.Errorf("profile %q: mode must be named or raw, got %q", name, p.Mode)
		}
	}
	if c.Typing.Speed < 0 {
		return fmt.Errorf("typing.speed must not be negative")
	}
	return nil
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.BaseURL != ""
}

// Current returns the active profile.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return Profile{}
	}
	p := *c.currentProfile
	if p.StreamPath == "" {
		p.StreamPath = DefaultStreamPath
	}
	if p.Mode == "" {
		p.Mode = "named"
	}
	return p
}

// UseProfile activates name for this process without saving.
func (c *Config) UseProfile(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		name = strings.ToLower(name)
		profile, exists = c.Profiles[name]
	}
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

// ProfileNames returns profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) ConnectTimeout() time.Duration {
	return parseDuration(c.Stream.ConnectTimeout, 30*time.Second)
}

func (c *Config) IdleTimeout() time.Duration {
	return parseDuration(c.Stream.IdleTimeout, 90*time.Second)
}

func (c *Config) InitDelay() time.Duration {
	return parseDuration(c.InitStepDelay, time.Second)
}

// Dir is the directory holding the config file.
func (c *Config) Dir() string {
	if c.path == "" {
		return ""
	}
	return filepath.Dir(c.path)
}

// LogPath resolves the log file, relative paths landing next to the config.
func (c *Config) LogPath() string {
	file := c.Logging.File
	if file == "" || filepath.IsAbs(file) || c.Dir() == "" {
		return file
	}
	return filepath.Join(c.Dir(), file)
}

// DownloadPath is where fetched files are written.
func (c *Config) DownloadPath() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getConfigPath() (string, error) {
	var configDir string

	// Use TERMTWIN_HOME if set, otherwise use user's home directory
	if home := os.Getenv("TERMTWIN_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".termtwin", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	if _, exists := c.Profiles[c.ActiveProfile]; !exists {
		// viper lowercases map keys
		if _, lower := c.Profiles[strings.ToLower(c.ActiveProfile)]; lower {
			c.ActiveProfile = strings.ToLower(c.ActiveProfile)
		} else {
			// If active profile doesn't exist, fall back to the first one by name
			c.ActiveProfile = c.ProfileNames()[0]
		}
	}

	profile := c.Profiles[c.ActiveProfile]
	c.currentProfile = &profile
	return nil
}
