package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Config represents the persisted state for region-select.
type Config struct {
	Options   Options   `yaml:"options" json:"options"`
	Selection Selection `yaml:"selection" json:"selection"`
}

// Options holds global settings.
type Options struct {
	DatasetSource      string `yaml:"dataset_source" json:"dataset_source"`
	PrimaryPlaceholder string `yaml:"primary_placeholder" json:"primary_placeholder"`
	Placeholder        string `yaml:"placeholder" json:"placeholder"`
	FailureMessage     string `yaml:"failure_message" json:"failure_message"`
	SocketPath         string `yaml:"socket_path" json:"socket_path"`
	ListenAddr         string `yaml:"listen_addr" json:"listen_addr"`
	OCIConfigPath      string `yaml:"oci_config_path" json:"oci_config_path"`
	OCIProfile         string `yaml:"oci_profile" json:"oci_profile"`
	OCIRegion          string `yaml:"oci_region,omitempty" json:"oci_region,omitempty"`
}

// Selection is the last saved region and sub-region.
type Selection struct {
	Region    string `yaml:"region" json:"region"`
	SubRegion string `yaml:"sub_region" json:"sub_region"`
}

var (
	ErrRegionNotFound    = errors.New("region not found")
	ErrSubRegionNotFound = errors.New("sub-region not found")
	ErrNoSelection       = errors.New("no selection saved")
)

// DefaultConfig returns the initial config.
func DefaultConfig(home string) Config {
	return Config{
		Options: Options{
			DatasetSource:      regions.EmbeddedSource,
			PrimaryPlaceholder: selector.DefaultPrimaryPlaceholder,
			Placeholder:        selector.DefaultPlaceholder,
			FailureMessage:     selector.DefaultFailureMessage,
			SocketPath:         filepath.Join(home, ".region-select", "daemon.sock"),
			ListenAddr:         "127.0.0.1:8080",
			OCIConfigPath:      filepath.Join(home, ".oci", "config"),
			OCIProfile:         "DEFAULT",
		},
	}
}

// EnsureDefaultConfig creates a default config file if it does not exist.
func EnsureDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return Save(path, DefaultConfig(home))
}

// Load reads config with a file lock for safety.
func Load(path string) (Config, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return Config{}, err
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads config at path, falling back to defaults when the file
// does not exist yet.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		return DefaultConfig(home), nil
	}
	return Load(path)
}

// Save writes config with a file lock.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// WriteDataset writes ds as indented JSON under the same locking scheme as
// the config file.
func WriteDataset(path string, ds *regions.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := encodeDataset(ds)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Settings returns the selector display text configured in options.
func (o Options) Settings() selector.Settings {
	return selector.Settings{
		PrimaryPlaceholder: o.PrimaryPlaceholder,
		Placeholder:        o.Placeholder,
		FailureMessage:     o.FailureMessage,
	}
}

// LoadOptions returns what regions.Load needs for the configured source.
func (o Options) LoadOptions() regions.LoadOptions {
	return regions.LoadOptions{
		OCIConfigPath: o.OCIConfigPath,
		OCIProfile:    o.OCIProfile,
		OCIRegion:     o.OCIRegion,
	}
}

// SetSelection validates region and subRegion against ds and stores them.
// An empty subRegion saves the region alone.
func (c *Config) SetSelection(ds *regions.Dataset, region, subRegion string) error {
	subs, ok := ds.SubRegions(region)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRegionNotFound, region)
	}
	if subRegion != "" && !slices.Contains(subs, subRegion) {
		return fmt.Errorf("%w: %s in %s", ErrSubRegionNotFound, subRegion, region)
	}
	c.Selection = Selection{Region: region, SubRegion: subRegion}
	return nil
}

// ClearSelection forgets the saved selection.
func (c *Config) ClearSelection() error {
	if c.Selection == (Selection{}) {
		return ErrNoSelection
	}
	c.Selection = Selection{}
	return nil
}

// Validate minimal required fields.
func (c Config) Validate() error {
	if c.Selection.SubRegion != "" && c.Selection.Region == "" {
		return fmt.Errorf("selection sub_region set without region")
	}
	return nil
}

func encodeDataset(ds *regions.Dataset) ([]byte, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
