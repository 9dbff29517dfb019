package lastversion

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

func secondsToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Config is the decoded shape of lastversion.yml (§6 "Persisted state
// layout": "Configuration file lives under the platform config directory
// as lastversion.yml"). Every field mirrors a CLI flag's default so a host
// can pin behavior without repeating flags on every invocation.
type Config struct {
	Pre         bool   `yaml:"pre"`
	Formal      bool   `yaml:"formal"`
	Even        bool   `yaml:"even"`
	Sem         string `yaml:"sem"`
	Format      string `yaml:"format"`
	Only        string `yaml:"only"`
	Exclude     string `yaml:"exclude"`
	HavingAsset string `yaml:"having_asset"`
	UseCache    bool   `yaml:"use_cache"`
	CacheTTL    int    `yaml:"cache_ttl_seconds"`
}

// DefaultConfigPath returns the platform config directory's lastversion.yml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lastversion", "lastversion.yml")
}

// LoadConfig reads and decodes path. A missing file is not an error: it
// returns the zero Config, matching every field's "off"/empty default.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &cfg, nil
}

// ApplyTo folds config defaults into opts, preferring any value opts
// already set explicitly (a CLI flag always wins over the config file).
func (c *Config) ApplyTo(opts Options) Options {
	if !opts.PreOk {
		opts.PreOk = c.Pre
	}
	if !opts.Formal {
		opts.Formal = c.Formal
	}
	if !opts.Even {
		opts.Even = c.Even
	}
	if opts.Only == "" {
		opts.Only = c.Only
	}
	if opts.Exclude == "" {
		opts.Exclude = c.Exclude
	}
	if opts.HavingAsset == "" {
		opts.HavingAsset = c.HavingAsset
	}
	if !opts.UseCache {
		opts.UseCache = c.UseCache
	}
	if opts.CacheTTL == 0 && c.CacheTTL > 0 {
		opts.CacheTTL = secondsToDuration(c.CacheTTL)
	}
	return opts
}
