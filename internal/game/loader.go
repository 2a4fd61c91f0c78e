package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/theme files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}

func (p Paths) ThemePath(theme string) string {
	return filepath.Join(p.BaseDir, "themes", theme+".yaml")
}

// HasTheme reports whether the theme file exists. The empty theme always does.
func (p Paths) HasTheme(theme string) bool {
	if theme == "" {
		return true
	}
	_, err := os.Stat(p.ThemePath(theme))
	return err == nil
}

// Files lists every file a merge for theme reads, for the watcher.
func (p Paths) Files(theme string) []string {
	files := []string{p.DefaultPath()}
	if theme != "" {
		files = append(files, p.ThemePath(theme))
	}
	return files
}

// Loader reads YAML configs and merges default → theme.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: theme name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads default.yaml and overlays the theme file (optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(theme string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[theme]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if theme != "" {
		themeCfg, err := readYAML(l.paths.ThemePath(theme)) // theme file may not exist
		if err != nil {
			return RawConfig{}, fmt.Errorf("read theme %q: %w", theme, err)
		}
		merged = mergeRaw(merged, themeCfg)
	}

	l.mu.Lock()
	l.cache[theme] = merged
	l.mu.Unlock()

	return merged, nil
}

// Load merges, validates and resolves the config for theme in one call.
func (l *Loader) Load(theme string) (Params, error) {
	raw, err := l.LoadMerged(theme)
	if err != nil {
		return Params{}, err
	}
	return Resolve(raw)
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: set scalars and pointers in b win,
// non-empty slices in b replace those in a.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// pity
	if b.Pity.Threshold != nil {
		out.Pity.Threshold = b.Pity.Threshold
	}

	// catalog
	if len(b.Catalog.Rewards) > 0 {
		out.Catalog.Rewards = append([]string(nil), b.Catalog.Rewards...)
	}
	if len(b.Catalog.Capsules) > 0 {
		out.Catalog.Capsules = append([]string(nil), b.Catalog.Capsules...)
	}

	// tokens
	switch {
	case out.Tokens == nil && b.Tokens != nil:
		c := *b.Tokens
		out.Tokens = &c
	case out.Tokens != nil && b.Tokens != nil:
		c := *out.Tokens
		if b.Tokens.Name != "" {
			c.Name = b.Tokens.Name
		}
		if b.Tokens.PerDraw != nil {
			c.PerDraw = b.Tokens.PerDraw
		}
		if b.Tokens.PerTenDraw != nil {
			c.PerTenDraw = b.Tokens.PerTenDraw
		}
		out.Tokens = &c
	}

	// wallet
	if b.Wallet != nil && b.Wallet.StartingBalance != nil {
		out.Wallet = &WalletConfig{StartingBalance: b.Wallet.StartingBalance}
	}

	// reveal
	if b.Reveal != nil && b.Reveal.SkipDefault != nil {
		out.Reveal = &RevealConfig{SkipDefault: b.Reveal.SkipDefault}
	}

	// shop
	if b.Shop != nil {
		c := ShopConfig{}
		if out.Shop != nil {
			c = *out.Shop
		}
		if b.Shop.Currency != "" {
			c.Currency = b.Shop.Currency
		}
		if b.Shop.TaxRate != nil {
			c.TaxRate = b.Shop.TaxRate
		}
		if len(b.Shop.Bundles) > 0 {
			c.Bundles = append([]BundleConfig(nil), b.Shop.Bundles...)
		}
		out.Shop = &c
	}

	return out
}
