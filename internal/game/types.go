// types.go
package game

// Raw config loaded from YAML; every field is optional so layers can merge.
type RawConfig struct {
	Version string        `yaml:"version"`
	Pity    PityConfig    `yaml:"pity"`
	Catalog CatalogConfig `yaml:"catalog"`
	Tokens  *TokenConfig  `yaml:"tokens,omitempty"`
	Wallet  *WalletConfig `yaml:"wallet,omitempty"`
	Reveal  *RevealConfig `yaml:"reveal,omitempty"`
	Shop    *ShopConfig   `yaml:"shop,omitempty"`
	Notes   string        `yaml:"notes,omitempty"`
}

type PityConfig struct {
	Threshold *int `yaml:"threshold"`
}

type CatalogConfig struct {
	Rewards  []string `yaml:"rewards"`
	Capsules []string `yaml:"capsules,omitempty"`
}

type TokenConfig struct {
	Name       string `yaml:"name,omitempty"`
	PerDraw    *int   `yaml:"per_draw"`
	PerTenDraw *int   `yaml:"per_ten_draw"`
}

type WalletConfig struct {
	StartingBalance *int `yaml:"starting_balance"`
}

type RevealConfig struct {
	SkipDefault *bool `yaml:"skip_default"`
}

// ShopConfig lists coin bundles; a theme that sets bundles replaces the whole list.
type ShopConfig struct {
	Currency string         `yaml:"currency,omitempty"`
	TaxRate  *float64       `yaml:"tax_rate"`
	Bundles  []BundleConfig `yaml:"bundles,omitempty"`
}

type BundleConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Coins       int    `yaml:"coins"`
	Bonus       int    `yaml:"bonus,omitempty"`
	FirstTimeX2 bool   `yaml:"first_time_x2,omitempty"`
	PriceCents  int    `yaml:"price_cents"`
}
