package game

import (
	"fmt"
	"strings"

	"github.com/xtding233/capsule-gacha/internal/pricing"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// pity.threshold
	if cfg.Pity.Threshold != nil && *cfg.Pity.Threshold <= 0 {
		errs = append(errs, "pity.threshold must be >= 1")
	}

	// catalog
	if len(cfg.Catalog.Rewards) == 0 {
		errs = append(errs, "catalog.rewards must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Catalog.Rewards))
	for i, r := range cfg.Catalog.Rewards {
		switch {
		case strings.TrimSpace(r) == "":
			errs = append(errs, fmt.Sprintf("catalog.rewards[%d] is blank", i))
		case seen[r]:
			errs = append(errs, fmt.Sprintf("catalog.rewards[%d] duplicates %q", i, r))
		}
		seen[r] = true
	}
	for i, c := range cfg.Catalog.Capsules {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Sprintf("catalog.capsules[%d] is blank", i))
		}
	}

	// tokens (optional)
	if cfg.Tokens != nil {
		if cfg.Tokens.PerDraw != nil && *cfg.Tokens.PerDraw < 0 {
			errs = append(errs, "tokens.per_draw must be >= 0")
		}
		if cfg.Tokens.PerTenDraw != nil && *cfg.Tokens.PerTenDraw < 0 {
			errs = append(errs, "tokens.per_ten_draw must be >= 0")
		}
	}

	// wallet (optional)
	if cfg.Wallet != nil && cfg.Wallet.StartingBalance != nil && *cfg.Wallet.StartingBalance < 0 {
		errs = append(errs, "wallet.starting_balance must be >= 0")
	}

	// shop (optional)
	if cfg.Shop != nil {
		if cfg.Shop.TaxRate != nil && *cfg.Shop.TaxRate < 0 {
			errs = append(errs, "shop.tax_rate must be >= 0")
		}
		ids := make(map[string]bool, len(cfg.Shop.Bundles))
		for i, b := range cfg.Shop.Bundles {
			switch {
			case strings.TrimSpace(b.ID) == "":
				errs = append(errs, fmt.Sprintf("shop.bundles[%d].id is blank", i))
			case ids[b.ID]:
				errs = append(errs, fmt.Sprintf("shop.bundles[%d] duplicates id %q", i, b.ID))
			}
			ids[b.ID] = true
			if b.Coins <= 0 || b.Coins > pricing.MaxPlanCoins {
				errs = append(errs, fmt.Sprintf("shop.bundles[%d].coins must be in [1, %d]", i, pricing.MaxPlanCoins))
			}
			if b.Bonus > pricing.MaxPlanCoins {
				errs = append(errs, fmt.Sprintf("shop.bundles[%d].bonus must be <= %d", i, pricing.MaxPlanCoins))
			}
			if b.Bonus < 0 || b.PriceCents < 0 {
				errs = append(errs, fmt.Sprintf("shop.bundles[%d] bonus and price_cents must be >= 0", i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
