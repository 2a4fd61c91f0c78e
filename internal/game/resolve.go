// resolve.go
package game

import (
	"github.com/xtding233/capsule-gacha/internal/gacha"
	"github.com/xtding233/capsule-gacha/internal/pricing"
	"github.com/xtding233/capsule-gacha/internal/token"
)

// Defaults applied when neither default.yaml nor the theme sets a value.
const (
	DefaultTokenName       = "coin"
	DefaultStartingBalance = 999999
	DefaultCurrency        = "USD"
)

// Params is the normalized config a play session is built from.
type Params struct {
	Version         string
	Threshold       int
	Catalog         []gacha.Reward
	Capsules        []string
	Cost            token.Token
	StartingBalance int
	SkipDefault     bool
	Shop            pricing.Shop
}

// Resolve fills defaults into a validated RawConfig.
func Resolve(raw RawConfig) (Params, error) {
	if err := ValidateRaw(raw); err != nil {
		return Params{}, err
	}
	p := Params{
		Version:         raw.Version,
		Threshold:       gacha.DefaultPityThreshold,
		Capsules:        append([]string(nil), raw.Catalog.Capsules...),
		Cost:            token.Token{Name: DefaultTokenName},
		StartingBalance: DefaultStartingBalance,
		Shop:            pricing.Shop{Currency: DefaultCurrency},
	}
	if raw.Pity.Threshold != nil {
		p.Threshold = *raw.Pity.Threshold
	}
	p.Catalog = make([]gacha.Reward, len(raw.Catalog.Rewards))
	for i, r := range raw.Catalog.Rewards {
		p.Catalog[i] = gacha.Reward(r)
	}
	if t := raw.Tokens; t != nil {
		if t.Name != "" {
			p.Cost.Name = t.Name
		}
		if t.PerDraw != nil {
			p.Cost.PerDraw = *t.PerDraw
		}
		if t.PerTenDraw != nil {
			p.Cost.PerTenDraw = *t.PerTenDraw
		}
	}
	if raw.Wallet != nil && raw.Wallet.StartingBalance != nil {
		p.StartingBalance = *raw.Wallet.StartingBalance
	}
	if raw.Reveal != nil && raw.Reveal.SkipDefault != nil {
		p.SkipDefault = *raw.Reveal.SkipDefault
	}
	if s := raw.Shop; s != nil {
		if s.Currency != "" {
			p.Shop.Currency = s.Currency
		}
		if s.TaxRate != nil {
			p.Shop.TaxRate = *s.TaxRate
		}
		for _, b := range s.Bundles {
			p.Shop.Bundles = append(p.Shop.Bundles, pricing.Bundle{
				ID:          b.ID,
				Name:        b.Name,
				Coins:       b.Coins,
				Bonus:       b.Bonus,
				FirstTimeX2: b.FirstTimeX2,
				PriceCents:  b.PriceCents,
			})
		}
	}
	return p, nil
}

// NewEngine builds a draw engine for p.
func (p Params) NewEngine(opts ...gacha.Option) (*gacha.Engine, error) {
	return gacha.NewEngine(p.Catalog, append([]gacha.Option{gacha.WithCapsules(p.Capsules)}, opts...)...)
}
