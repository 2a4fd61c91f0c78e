// Package pricing models the coin shop: bundles that top up a wallet and
// the planner that picks the cheapest bundles for a coin shortfall.
package pricing

import "math"

// Bundle is a purchasable coin pack.
type Bundle struct {
	ID          string `json:"id"`            // e.g. "coins_1000"
	Name        string `json:"name"`          // display name
	Coins       int    `json:"coins"`         // base coins granted
	Bonus       int    `json:"bonus"`         // extra coins on every purchase
	FirstTimeX2 bool   `json:"first_time_x2"` // first purchase doubles Coins (not Bonus)
	PriceCents  int    `json:"price_cents"`
}

// Grant is how many coins one purchase credits.
func (b Bundle) Grant(first bool) int {
	if first && b.FirstTimeX2 {
		return b.Coins*2 + b.Bonus
	}
	return b.Coins + b.Bonus
}

// Shop is the bundle list plus tax info.
type Shop struct {
	Currency string // ISO code, e.g. "USD"
	// TaxRate applies to the subtotal; use 0 for tax-inclusive prices.
	TaxRate float64
	Bundles []Bundle
}

// Find looks a bundle up by id.
func (s Shop) Find(id string) (Bundle, bool) {
	for _, b := range s.Bundles {
		if b.ID == id {
			return b, true
		}
	}
	return Bundle{}, false
}

// Purchased records bundles a player has already bought.
type Purchased map[string]bool

// FirstTime reports whether b still carries its first-purchase double.
func (p Purchased) FirstTime(b Bundle) bool {
	return b.FirstTimeX2 && !p[b.ID]
}

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases  []Purchase `json:"purchases"`
	SubCents   int        `json:"sub_cents"`
	TaxCents   int        `json:"tax_cents"`
	TotalCents int        `json:"total_cents"`
	TotalCoins int        `json:"total_coins"`
	Currency   string     `json:"currency"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	BundleID  string `json:"bundle_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int    `json:"unit_price"` // cents
	UnitCoins int    `json:"unit_coins"` // coins per unit in this plan, double applied
	Doubled   bool   `json:"doubled,omitempty"`
	Subtotal  int    `json:"subtotal"`
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}
