package pricing

import "math"

// maxDoubles caps how many first-time doubles the planner enumerates.
const maxDoubles = 12

// MaxPlanCoins bounds both the shortfall a plan covers and a single bundle's grant;
// the planner's tables grow with their sum.
const MaxPlanCoins = 1_000_000

// CheapestTopUp finds the minimum-cost combination of bundles granting at least need coins.
// Regular bundles repeat freely; a first-time double can be used at most once per bundle,
// so every subset of unused doubles is tried on top of the repeatable solution.
// A need above MaxPlanCoins yields an empty plan; callers reject it first.
func CheapestTopUp(shop Shop, need int, bought Purchased) Plan {
	plan := Plan{Currency: shop.Currency}
	if need <= 0 || len(shop.Bundles) == 0 {
		return plan
	}

	var doubles []Bundle
	maxGrant := 0
	for _, b := range shop.Bundles {
		if g := b.Grant(false); g > maxGrant {
			maxGrant = g
		}
		if bought.FirstTime(b) && len(doubles) < maxDoubles {
			doubles = append(doubles, b)
		}
	}
	if maxGrant == 0 || need > MaxPlanCoins || maxGrant > 2*MaxPlanCoins {
		return plan
	}

	// dp over coins up to need + maxGrant so a slight overshoot can win on price
	limit := need + maxGrant
	const inf = math.MaxInt
	dp := make([]int, limit+1)   // min cost to reach exactly t coins
	pick := make([]int, limit+1) // bundle index chosen to reach t
	prev := make([]int, limit+1) // previous t
	for t := range dp {
		dp[t], pick[t], prev[t] = inf, -1, -1
	}
	dp[0] = 0
	for t := 0; t <= limit; t++ {
		if dp[t] == inf {
			continue
		}
		for i, b := range shop.Bundles {
			g := b.Grant(false)
			if g <= 0 {
				continue
			}
			nt := min(t+g, limit)
			if cost := dp[t] + b.PriceCents; cost < dp[nt] {
				dp[nt], pick[nt], prev[nt] = cost, i, t
			}
		}
	}

	// atLeast[r] is the cheapest t >= r, preferring less overshoot on ties
	atLeast := make([]int, need+1)
	cur := limit
	for t := limit; t >= 0; t-- {
		if dp[t] <= dp[cur] {
			cur = t
		}
		if t <= need {
			atLeast[t] = cur
		}
	}

	bestCost, bestMask, bestT := inf, 0, 0
	for mask := 0; mask < 1<<len(doubles); mask++ {
		cost, coins := 0, 0
		for j, b := range doubles {
			if mask&(1<<j) != 0 {
				cost += b.PriceCents
				coins += b.Grant(true)
			}
		}
		t := 0
		if coins < need {
			t = atLeast[need-coins]
		}
		if dp[t] == inf {
			continue
		}
		if total := cost + dp[t]; total < bestCost {
			bestCost, bestMask, bestT = total, mask, t
		}
	}
	if bestCost == inf {
		return plan
	}

	for j, b := range doubles {
		if bestMask&(1<<j) != 0 {
			plan.add(Purchase{
				BundleID:  b.ID,
				Name:      b.Name + " (x2)",
				Qty:       1,
				UnitPrice: b.PriceCents,
				UnitCoins: b.Grant(true),
				Doubled:   true,
			})
		}
	}
	counts := make([]int, len(shop.Bundles))
	for t := bestT; t > 0 && pick[t] != -1; t = prev[t] {
		counts[pick[t]]++
	}
	for i, qty := range counts {
		if qty == 0 {
			continue
		}
		b := shop.Bundles[i]
		plan.add(Purchase{
			BundleID:  b.ID,
			Name:      b.Name,
			Qty:       qty,
			UnitPrice: b.PriceCents,
			UnitCoins: b.Grant(false),
		})
	}
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, shop.TaxRate)
	return plan
}

func (p *Plan) add(line Purchase) {
	line.Subtotal = line.UnitPrice * line.Qty
	p.Purchases = append(p.Purchases, line)
	p.SubCents += line.Subtotal
	p.TotalCoins += line.UnitCoins * line.Qty
}
