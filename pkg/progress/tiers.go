package progress

import "github.com/msksk8cool/sk8school-bot/pkg/catalog"

// TierFor returns the tier whose range holds total. Totals past the last
// tier map to the last tier.
func TierFor(tiers []catalog.Tier, total int) catalog.Tier {
	for _, t := range tiers {
		if total >= t.Min && total <= t.Max {
			return t
		}
	}
	if len(tiers) > 0 && total > tiers[len(tiers)-1].Max {
		return tiers[len(tiers)-1]
	}
	if len(tiers) > 0 {
		return tiers[0]
	}
	return catalog.Tier{}
}

// tierByID finds a tier by id, falling back to the tier for total.
func tierByID(tiers []catalog.Tier, id string, total int) catalog.Tier {
	for _, t := range tiers {
		if t.ID == id {
			return t
		}
	}
	return TierFor(tiers, total)
}

// NextTier returns the first tier starting above total, or nil at the top.
func NextTier(tiers []catalog.Tier, total int) *catalog.Tier {
	for i := range tiers {
		if tiers[i].Min > total {
			t := tiers[i]
			return &t
		}
	}
	return nil
}

// Percent measures progress from the current tier's upper bound towards the
// next tier's lower bound, clamped to 0..100.
func Percent(total int, cur catalog.Tier, next *catalog.Tier) float64 {
	if next == nil {
		return 0
	}
	span := next.Min - cur.Max
	if span <= 0 {
		return 100
	}

	p := float64(total-cur.Max) / float64(span) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
