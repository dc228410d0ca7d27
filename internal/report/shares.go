package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Share is one group of a breakdown.
type Share struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

const DefaultScale int32 = 2

var hundred = decimal.NewFromInt(100)

// Shares turns group counts into percentages of the total.
//
// Rules:
// - Groups are ordered by count descending, then key.
// - Each percentage is rounded to scale; the rounding delta is applied to the largest group so the
//   percentages sum to exactly 100.
// - Zero-count groups are dropped.
func Shares(counts map[string]int, scale int32) []Share {
	if scale <= 0 {
		scale = DefaultScale
	}

	total := 0
	out := make([]Share, 0, len(counts))
	for k, n := range counts {
		if n <= 0 {
			continue
		}
		total += n
		out = append(out, Share{Key: k, Count: n})
	}
	if total == 0 {
		return out
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})

	t := decimal.NewFromInt(int64(total))
	sum := decimal.Zero
	for i := range out {
		p := decimal.NewFromInt(int64(out[i].Count)).Mul(hundred).Div(t).Round(scale)
		out[i].Percent = p
		sum = sum.Add(p)
	}

	if delta := hundred.Sub(sum); !delta.IsZero() {
		out[0].Percent = out[0].Percent.Add(delta).Round(scale)
	}
	return out
}
