package buckets

import "github.com/shopspring/decimal"

// List prices in USD. The estimate ignores the account-wide free tier.
var (
	storagePerGBMonth = decimal.RequireFromString("0.015")
	classAPerMillion  = decimal.RequireFromString("4.50")
	classBPerMillion  = decimal.RequireFromString("0.36")
	bytesPerGB        = decimal.NewFromInt(1 << 30)
	opsPerMillion     = decimal.NewFromInt(1_000_000)
)

// EstimateMonthlyCost prices stored bytes plus the approximated operation counters.
func EstimateMonthlyCost(size, classA, classB int64) decimal.Decimal {
	storage := decimal.NewFromInt(max(size, 0)).Div(bytesPerGB).Mul(storagePerGBMonth)
	opsA := decimal.NewFromInt(max(classA, 0)).Div(opsPerMillion).Mul(classAPerMillion)
	opsB := decimal.NewFromInt(max(classB, 0)).Div(opsPerMillion).Mul(classBPerMillion)
	return storage.Add(opsA).Add(opsB)
}

// ApplyStats copies stats into b and derives the operation counters and cost.
// Class A is approximated by one write per object, class B by one read per key.
func (b *Bucket) ApplyStats(stats *Stats) {
	if stats == nil {
		b.EstimatedMonthlyCost = decimal.Zero.StringFixed(2)
		return
	}
	computedAt := stats.ComputedAt
	b.Size = stats.Size
	b.ObjectCount = stats.ObjectCount
	b.ClassAOperations = stats.ObjectCount
	b.ClassBOperations = stats.KeyCount
	b.StatsPartial = stats.Partial
	b.StatsComputedAt = &computedAt
	b.EstimatedMonthlyCost = EstimateMonthlyCost(b.Size, b.ClassAOperations, b.ClassBOperations).StringFixed(2)
}
