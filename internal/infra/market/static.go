package market

import (
	"context"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
)

// Baseline is the indicative mandi table served when no live source is configured.
func Baseline() advisor.PriceTable {
	return advisor.PriceTable{
		"wheat":     {Price: 4200, Unit: "40kg", Trend: advisor.TrendUp},
		"cotton":    {Price: 8500, Unit: "40kg", Trend: advisor.TrendStable},
		"rice":      {Price: 5800, Unit: "40kg", Trend: advisor.TrendUp},
		"sugarcane": {Price: 350, Unit: "40kg", Trend: advisor.TrendStable},
		"maize":     {Price: 2800, Unit: "40kg", Trend: advisor.TrendDown},
	}
}

// StaticSource serves an immutable in-process table.
type StaticSource struct {
	table advisor.PriceTable
}

// NewStaticSource copies table; a nil or incomplete table is completed from Baseline.
func NewStaticSource(table advisor.PriceTable) *StaticSource {
	merged := Baseline()
	for name, quote := range table {
		merged[name] = quote
	}
	return &StaticSource{table: merged}
}

// Prices implements advisor.PriceSource.
func (s *StaticSource) Prices(context.Context) advisor.PriceTable {
	return s.table.Clone()
}

var _ advisor.PriceSource = (*StaticSource)(nil)
