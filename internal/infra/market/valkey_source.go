package market

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
)

const defaultKey = "market:prices"

// liveQuote is the JSON stored per commodity field of the prices hash.
type liveQuote struct {
	Price     int       `json:"price"`
	Unit      string    `json:"unit"`
	Trend     string    `json:"trend"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// hashReader is the slice of Valkey the source needs.
type hashReader interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

type valkeyHash struct {
	client valkey.Client
}

func (h valkeyHash) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return h.client.Do(ctx, h.client.B().Hgetall().Key(key).Build()).AsStrMap()
}

// ValkeySource reads a live mandi table from a Valkey hash and completes it
// from a baseline so callers always see every commodity.
type ValkeySource struct {
	hash     hashReader
	key      string
	maxAge   time.Duration
	baseline advisor.PriceTable
	logger   *slog.Logger
	now      func() time.Time
}

// NewValkeySource constructs a source backed by Valkey.
func NewValkeySource(client valkey.Client, key string, maxAge time.Duration, baseline advisor.PriceTable, logger *slog.Logger) *ValkeySource {
	if key == "" {
		key = defaultKey
	}
	return &ValkeySource{
		hash:     valkeyHash{client: client},
		key:      key,
		maxAge:   maxAge,
		baseline: NewStaticSource(baseline).table,
		logger:   logger.With("component", "market.valkey"),
		now:      time.Now,
	}
}

// Prices implements advisor.PriceSource.
func (s *ValkeySource) Prices(ctx context.Context) advisor.PriceTable {
	fields, err := s.hash.HGetAll(ctx, s.key)
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			s.logger.Warn("live prices unavailable, serving baseline", "key", s.key, "error", err)
		}
		return s.baseline.Clone()
	}
	table, stale := completeTable(s.baseline, fields, s.now(), s.maxAge)
	if len(stale) > 0 {
		s.logger.Info("live prices incomplete, baseline used", "commodities", stale)
	}
	return table
}

// completeTable overlays valid, fresh live quotes onto the baseline. It returns
// the commodities that fell back to the baseline.
func completeTable(baseline advisor.PriceTable, fields map[string]string, now time.Time, maxAge time.Duration) (advisor.PriceTable, []string) {
	out := baseline.Clone()
	var fallback []string
	for _, name := range advisor.Commodities {
		raw, ok := fields[name]
		if !ok {
			fallback = append(fallback, name)
			continue
		}
		var quote liveQuote
		if err := json.Unmarshal([]byte(raw), &quote); err != nil {
			fallback = append(fallback, name)
			continue
		}
		trend := advisor.Trend(quote.Trend)
		if quote.Price <= 0 || quote.Unit == "" || !trend.Valid() {
			fallback = append(fallback, name)
			continue
		}
		if maxAge > 0 && (quote.UpdatedAt.IsZero() || now.Sub(quote.UpdatedAt) > maxAge) {
			fallback = append(fallback, name)
			continue
		}
		out[name] = advisor.Quote{Price: quote.Price, Unit: quote.Unit, Trend: trend}
	}
	return out, fallback
}

var _ advisor.PriceSource = (*ValkeySource)(nil)
