package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/kissan-dost/internal/domain/advisor"
)

func TestStaticSourceCompletesPartialTable(t *testing.T) {
	src := NewStaticSource(advisor.PriceTable{"wheat": {Price: 4300, Unit: "40kg", Trend: advisor.TrendUp}})
	table := src.Prices(context.Background())

	require.Empty(t, table.Missing())
	require.Equal(t, 4300, table["wheat"].Price)
	require.Equal(t, 8500, table["cotton"].Price)

	table["wheat"] = advisor.Quote{}
	require.Equal(t, 4300, src.Prices(context.Background())["wheat"].Price)
}

func TestBaselineMatchesReferenceTable(t *testing.T) {
	table := Baseline()
	require.Len(t, table, 5)
	require.Equal(t, advisor.Quote{Price: 4200, Unit: "40kg", Trend: advisor.TrendUp}, table["wheat"])
	require.Equal(t, advisor.Quote{Price: 2800, Unit: "40kg", Trend: advisor.TrendDown}, table["maize"])
}

func TestCompleteTable(t *testing.T) {
	now := time.Date(2024, 11, 2, 12, 0, 0, 0, time.UTC)
	fields := map[string]string{
		"wheat":     `{"price":4350,"unit":"40kg","trend":"up","updatedAt":"2024-11-02T08:00:00Z"}`,
		"cotton":    `{"price":8600,"unit":"40kg","trend":"sideways","updatedAt":"2024-11-02T08:00:00Z"}`,
		"rice":      `{"price":5900,"unit":"40kg","trend":"down","updatedAt":"2024-10-20T08:00:00Z"}`,
		"sugarcane": `not json`,
		"barley":    `{"price":1,"unit":"40kg","trend":"up","updatedAt":"2024-11-02T08:00:00Z"}`,
	}

	table, fallback := completeTable(Baseline(), fields, now, 24*time.Hour)

	require.Empty(t, table.Missing())
	require.Len(t, table, 5)
	require.Equal(t, 4350, table["wheat"].Price)
	require.Equal(t, 8500, table["cotton"].Price)
	require.Equal(t, 5800, table["rice"].Price)
	require.Equal(t, 350, table["sugarcane"].Price)
	require.ElementsMatch(t, []string{"cotton", "rice", "sugarcane", "maize"}, fallback)
}

func TestCompleteTableWithoutMaxAge(t *testing.T) {
	fields := map[string]string{
		"rice": `{"price":5900,"unit":"40kg","trend":"down"}`,
	}
	table, _ := completeTable(Baseline(), fields, time.Now(), 0)
	require.Equal(t, advisor.Quote{Price: 5900, Unit: "40kg", Trend: advisor.TrendDown}, table["rice"])
}

func TestValkeySourcePrices(t *testing.T) {
	now := time.Date(2024, 11, 2, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		fields    map[string]string
		err       error
		wantWheat int
	}{
		{
			name: "live entries overlay baseline",
			fields: map[string]string{
				"wheat": `{"price":4350,"unit":"40kg","trend":"up","updatedAt":"2024-11-02T08:00:00Z"}`,
			},
			wantWheat: 4350,
		},
		{name: "missing hash", err: valkey.Nil, wantWheat: 4200},
		{name: "connection error", err: errors.New("dial tcp: connection refused"), wantWheat: 4200},
		{name: "empty hash", fields: map[string]string{}, wantWheat: 4200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash := &stubHash{fields: tc.fields, err: tc.err}
			src := newTestValkeySource(hash, now)

			table := src.Prices(context.Background())

			require.Equal(t, "market:prices", hash.key)
			require.Empty(t, table.Missing())
			require.Len(t, table, 5)
			require.Equal(t, tc.wantWheat, table["wheat"].Price)
			require.Equal(t, 8500, table["cotton"].Price)
		})
	}
}

func TestValkeySourceReturnsCopyOfBaseline(t *testing.T) {
	src := newTestValkeySource(&stubHash{err: errors.New("timeout")}, time.Now())

	first := src.Prices(context.Background())
	first["wheat"] = advisor.Quote{}
	require.Equal(t, 4200, src.Prices(context.Background())["wheat"].Price)
}

func newTestValkeySource(hash hashReader, now time.Time) *ValkeySource {
	src := NewValkeySource(nil, "", 24*time.Hour, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	src.hash = hash
	src.now = func() time.Time { return now }
	return src
}

type stubHash struct {
	fields map[string]string
	err    error
	key    string
}

func (s *stubHash) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.key = key
	if s.err != nil {
		return nil, s.err
	}
	return s.fields, nil
}
