package advisor

import (
	"encoding/json"
	"time"
)

// Reference point used when the caller omits coordinates (Lahore).
const (
	DefaultLatitude  = 31.5204
	DefaultLongitude = 74.3587
	DefaultLanguage  = "ur"
)

// Request captures one inbound advisory call.
type Request struct {
	Query     string
	Language  string
	Image     *Image
	Latitude  *float64
	Longitude *float64
}

// Image is an uploaded attachment with its declared media type.
type Image struct {
	Data      []byte
	MediaType string
}

// WeatherSnapshot is the provider-native forecast document. Nil means the
// provider could not be reached.
type WeatherSnapshot = json.RawMessage

// Trend describes the recent direction of a commodity price.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Valid reports whether t is one of the known trends.
func (t Trend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// Quote is the indicative mandi price of one commodity in PKR.
type Quote struct {
	Price int    `json:"price"`
	Unit  string `json:"unit"`
	Trend Trend  `json:"trend"`
}

// PriceTable maps commodity name to its quote. A table handed to the
// orchestrator always carries every commodity in Commodities.
type PriceTable map[string]Quote

// Commodities lists the commodities every PriceTable must carry.
var Commodities = []string{"wheat", "cotton", "rice", "sugarcane", "maize"}

// Missing returns the required commodities absent from the table.
func (p PriceTable) Missing() []string {
	var missing []string
	for _, name := range Commodities {
		if _, ok := p[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Clone returns a copy safe to hand to callers.
func (p PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Response is serialized back to API consumers.
//
// LatencyMS carries the provider's total token count, not a duration; the
// field keeps its historical name for client compatibility. ElapsedMS is the
// measured wall-clock time of the pipeline.
type Response struct {
	Response  string          `json:"response"`
	Weather   WeatherSnapshot `json:"weather"`
	Prices    PriceTable      `json:"prices"`
	Model     string          `json:"model"`
	LatencyMS int             `json:"latency_ms"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// Config wires runtime dependencies for the advisor domain.
type Config struct {
	TextModel      string
	VisionModel    string
	Temperature    float32
	MaxTokens      int
	WeatherTimeout time.Duration
	LLMTimeout     time.Duration
	// HonorImageMediaType sniffs the attachment and uses its real media type in
	// the data URI instead of the fixed image/jpeg.
	HonorImageMediaType bool
}
