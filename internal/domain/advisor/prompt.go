package advisor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yanqian/kissan-dost/internal/infra/llm/chatgpt"
)

// DefaultInstruction is the agricultural advisor system prompt. Replies must
// follow its three-section layout.
const DefaultInstruction = `You are Kissan Dost (کسان دوست), an expert Agricultural Advisor AI for Pakistani farmers.

MISSION: Eliminate information asymmetry, maximize yield, profitability, and climate resilience.

ALWAYS structure your response in EXACTLY this format with these three sections:

## I. فوری ہدایت (Immediate Action)
[Critical steps the farmer must take RIGHT NOW - be specific and urgent]

## II. تفصیلی تجویز (Detailed Recommendation)
[Numbered comprehensive advice including:
- Specific chemical names and dosages (e.g., Mancozeb 75% WP @ 2.5g/L)
- Organic alternatives
- Application timing and frequency
- Prevention measures]

## III. منڈی بھاؤ اور موسمی سیاق (Market & Climate Context)
[Include:
- Current estimated market rates for relevant crops in PKR
- Weather-related advice
- Best time to sell]

RULES:
- Respond in the SAME LANGUAGE as the query (Urdu/Punjabi/English/Sindhi)
- Be confident, direct, actionable - NO filler
- Include specific product names available in Pakistan
- Never ask clarifying questions - provide complete advice immediately
- Use local Pakistani agricultural context and available products`

const fixedImageMediaType = "image/jpeg"

// buildContext renders weather and prices into the text block placed ahead of
// the farmer's query. Output depends only on its inputs.
func buildContext(weather WeatherSnapshot, prices PriceTable) string {
	var b strings.Builder
	current, daily := splitForecast(weather)
	b.WriteString("Current Weather: ")
	b.WriteString(firstNonEmpty(current, "N/A"))
	b.WriteString("\n")
	if daily != "" {
		b.WriteString("Daily Forecast: ")
		b.WriteString(daily)
		b.WriteString("\n")
	}
	b.WriteString("Mandi Prices (PKR):")
	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q := prices[name]
		fmt.Fprintf(&b, "\n- %s: %d/%s (%s)", name, q.Price, q.Unit, q.Trend)
	}
	return b.String()
}

// splitForecast extracts the compacted "current" and "daily" blocks from an
// Open-Meteo document. Unparseable snapshots yield empty strings.
func splitForecast(weather WeatherSnapshot) (string, string) {
	if len(weather) == 0 {
		return "", ""
	}
	var doc struct {
		Current json.RawMessage `json:"current"`
		Daily   json.RawMessage `json:"daily"`
	}
	if err := json.Unmarshal(weather, &doc); err != nil {
		return "", ""
	}
	return compactJSON(doc.Current), compactJSON(doc.Daily)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// assemble emits the system instruction followed by one user message shaped
// for the query's modality.
func assemble(instruction, contextBlob string, q Query, honorMediaType bool) []chatgpt.Message {
	system := chatgpt.Message{Role: "system", Content: instruction}
	text := q.query()

	switch v := q.(type) {
	case ImageQuery:
		return []chatgpt.Message{
			system,
			{Role: "user", Parts: []chatgpt.ContentPart{
				{
					Type: chatgpt.PartTypeText,
					Text: fmt.Sprintf("Context:\n%s\n\nAnalyze this crop image and provide advice (%s): %s", contextBlob, text.Language, text.Text),
				},
				{
					Type:     chatgpt.PartTypeImageURL,
					ImageURL: dataURI(v.Image, honorMediaType),
				},
			}},
		}
	default:
		return []chatgpt.Message{
			system,
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nFarmer Query (%s): %s", contextBlob, text.Language, text.Text)},
		}
	}
}

// dataURI base64 encodes the image. The media type is image/jpeg unless
// honorMediaType is set, in which case the sniffed type wins, then the
// declared upload type.
func dataURI(img Image, honorMediaType bool) string {
	mediaType := fixedImageMediaType
	if honorMediaType {
		if detected := imageMediaType(mimetype.Detect(img.Data).String()); detected != "" {
			mediaType = detected
		} else if declared := imageMediaType(img.MediaType); declared != "" {
			mediaType = declared
		}
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func imageMediaType(raw string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(raw, ";", 2)[0]))
	if !strings.HasPrefix(mediaType, "image/") {
		return ""
	}
	return mediaType
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
