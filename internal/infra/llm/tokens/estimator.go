package tokens

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/kissan-dost/internal/infra/llm/chatgpt"
)

const defaultEncoding = "cl100k_base"

// perMessageOverhead approximates the role/separator tokens the chat format adds.
const perMessageOverhead = 4

// Estimator approximates token counts when the provider omits usage data.
type Estimator struct {
	encoding string
	logger   *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewEstimator builds a lazily initialized estimator.
func NewEstimator(logger *slog.Logger) *Estimator {
	return &Estimator{encoding: defaultEncoding, logger: logger.With("component", "llm.tokens")}
}

// Estimate counts prompt plus completion tokens. Image parts are not counted.
// It returns 0 when the encoding cannot be loaded.
func (e *Estimator) Estimate(messages []chatgpt.Message, completion string) int {
	e.once.Do(func() {
		e.enc, e.err = tiktoken.GetEncoding(e.encoding)
		if e.err != nil {
			e.logger.Warn("token encoding unavailable", "encoding", e.encoding, "error", e.err)
		}
	})
	if e.err != nil || e.enc == nil {
		return 0
	}
	total := len(e.enc.Encode(completion, nil, nil))
	for _, msg := range messages {
		total += perMessageOverhead
		total += len(e.enc.Encode(msg.Content, nil, nil))
		for _, part := range msg.Parts {
			if part.Type == chatgpt.PartTypeText {
				total += len(e.enc.Encode(part.Text, nil, nil))
			}
		}
	}
	return total
}
