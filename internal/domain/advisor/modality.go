package advisor

// Modality tells whether a query carries an image.
type Modality int

const (
	ModalityText Modality = iota
	ModalityVision
)

func (m Modality) String() string {
	if m == ModalityVision {
		return "vision"
	}
	return "text"
}

// Query is a request resolved to its modality: either TextQuery or ImageQuery.
type Query interface {
	Modality() Modality
	query() TextQuery
}

// TextQuery is a text-only farmer question.
type TextQuery struct {
	Text     string
	Language string
}

// Modality implements Query.
func (TextQuery) Modality() Modality { return ModalityText }

func (q TextQuery) query() TextQuery { return q }

// ImageQuery is a question accompanied by a non-empty crop image.
type ImageQuery struct {
	TextQuery
	Image Image
}

// Modality implements Query.
func (ImageQuery) Modality() Modality { return ModalityVision }

// Resolve decides the modality once at pipeline entry. A missing or zero-byte
// attachment resolves to a TextQuery.
func Resolve(req Request) Query {
	text := TextQuery{Text: req.Query, Language: req.Language}
	if req.Image == nil || len(req.Image.Data) == 0 {
		return text
	}
	return ImageQuery{TextQuery: text, Image: *req.Image}
}

// modelFor selects the model identifier for the resolved query.
func (c Config) modelFor(q Query) string {
	if q.Modality() == ModalityVision {
		return c.VisionModel
	}
	return c.TextModel
}
