package result

import "time"

// MaxExcerptLen caps rendered excerpt length; longer texts get an ellipsis.
const MaxExcerptLen = 500

// UnknownRole is the fallback when a point carries no speaker role.
const UnknownRole = "unknown"

// Result is a single scored excerpt. Transient: constructed per request,
// never persisted. Scores are comparable only within one request's result
// set; decay-adjusted scores are not on the raw similarity scale.
type Result struct {
	id             string
	score          float64
	excerpt        string
	role           string
	timestamp      time.Time
	project        string
	conversationID string
	collection     string
}

// New creates a result, capping the excerpt at MaxExcerptLen characters.
func New(
	id string, score float64, text string,
	role string, timestamp time.Time,
	project, conversationID, collection string,
) Result {
	return Result{
		id:             id,
		score:          score,
		excerpt:        renderExcerpt(text),
		role:           role,
		timestamp:      timestamp,
		project:        project,
		conversationID: conversationID,
		collection:     collection,
	}
}

// ID returns the point identifier, unique only within its source collection.
func (r *Result) ID() string { return r.id }

// Score returns the (possibly decay-adjusted) relevance score.
func (r *Result) Score() float64 { return r.score }

// Excerpt returns the rendered excerpt text.
func (r *Result) Excerpt() string { return r.excerpt }

// Role returns the speaker role.
func (r *Result) Role() string { return r.role }

// Timestamp returns the point timestamp.
func (r *Result) Timestamp() time.Time { return r.timestamp }

// Project returns the project label.
func (r *Result) Project() string { return r.project }

// ConversationID returns the conversation identifier, may be empty.
func (r *Result) ConversationID() string { return r.conversationID }

// Collection returns the source collection name.
func (r *Result) Collection() string { return r.collection }

func renderExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxExcerptLen {
		return text
	}
	return string(runes[:MaxExcerptLen]) + "..."
}
