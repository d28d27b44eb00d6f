// Package memory holds the data carriers shared between the store adapter
// and the retrieval engine: stored conversation points and the collections
// that partition them.
package memory

// Payload is the metadata stored alongside a point's vector. Every field
// except Text may be absent; the aggregator applies fallbacks at render time.
type Payload struct {
	Text           string
	Timestamp      string // RFC3339, as written by the importer; may be empty
	Role           string
	Project        string
	ConversationID string
}

// Hit is one candidate returned by a single collection query. Score is the
// raw similarity until the decay scorer adjusts it.
type Hit struct {
	ID         string
	Score      float64
	Collection string
	Payload    Payload
}

// Collection is a queryable partition. Project is the label derived from the
// collection name by the registry; a point payload's explicit project field
// takes precedence over it at render time.
type Collection struct {
	Name    string
	Project string
}
