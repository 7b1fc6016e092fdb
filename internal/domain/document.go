package domain

import "time"

// Session stage/state constants
const (
	SessionStageUpload  = "UPLOAD"
	SessionStateReading = "READING"
)

// Metadata keys carried on every stored chunk
const (
	MetadataKeySessionID = "session_id"
	MetadataKeySource    = "source"
)

// Session represents a document/conversation scope keyed by a
// client-supplied id
type Session struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	State     string    `json:"state"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded span of source text tagged with the session it
// belongs to. Immutable once created; owned by the vector store after
// insertion.
type Chunk struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	SessionID string `json:"session_id"`
}

// ScoredChunk is a retrieved chunk with its raw similarity score.
// Scores follow the cosine convention in [-1, 1].
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Page is a fetched document before chunking
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// WikiCredentials holds the access tuple for a Confluence-style wiki,
// stored per session at ingest time and reused by the summarizer
type WikiCredentials struct {
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Username string `json:"username"`
	PageID   string `json:"page_id"`
}
