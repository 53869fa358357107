package models

// Document is the raw extracted text of an uploaded file before processing.
type Document struct {
	Source   string
	Content  string
	Metadata map[string]interface{}
}

// ChunkRecord is the unit persisted in the vector store. Records are
// immutable once written; re-ingesting the same file produces new records
// with fresh IDs instead of touching existing rows.
type ChunkRecord struct {
	ID         string
	Source     string
	Content    string
	ChunkIndex int
	Embedding  []float32
	Metadata   map[string]interface{}
}

// ScoredChunk is a retrieved record together with its cosine similarity score.
type ScoredChunk struct {
	ChunkRecord
	Score float32
}

// AuditEntry is one line of the ingestion report, appended after every
// successful ingestion.
type AuditEntry struct {
	File    string `json:"file"`
	Summary string `json:"summary"`
}
