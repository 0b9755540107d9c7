package model

import "time"

// Document is the unit of extraction input: raw text plus whatever
// structural metadata ingestion captured (title, section headings, source).
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
