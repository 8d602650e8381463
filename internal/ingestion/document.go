// Package ingestion loads job descriptions, resumes and company context from files or
// URLs and normalizes them into plain text for the panel.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrEmpty is returned when a source yields no text after cleaning
var ErrEmpty = errors.New("document is empty")

// Document is one normalized input
type Document struct {
	// Source is the file path or URL the text came from
	Source   string    `json:"source"`
	Text     string    `json:"-"`
	Hash     string    `json:"hash"`
	Platform string    `json:"platform,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

func newDocument(source, text string) *Document {
	return &Document{
		Source:   source,
		Text:     text,
		Hash:     Hash(text),
		LoadedAt: time.Now().UTC(),
	}
}

// Hash returns the hex SHA-256 of text. Identical inputs share a hash, which lets
// stored runs be matched to the exact resume and posting they evaluated.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
