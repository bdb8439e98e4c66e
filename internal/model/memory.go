// Package model defines the core memory and pattern data types.
package model

import "time"

// MemoryContent is the personal content a pattern is derived from.
// Empty fields are treated as absent.
type MemoryContent struct {
	Title  string   `json:"title,omitempty"`
	Body   string   `json:"body,omitempty"`
	Images [][]byte `json:"images,omitempty"`
}

// IsEmpty reports whether no field carries content.
func (m MemoryContent) IsEmpty() bool {
	if m.Title != "" || m.Body != "" {
		return false
	}
	for _, img := range m.Images {
		if len(img) > 0 {
			return false
		}
	}
	return true
}

// SavedPattern is a persisted pattern record together with the memory it
// was generated from.
type SavedPattern struct {
	ID         string        `json:"id"`
	MemoryID   string        `json:"memory_id"`
	Version    int           `json:"version"`
	Supersedes string        `json:"supersedes,omitempty"`
	Memory     MemoryContent `json:"memory"`
	Record     PatternRecord `json:"record"`
	CreatedAt  time.Time     `json:"created_at"`
	DeletedAt  *time.Time    `json:"deleted_at,omitempty"`
}
