// Package models defines the domain types for the note store.
package models

import "time"

// Note is a named unit of plain-text content stored as one file.
type Note struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Operation kinds recorded in the activity journal.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Activity describes one successful mutation of the store.
// It never carries note content.
type Activity struct {
	ID       string    `json:"id"`
	Op       string    `json:"op"`
	Name     string    `json:"name"`
	Size     int       `json:"size"`
	Checksum string    `json:"checksum,omitempty"`
	At       time.Time `json:"at"`
}
