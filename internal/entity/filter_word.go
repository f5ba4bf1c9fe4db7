package entity

import "time"

// FilterWord suppresses announcement of items whose name contains Word.
type FilterWord struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word"`
	CreatedAt time.Time `json:"created_at"`
}
