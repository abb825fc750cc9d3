package models

import (
	"errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type JournalEntry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims text fields and reduces tags to a lower-case,
// de-duplicated list in first-seen order.
func (e *JournalEntry) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Content = strings.TrimSpace(e.Content)
	e.Date = strings.TrimSpace(e.Date)

	seen := make(map[string]bool, len(e.Tags))
	tags := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	e.Tags = tags
}

func (e *JournalEntry) Validate() error {
	if e.Title == "" {
		return errors.New("title is required")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return errors.New("invalid date format, expected YYYY-MM-DD")
	}
	return nil
}
