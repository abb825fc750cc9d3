package models

import (
	"errors"
	"strings"
	"time"
)

// Strategy is a free-form markdown playbook.
type Strategy struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Content     string    `json:"content" yaml:"content"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

func (s *Strategy) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
