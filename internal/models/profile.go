package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

type Profile struct {
	ID         string
	Name       string
	Photo      string
	Links      []string
	Categories []string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// HasCategory reports whether the profile carries the exact category.
func (p Profile) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ProfileDocument is the wire shape of a profile. The "_id" key mirrors
// "id" for browser clients that key cards on it.
type ProfileDocument struct {
	LegacyID   string     `json:"_id"`
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Photo      string     `json:"photo"`
	Links      []string   `json:"links"`
	Categories []string   `json:"categories"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func (p Profile) Document() ProfileDocument {
	links := p.Links
	if links == nil {
		links = []string{}
	}
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	return ProfileDocument{
		LegacyID:   p.ID,
		ID:         p.ID,
		Name:       p.Name,
		Photo:      p.Photo,
		Links:      links,
		Categories: categories,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (d ProfileDocument) Profile() Profile {
	id := d.ID
	if id == "" {
		id = d.LegacyID
	}
	return Profile{
		ID:         id,
		Name:       d.Name,
		Photo:      d.Photo,
		Links:      d.Links,
		Categories: d.Categories,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

var errStringList = errors.New("expected a string or an array of strings")

// StringList decodes either a JSON string or an array of strings. A lone
// string becomes a one-element list; null leaves the list nil.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return errStringList
		}
		if items == nil {
			items = []string{}
		}
		*l = items
		return nil
	default:
		return errStringList
	}
}

// Present reports whether the field was supplied at all. An explicit empty
// array counts as supplied.
func (l StringList) Present() bool {
	return l != nil
}
