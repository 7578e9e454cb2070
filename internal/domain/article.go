package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// WordsPerMinute is the assumed reading speed for ReadingTime.
	WordsPerMinute = 200

	// ExcerptWordCount is the number of body words used when no meta
	// description is set.
	ExcerptWordCount = 30

	// MetaDescriptionWordCount is the number of body words used to
	// auto-generate a missing meta description.
	MetaDescriptionWordCount = 25

	// MetaDescriptionMaxLength bounds the stored meta description.
	MetaDescriptionMaxLength = 160
)

// Article represents an article entity in the system.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	ImagePath       *string   `json:"image_path,omitempty"`
	AuthorID        string    `json:"author_id"`
	Published       bool      `json:"is_published"`
	MetaDescription string    `json:"meta_description,omitempty"`
	ViewsCount      int       `json:"views_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasImage reports whether the article has an attached image.
func (a *Article) HasImage() bool {
	return a.ImagePath != nil && *a.ImagePath != ""
}

// ReadingTime estimates the reading time assuming 200 words per minute,
// floored at one minute. Half minutes round to the nearest even value,
// so 500 words is 2 minutes.
func (a *Article) ReadingTime() string {
	words := len(strings.Fields(a.Body))
	minutes := int(math.RoundToEven(float64(words) / WordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min de lectura", minutes)
}

// Excerpt returns the meta description when present, otherwise the first
// 30 words of the body with an ellipsis marker if truncated.
func (a *Article) Excerpt() string {
	if a.MetaDescription != "" {
		return a.MetaDescription
	}
	words := strings.Fields(a.Body)
	if len(words) <= ExcerptWordCount {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:ExcerptWordCount], " ") + "..."
}

// AutoMetaDescription builds a meta description from the first 25 words
// of the body, truncated so the result always fits the stored maximum.
// Used when an article is created without one.
func AutoMetaDescription(body string) string {
	words := strings.Fields(body)
	if len(words) > MetaDescriptionWordCount {
		words = words[:MetaDescriptionWordCount]
	}
	desc := strings.Join(words, " ")
	if r := []rune(desc); len(r) > MetaDescriptionMaxLength-3 {
		desc = strings.TrimSpace(string(r[:MetaDescriptionMaxLength-3]))
	}
	return desc + "..."
}

// CanEdit reports whether the user may edit this article.
func (a *Article) CanEdit(u *User) bool {
	return u != nil && (u.ID == a.AuthorID || u.IsStaff())
}

// CanDelete reports whether the user may delete this article.
func (a *Article) CanDelete(u *User) bool {
	return a.CanEdit(u)
}
