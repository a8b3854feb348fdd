package post

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrValidation = errors.New("post validation failed")
)

// Attachment is the descriptor of the single optional file bound to a post.
// A post carries either all three fields or none.
type Attachment struct {
	FileName    string `json:"fileName"`
	FilePath    string `json:"filePath"`
	ContentType string `json:"fileType"`
}

type Post struct {
	ID         int64       `json:"id"`
	OwnerID    string      `json:"ownerId"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	CreatedBy  string      `json:"createdBy"`
	ModifiedAt time.Time   `json:"modifiedAt"`
	ModifiedBy string      `json:"modifiedBy"`
}

// Input is the validated title/content pair the transport hands to the
// service layer for both create and update.
type Input struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (in Input) Validate() error {
	title := strings.TrimSpace(in.Title)

	if title == "" {
		return fmt.Errorf("%w: title must not be blank", ErrValidation)
	}

	if utf8.RuneCountInString(in.Title) > 100 {
		return fmt.Errorf("%w: title must be at most 100 characters", ErrValidation)
	}

	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content must not be blank", ErrValidation)
	}

	return nil
}

type SearchKind string

const (
	KindAll     SearchKind = "all"
	KindTitle   SearchKind = "title"
	KindContent SearchKind = "content"
	KindOwner   SearchKind = "owner"
)

// ParseSearchKind maps a raw query value to a search kind, defaulting to all.
func ParseSearchKind(raw string) SearchKind {
	switch SearchKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindTitle:
		return KindTitle
	case KindContent:
		return KindContent
	case KindOwner:
		return KindOwner
	default:
		return KindAll
	}
}

type SearchFilter struct {
	Kind    SearchKind
	Keyword string
	Limit   int
	Offset  int
}

// Normalize clamps pagination and forces kind=all whenever the keyword is
// blank, regardless of what was requested.
func (f SearchFilter) Normalize() SearchFilter {
	if strings.TrimSpace(f.Keyword) == "" {
		f.Keyword = ""
		f.Kind = KindAll
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}

	if f.Limit > 100 {
		f.Limit = 100
	}

	if f.Offset < 0 {
		f.Offset = 0
	}

	return f
}

type Page struct {
	Items  []Post `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
