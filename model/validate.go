package model

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Bounds for submitted fields. The minimums match the product copy shown in
// the submission forms; the maximum keeps a single note from flooding the
// feed. Lengths are counted in runes, not bytes.
const (
	MinNoteContentLen  = 10
	MinReplyContentLen = 5
	MaxContentLen      = 5000
	MinAuthorNameLen   = 2
	MaxAuthorNameLen   = 100
)

// ValidationError reports which submitted fields were rejected and why.
// It is an expected error: handlers turn it into a 400 with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NoteInput carries the raw submitted fields of a note or reply before
// validation.
type NoteInput struct {
	Content     string `json:"content"      form:"content"`
	AuthorName  string `json:"author_name"  form:"author_name"`
	IsAnonymous bool   `json:"is_anonymous" form:"is_anonymous"`
}

// ValidateNoteInput checks a root note submission and returns the note ready
// to persist. Pure: nothing is written here; on failure the returned error
// lists every rejected field.
func ValidateNoteInput(in NoteInput) (*Note, *ValidationError) {
	return validateSubmission(in, MinNoteContentLen)
}

// ValidateReplyInput checks a reply submission. Parent existence is a store
// concern and is checked separately by the handler.
func ValidateReplyInput(in NoteInput) (*Note, *ValidationError) {
	return validateSubmission(in, MinReplyContentLen)
}

func validateSubmission(in NoteInput, minContent int) (*Note, *ValidationError) {
	verr := &ValidationError{Fields: map[string]string{}}

	content := strings.TrimSpace(in.Content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		verr.Fields["content"] = "content must not be empty"
	case n < minContent:
		verr.Fields["content"] = fmt.Sprintf("please share at least %d characters", minContent)
	case n > MaxContentLen:
		verr.Fields["content"] = fmt.Sprintf("content must not exceed %d characters", MaxContentLen)
	}

	name := strings.TrimSpace(in.AuthorName)
	if name != "" {
		switch n := utf8.RuneCountInString(name); {
		case n < MinAuthorNameLen:
			verr.Fields["author_name"] = fmt.Sprintf("author name must be at least %d characters long", MinAuthorNameLen)
		case n > MaxAuthorNameLen:
			verr.Fields["author_name"] = fmt.Sprintf("author name must not exceed %d characters", MaxAuthorNameLen)
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	note := &Note{Content: content, AuthorName: name, IsAnonymous: in.IsAnonymous}
	// A missing name always means anonymous, whatever the flag said.
	if name == "" {
		note.IsAnonymous = true
	}
	return note, nil
}
