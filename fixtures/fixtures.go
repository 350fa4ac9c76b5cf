// Package fixtures provides shared test helpers: throwaway stores, seed data
// and builders for notes and users.
package fixtures

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pourmind/pym/model"
)

// NewTestStore opens a fresh SQLite store in the test's temp directory,
// migrated and seeded with the about singleton.
func NewTestStore(t *testing.T) *model.Store {
	t.Helper()
	cfg := &model.Config{
		Mode:      "test",
		Port:      8000,
		SecretKey: "test-secret",
	}
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("cannot open test database: %v", err)
	}
	store := model.NewStore(db, cfg)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("cannot migrate test database: %v", err)
	}
	return store
}

// TestData holds the records created by SeedTestData.
type TestData struct {
	User *model.User
	Note *model.Note
}

// SeedTestData creates one registered user and one root note.
func SeedTestData(t *testing.T, store *model.Store) *TestData {
	t.Helper()
	user, err := store.RegisterUser("jane", "correct horse battery staple", "jane@example.com")
	if err != nil {
		t.Fatalf("cannot seed user: %v", err)
	}
	note := Note(
		WithContent("The first thought in the seed data."),
		WithAuthorName("Jane"),
	)
	if err := store.CreateNote(note); err != nil {
		t.Fatalf("cannot seed note: %v", err)
	}
	return &TestData{User: user, Note: note}
}

// NoteOption mutates a note under construction.
type NoteOption func(*model.Note)

// Note builds a valid anonymous root note; options adjust it.
func Note(opts ...NoteOption) *model.Note {
	n := &model.Note{
		Content:     "Just a thought long enough to pass validation.",
		IsAnonymous: true,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func WithContent(content string) NoteOption {
	return func(n *model.Note) { n.Content = content }
}

// WithAuthorName sets a visible author; the note is no longer anonymous.
func WithAuthorName(name string) NoteOption {
	return func(n *model.Note) {
		n.AuthorName = name
		n.IsAnonymous = false
	}
}

// WithHiddenAuthorName stores a name but keeps the note anonymous.
func WithHiddenAuthorName(name string) NoteOption {
	return func(n *model.Note) {
		n.AuthorName = name
		n.IsAnonymous = true
	}
}

func ReplyTo(parentID uint) NoteOption {
	return func(n *model.Note) { n.ParentID = &parentID }
}

// WithCreatedAt pins the creation timestamp, for ordering tests.
func WithCreatedAt(ts time.Time) NoteOption {
	return func(n *model.Note) { n.CreatedAt = ts }
}
