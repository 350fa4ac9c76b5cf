package model

import (
	"strings"

	"gorm.io/gorm"
)

// AnonymousAuthor is the fixed placeholder shown for anonymous notes.
const AnonymousAuthor = "Anonymous"

// Note is a single shared thought. A Note with a nil ParentID is a root note
// and appears in the public feed; a Note with ParentID set is a reply to that
// root note. ParentID is assigned once at creation and never changes.
//
// AuthorName may be stored even for anonymous notes (a name can be supplied
// but hidden); display resolution goes through DisplayAuthor.
type Note struct {
	gorm.Model
	Content     string `json:"content"      form:"content"      gorm:"type:text;not null"`
	AuthorName  string `json:"author_name"  form:"author_name"  gorm:"size:100"`
	IsAnonymous bool   `json:"is_anonymous" form:"is_anonymous"`
	ParentID    *uint  `json:"parent_id"    form:"-"            gorm:"index"`
}

// DisplayAuthor resolves the name to show next to the note. Anonymous notes
// and notes without a stored name both resolve to the placeholder.
func (n *Note) DisplayAuthor() string {
	if n.IsAnonymous || strings.TrimSpace(n.AuthorName) == "" {
		return AnonymousAuthor
	}
	return n.AuthorName
}

// IsReply reports whether this note was created as a reply.
func (n *Note) IsReply() bool { return n.ParentID != nil }

// -----------------------
// Database methods
// -----------------------

// CreateNote persists a note as a single atomic insert. Validation has
// already happened by the time this is called.
func (s *Store) CreateNote(n *Note) error {
	return s.db.Create(n).Error
}

// GetNoteByID loads a single note. Returns gorm.ErrRecordNotFound when the
// id does not exist.
func (s *Store) GetNoteByID(id uint) (*Note, error) {
	var n Note
	if err := s.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// Feed paging bounds. The default matches the frontend page size.
const (
	DefaultPerPage = 8
	MaxPerPage     = 50
)

// NotePage is one page of the root-note feed.
type NotePage struct {
	Notes       []Note
	TotalCount  int64
	TotalPages  int
	CurrentPage int
	PerPage     int
}

// HasNext reports whether a later page exists.
func (p *NotePage) HasNext() bool { return p.CurrentPage < p.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (p *NotePage) HasPrevious() bool { return p.CurrentPage > 1 }

// ListRootNotes returns one page of root notes (parent IS NULL), newest
// first, ties broken by id so the ordering is deterministic. Out-of-range
// pages clamp to the nearest valid page rather than failing.
func (s *Store) ListRootNotes(page, perPage int) (*NotePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	var total int64
	if err := s.db.Model(&Note{}).Where("parent_id IS NULL").Count(&total).Error; err != nil {
		return nil, err
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var notes []Note
	err := s.db.
		Where("parent_id IS NULL").
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return &NotePage{
		Notes:       notes,
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

// ListReplies returns all replies to a note, oldest first.
func (s *Store) ListReplies(noteID uint) ([]Note, error) {
	var replies []Note
	err := s.db.
		Where("parent_id = ?", noteID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

// CountReplies recomputes the reply count from current child rows. The count
// is never stored on the note itself.
func (s *Store) CountReplies(noteID uint) (int64, error) {
	var n int64
	err := s.db.Model(&Note{}).Where("parent_id = ?", noteID).Count(&n).Error
	return n, err
}

// ReplyCounts returns reply counts for a batch of notes in one query, so the
// feed does not issue a COUNT per row.
func (s *Store) ReplyCounts(ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		ParentID uint
		N        int64
	}
	err := s.db.Model(&Note{}).
		Select("parent_id, COUNT(*) AS n").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ParentID] = r.N
	}
	return counts, nil
}
