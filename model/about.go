package model

import (
	"strings"

	"gorm.io/gorm"
)

// AboutInfo is the single row describing the application. It is seeded at
// migration time and read-only from the API's point of view; edits happen
// administratively, directly on the row.
type AboutInfo struct {
	gorm.Model
	Name        string
	Description string `gorm:"type:text"`
	Features    string `gorm:"type:text"` // comma-separated, see SplitFeatures
	Version     string
}

// SplitFeatures splits the comma-separated feature list into a cleaned slice,
// trimming whitespace and skipping empty entries.
func SplitFeatures(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinFeatures joins feature strings into a single comma-separated value.
func JoinFeatures(a []string) string {
	for i := range a {
		a[i] = strings.TrimSpace(a[i])
	}
	return strings.Join(a, ",")
}

func defaultAboutInfo() *AboutInfo {
	return &AboutInfo{
		Name:        "Pour Your Mind",
		Description: "A platform to share your thoughts with the world, either anonymously or with your name.",
		Features: JoinFeatures([]string{
			"Share thoughts publicly",
			"Post anonymously or with your name",
			"Reply to others' thoughts",
			"View all thoughts in a feed",
		}),
		Version: "1.0.0",
	}
}

// seedAboutInfo inserts the default about row unless one already exists.
func (s *Store) seedAboutInfo() error {
	var count int64
	if err := s.db.Model(&AboutInfo{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.Create(defaultAboutInfo()).Error
}

// GetAboutInfo loads the singleton about row.
func (s *Store) GetAboutInfo() (*AboutInfo, error) {
	var info AboutInfo
	if err := s.db.Order("id ASC").First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}
