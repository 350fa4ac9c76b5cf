package model

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// NormalizeEmail lowercases and trims the email string
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// User is an optional registered account. Accounts are never required for
// posting; they only attach a stable identity to the session.
type User struct {
	gorm.Model
	Username    string `gorm:"uniqueIndex;not null"`
	Email       string `gorm:"index"` // always stored lowercase, may be empty
	Password    string `gorm:"not null"` // bcrypt hash
	LastLoginAt *time.Time
}

// Normalize email before saving
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// SetPassword hashes and stores the cleartext password.
func (u *User) SetPassword(cleartext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(cleartext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the cleartext matches the stored hash.
func (u *User) CheckPassword(cleartext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(cleartext)) == nil
}

// RegisterUser creates a new account. Returns ErrUsernameTaken when the name
// is already in use.
func (s *Store) RegisterUser(username, password, email string) (*User, error) {
	var count int64
	if err := s.db.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	u := &User{Username: username, Email: email}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// AuthenticateUser looks up the account and verifies the password. Callers
// cannot distinguish a missing user from a wrong password.
func (s *Store) AuthenticateUser(username, password string) (*User, error) {
	var u User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// GetUserByID loads a single user by primary key.
func (s *Store) GetUserByID(id uint) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(u *User) error {
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return s.db.Model(u).Update("last_login_at", now).Error
}
