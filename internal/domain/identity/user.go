package identity

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a login account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusLocked   UserStatus = "locked"
	UserStatusDisabled UserStatus = "disabled"
)

// bcryptCost is the work factor for password hashes
var bcryptCost = 12

// User is a login account. Users are global; membership in an
// organization is modelled by Member.
type User struct {
	shared.BaseAggregateRoot
	Email          string
	PasswordHash   string
	Status         UserStatus
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(email, password string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             normalized,
		PasswordHash:      hash,
		Status:            UserStatusActive,
	}, nil
}

// NormalizeEmail validates and lowercases an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Invalid email format")
	}
	return email, nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.IncrementVersion()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLoginSuccess clears failed attempts and stamps the login time
func (u *User) RecordLoginSuccess(now time.Time) {
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
	}
	u.IncrementVersion()
}

// RecordLoginFailure counts a failed attempt and locks the account once
// maxAttempts is reached. It returns true when the account became locked.
func (u *User) RecordLoginFailure(now time.Time, maxAttempts int, lockFor time.Duration) bool {
	u.FailedAttempts++
	u.IncrementVersion()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := now.Add(lockFor)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
		return true
	}
	return false
}

// IsLocked reports whether the lock is still in effect at now
func (u *User) IsLocked(now time.Time) bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || now.Before(*u.LockedUntil)
}

// CanLogin reports whether the account may authenticate at now
func (u *User) CanLogin(now time.Time) bool {
	return u.Status != UserStatusDisabled && !u.IsLocked(now)
}

// Disable permanently blocks sign-in
func (u *User) Disable() {
	u.Status = UserStatusDisabled
	u.IncrementVersion()
}

func hashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

// ValidatePassword enforces length and character class rules
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password cannot exceed 72 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password must contain letters and digits")
	}
	return nil
}
