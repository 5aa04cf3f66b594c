// Package auth handles admin accounts, sessions, tokens and passkeys.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adway7103/broker-demo/internal/apperr"
)

// RoleAdmin is the only role the back-office knows.
const RoleAdmin = "ADMIN"

const bcryptCost = 12

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "Invalid credentials")
	// ErrUserExists is returned when creating a user whose email is taken.
	ErrUserExists = apperr.New(apperr.CodeConflict, "User already exists")
	// ErrUserNotFound is returned when no user has the requested email.
	ErrUserNotFound = apperr.New(apperr.CodeNotFound, "User not found")
)

// User is a back-office account.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `json:"name"`
	Role         string    `gorm:"type:varchar(16);not null;default:ADMIN" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserStore manages users.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store.
func NewUserStore(gdb *gorm.DB) *UserStore {
	return &UserStore{db: gdb}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds a user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, email, password, name, role string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("Email and password are required")
	}
	if role == "" {
		role = RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{Email: email, PasswordHash: string(hash), Name: strings.TrimSpace(name), Role: role}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return fmt.Errorf("checking existing user: %w", err)
		}
		if n > 0 {
			return ErrUserExists
		}
		if err := tx.Create(u).Error; err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email and password pair.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByEmail returns a user by email, ignoring case.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).First(&u, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// List returns all users ordered by email.
func (s *UserStore) List(ctx context.Context) ([]*User, error) {
	users := []*User{}
	if err := s.db.WithContext(ctx).Order("email").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Emails returns every user email. Passkey login uses it to resolve the
// user behind a discoverable credential.
func (s *UserStore) Emails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := s.db.WithContext(ctx).Model(&User{}).Order("email").Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	return emails, nil
}

// SetPassword replaces a user's password.
func (s *UserStore) SetPassword(ctx context.Context, email, password string) error {
	if password == "" {
		return apperr.Invalid("Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", normalizeEmail(email)).
		Update("password_hash", string(hash))
	if result.Error != nil {
		return fmt.Errorf("updating password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the number of users.
func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
