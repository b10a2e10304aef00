package models

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"

	avatarBaseURL = "https://avatar.iran.liara.run/public"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"_id"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"`
	Gender         string    `gorm:"type:varchar(10);not null" json:"gender"`
	ProfilePicture string    `gorm:"type:varchar(512)" json:"profilePicture"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`

	Transactions      []Transaction      `gorm:"foreignKey:UserID" json:"-"`
	BlacklistedTokens []BlacklistedToken `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	if u.ProfilePicture == "" {
		u.ProfilePicture = ProfilePictureURL(u.Username, u.Gender)
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}

	if !usernameRegex.MatchString(u.Username) {
		return errors.New("invalid username format")
	}

	if u.Name == "" {
		return errors.New("name is required")
	}

	if u.Email != "" && !emailRegex.MatchString(u.Email) {
		return errors.New("invalid email format")
	}

	if !IsValidGender(u.Gender) {
		return fmt.Errorf("invalid gender: %s", u.Gender)
	}

	return nil
}

func (u *User) TableName() string {
	return "users"
}

func IsValidGender(gender string) bool {
	return gender == GenderMale || gender == GenderFemale
}

// ProfilePictureURL derives the avatar for a new account from its username
// and gender.
func ProfilePictureURL(username, gender string) string {
	kind := "boy"
	if gender == GenderFemale {
		kind = "girl"
	}
	return fmt.Sprintf("%s/%s?username=%s", avatarBaseURL, kind, url.QueryEscape(username))
}
