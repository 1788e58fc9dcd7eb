package models

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts only the two known role literals.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string { return string(r) }

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"                json:"id"`
	Username     string  `gorm:"size:50;not null;index"                  json:"username"`
	Email        string  `gorm:"size:100;not null;uniqueIndex"           json:"email"`
	PasswordHash *string `gorm:"size:100"                                json:"-"`
	Role         Role    `gorm:"type:varchar(10);not null;default:user" json:"role"`
}

// HasPassword is false for accounts that can only sign in through Google.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Post struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"                                json:"id"`
	Title   string `gorm:"size:50;not null"                                        json:"title"`
	Content string `gorm:"size:255;not null"                                       json:"content"`
	UserID  uint   `gorm:"not null;index"                                          json:"user_id"`
	Owner   *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
