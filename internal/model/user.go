// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a local account.
//
// Accounts are created by signup (email + password) or by the first GitHub
// sign-in. The password is only ever held as a bcrypt hash; PasswordHash is
// excluded from JSON so `--json` output never leaks it.
//
// GitHubID is zero for accounts that have never linked a GitHub identity.
// The column is nullable in SQLite so the UNIQUE index ignores unlinked rows.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	AvatarURL        string     `json:"avatarUrl"`
	Bio              string     `json:"bio"`
	PasswordHash     string     `json:"-"`
	PasswordStrength string     `json:"passwordStrength"` // weak | medium | strong
	IsVerified       bool       `json:"isVerified"`
	GitHubID         int64      `json:"githubId,omitempty"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// ProfileUpdate is a partial update of the editable profile fields.
// A nil field is left untouched.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"fullName,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.Bio == nil &&
		p.AvatarURL == nil && p.Email == nil
}

// Apply copies the non-nil fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
