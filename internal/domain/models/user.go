// internal/domain/models/user.go
package models

import "strings"

// Roles a user can hold.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User is one account in the users collection. Email is the identity key and
// is compared exactly as stored (case-sensitive).
//
// Primary marks the primary admin: the first account ever registered. Only
// the primary admin may promote other users.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // bcrypt hash
	Role     string `json:"role"`               // admin | student
	Primary  bool   `json:"primary,omitempty"`

	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"` // YYYY-MM-DD as entered
	Nationality    string `json:"nationality,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"` // data URL

	// ExamHistory is append-only; insertion order is chronological.
	ExamHistory []ExamAttempt `json:"examHistory,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName is the first name if set, otherwise the local part of the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.FirstName) != "" {
		return u.FirstName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Clone returns a copy whose exam history can be appended to without
// touching the receiver's backing array.
func (u User) Clone() User {
	c := u
	if u.ExamHistory != nil {
		c.ExamHistory = make([]ExamAttempt, len(u.ExamHistory))
		copy(c.ExamHistory, u.ExamHistory)
	}
	return c
}

// FindUser returns the index of the user with the given email, or -1.
func FindUser(users []User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}
