package controller

import "github.com/dalemusser/studydesk/internal/domain/models"

// Command is an intent reported by a view.
type Command interface {
	command()
}

// Outcome tells the caller what a dispatched command did.
type Outcome int

const (
	Applied Outcome = iota
	Unchanged
	Denied
	NotFound
	Unconfirmed
	// TooLarge: the change would push a stored collection past the store's
	// value limit. No stored data changed.
	TooLarge
	// NotSaved: the store refused the write. No stored data changed.
	NotSaved
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Denied:
		return "denied"
	case NotFound:
		return "not_found"
	case Unconfirmed:
		return "unconfirmed"
	case TooLarge:
		return "too_large"
	case NotSaved:
		return "not_saved"
	default:
		return "unknown"
	}
}

// Auth intents.
type (
	Register struct {
		Email    string
		Password string
	}
	Authenticate struct {
		Email    string
		Password string
	}
	Logout struct{}
)

// Session-user intents. UpdateProfile copies only the profile fields of
// User onto the stored record.
type (
	UpdateProfile struct{ User models.User }
	CompleteExam  struct{ Attempt models.ExamAttempt }
)

// Admin intents.
type (
	PromoteUser  struct{ Email string }
	SaveModule   struct{ Module models.Module }
	DeleteModule struct {
		ID        int64
		Confirmed bool
	}
	SaveAnnouncement   struct{ Content string }
	DeleteAnnouncement struct{ ID string }
	SelectStudent      struct{ Email string }
	EditModule         struct{ ID int64 }
	NewModule          struct{}
)

// Navigation intents.
type (
	SelectModule  struct{ ID int64 }
	StartExam     struct{}
	GoToReview    struct{}
	EditProfile   struct{}
	GoToDashboard struct{}
)

func (Register) command()           {}
func (Authenticate) command()       {}
func (Logout) command()             {}
func (UpdateProfile) command()      {}
func (CompleteExam) command()       {}
func (PromoteUser) command()        {}
func (SaveModule) command()         {}
func (DeleteModule) command()       {}
func (SaveAnnouncement) command()   {}
func (DeleteAnnouncement) command() {}
func (SelectStudent) command()      {}
func (EditModule) command()         {}
func (NewModule) command()          {}
func (SelectModule) command()       {}
func (StartExam) command()          {}
func (GoToReview) command()         {}
func (EditProfile) command()        {}
func (GoToDashboard) command()      {}
