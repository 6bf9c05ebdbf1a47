package controller

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Dispatch applies cmd to the state. Errors are returned only for failed
// sign-in or registration and for commands that need a signed-in user;
// storage failures are logged and never surface here.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	if rewritesShared(cmd) {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
	}
	c.refresh(ctx)

	switch cmd := cmd.(type) {
	case Register:
		return c.register(ctx, cmd)
	case Authenticate:
		return c.authenticate(ctx, cmd)
	}

	if c.st.CurrentUser == nil {
		return Denied, ErrNotSignedIn
	}

	var out Outcome
	switch cmd := cmd.(type) {
	case Logout:
		out = c.logout(ctx)
	case UpdateProfile:
		out = c.updateProfile(ctx, cmd)
	case CompleteExam:
		out = c.completeExam(ctx, cmd)

	case PromoteUser:
		out = c.promoteUser(ctx, cmd)
	case SaveModule:
		out = c.adminOnly(func() Outcome { return c.saveModule(ctx, cmd) })
	case DeleteModule:
		out = c.adminOnly(func() Outcome { return c.deleteModule(ctx, cmd) })
	case SaveAnnouncement:
		out = c.adminOnly(func() Outcome { return c.saveAnnouncement(ctx, cmd) })
	case DeleteAnnouncement:
		out = c.adminOnly(func() Outcome { return c.deleteAnnouncement(ctx, cmd) })
	case SelectStudent:
		out = c.adminOnly(func() Outcome { return c.selectStudent(cmd) })
	case EditModule:
		out = c.adminOnly(func() Outcome { return c.editModule(cmd) })
	case NewModule:
		out = c.adminOnly(func() Outcome {
			c.st.ModuleToEdit = nil
			c.st.CurrentView = ViewEditModule
			return Applied
		})

	case SelectModule:
		out = c.selectModule(cmd)
	case StartExam:
		c.st.CurrentView = ViewExam
		out = Applied
	case GoToReview:
		if c.st.LastAttempt == nil {
			out = Unchanged
			break
		}
		c.st.CurrentView = ViewReview
		out = Applied
	case EditProfile:
		c.st.CurrentView = ViewEditProfile
		out = Applied
	case GoToDashboard:
		c.clearSelections()
		c.st.CurrentView = ViewDashboard
		out = Applied

	default:
		return Unchanged, fmt.Errorf("unknown command %T", cmd)
	}

	if out == Denied {
		c.log.Info("command denied",
			zap.String("command", fmt.Sprintf("%T", cmd)),
			zap.String("email", c.st.CurrentUser.Email))
	}
	return out, nil
}

// rewritesShared reports whether cmd may save a shared collection. Register
// takes the write lock itself, after hashing.
func rewritesShared(cmd Command) bool {
	switch cmd.(type) {
	case UpdateProfile, CompleteExam, PromoteUser,
		SaveModule, DeleteModule, SaveAnnouncement, DeleteAnnouncement:
		return true
	}
	return false
}

func (c *Controller) adminOnly(fn func() Outcome) Outcome {
	if !c.st.CurrentUser.IsAdmin() {
		return Denied
	}
	return fn()
}

// refresh re-reads the shared collections so changes made by other
// sessions are visible. Unreadable values keep the in-memory copy.
func (c *Controller) refresh(ctx context.Context) {
	if !c.st.Ready {
		return
	}
	if mods, ok, err := c.repo.LoadModules(ctx); err == nil && ok {
		c.st.Modules = mods
	}
	if anns, ok, err := c.repo.LoadAnnouncements(ctx); err == nil && ok {
		c.st.Announcements = anns
	}
	if c.st.CurrentUser != nil && c.st.CurrentUser.IsAdmin() {
		if users, ok, err := c.repo.LoadUsers(ctx); err == nil && ok {
			c.st.AllUsers = users
		}
	}
}

func (c *Controller) clearSelections() {
	c.st.SelectedModule = nil
	c.st.SelectedStudent = nil
	c.st.ModuleToEdit = nil
}
