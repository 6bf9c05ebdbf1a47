package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/studydesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (c *Controller) register(ctx context.Context, cmd Register) (Outcome, error) {
	email := strings.TrimSpace(cmd.Email)
	if email == "" || cmd.Password == "" {
		return Unchanged, ErrInvalidCredentials
	}

	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		return Unchanged, fmt.Errorf("load users: %w", err)
	}
	if models.FindUser(users, email) >= 0 {
		return Unchanged, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), c.bcryptCost)
	if err != nil {
		return Unchanged, fmt.Errorf("hash password: %w", err)
	}

	u, err := c.addUser(ctx, email, string(hash))
	if err != nil {
		return Unchanged, err
	}
	c.log.Info("user registered", zap.String("email", email), zap.String("role", u.Role))

	c.loginSucceeded(ctx, u, true)
	return Applied, nil
}

// addUser appends a new record under the write lock. The collection is
// re-read there, since another session may have registered the same email
// while the password was being hashed.
func (c *Controller) addUser(ctx context.Context, email, hash string) (models.User, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("load users: %w", err)
	}
	if models.FindUser(users, email) >= 0 {
		return models.User{}, ErrEmailTaken
	}
	u := models.User{
		Email:    email,
		Password: hash,
		Role:     models.RoleStudent,
	}
	if len(users) == 0 {
		u.Role = models.RoleAdmin
		u.Primary = true
	}
	if err := c.repo.SaveUsers(ctx, append(users, u)); err != nil {
		return models.User{}, fmt.Errorf("save users: %w", err)
	}
	return u, nil
}

func (c *Controller) authenticate(ctx context.Context, cmd Authenticate) (Outcome, error) {
	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		return Unchanged, fmt.Errorf("load users: %w", err)
	}
	i := models.FindUser(users, strings.TrimSpace(cmd.Email))
	if i < 0 || users[i].Password == "" {
		return Unchanged, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[i].Password), []byte(cmd.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			c.log.Warn("stored password hash unusable", zap.String("email", users[i].Email), zap.Error(err))
		}
		return Unchanged, ErrInvalidCredentials
	}

	c.loginSucceeded(ctx, users[i], false)
	return Applied, nil
}

// loginSucceeded makes u the session's user and persists the session
// record. New users land on the profile editor.
func (c *Controller) loginSucceeded(ctx context.Context, u models.User, isNew bool) {
	s := sessionCopy(u)
	if err := c.repo.SaveCurrentUser(ctx, s); err != nil {
		c.log.Warn("session user not saved", zap.Error(err))
	}
	c.st.CurrentUser = &s

	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		c.log.Warn("users unreadable after login", zap.Error(err))
		users = nil
	}
	c.st.IsPrimaryAdmin = isPrimary(s, users)
	c.st.AllUsers = nil
	if s.IsAdmin() {
		c.st.AllUsers = users
	}

	c.clearSelections()
	if isNew {
		c.st.CurrentView = ViewEditProfile
	} else {
		c.st.CurrentView = ViewDashboard
	}
}

func (c *Controller) logout(ctx context.Context) Outcome {
	if err := c.repo.ClearCurrentUser(ctx); err != nil {
		c.log.Warn("session record not removed", zap.Error(err))
	}
	c.st.CurrentUser = nil
	c.st.AllUsers = nil
	c.st.IsPrimaryAdmin = false
	c.st.LastAttempt = nil
	c.clearSelections()
	c.st.CurrentView = ViewDashboard
	return Applied
}

// updateProfile copies the profile fields onto the stored record. A user
// missing from the collection (or an unreadable collection) only has the
// session copy updated; the collection never gains a record here.
func (c *Controller) updateProfile(ctx context.Context, cmd UpdateProfile) Outcome {
	cur := c.st.CurrentUser
	if cmd.User.Email != cur.Email {
		return Denied
	}

	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		c.log.Warn("users unreadable, profile kept in session only", zap.Error(err))
	}

	i := models.FindUser(users, cur.Email)
	rec := cur.Clone()
	if err == nil && i >= 0 {
		rec = users[i].Clone()
	}
	rec.FirstName = strings.TrimSpace(cmd.User.FirstName)
	rec.LastName = strings.TrimSpace(cmd.User.LastName)
	rec.BirthDate = cmd.User.BirthDate
	rec.Nationality = strings.TrimSpace(cmd.User.Nationality)
	rec.ProfilePicture = cmd.User.ProfilePicture

	switch {
	case err != nil:
	case i < 0:
		c.log.Warn("session user missing from collection, profile kept in session only", zap.String("email", cur.Email))
	default:
		updated := slices.Clone(users)
		updated[i] = rec
		if err := c.repo.SaveUsers(ctx, updated); err != nil {
			return c.saveFailed("users", err)
		}
		if rec.IsAdmin() {
			c.st.AllUsers = updated
		}
	}

	s := sessionCopy(rec)
	if err := c.repo.SaveCurrentUser(ctx, s); err != nil {
		c.log.Warn("session user not saved", zap.Error(err))
	}
	c.st.CurrentUser = &s
	c.st.CurrentView = ViewDashboard
	return Applied
}

// completeExam stamps the attempt and appends it to the user's history in
// the collection and the session record. The two writes are independent;
// if the second fails, Init reconciles the session from the collection.
// When the collection write fails the attempt is still shown for review but
// is not recorded anywhere, and the outcome says why.
func (c *Controller) completeExam(ctx context.Context, cmd CompleteExam) Outcome {
	at := cmd.Attempt
	now := c.now().UTC()
	at.Date = &now

	c.st.LastAttempt = &at
	c.st.CurrentView = ViewReview

	cur := c.st.CurrentUser
	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		c.log.Warn("users unreadable, attempt not recorded", zap.Error(err))
		return NotSaved
	}
	i := models.FindUser(users, cur.Email)
	if i < 0 {
		c.log.Warn("session user missing from collection, attempt not recorded", zap.String("email", cur.Email))
		return NotFound
	}

	updated := slices.Clone(users)
	rec := updated[i].Clone()
	rec.ExamHistory = append(rec.ExamHistory, at)
	updated[i] = rec
	if err := c.repo.SaveUsers(ctx, updated); err != nil {
		return c.saveFailed("users", err)
	}

	s := cur.Clone()
	s.ExamHistory = append([]models.ExamAttempt(nil), rec.ExamHistory...)
	if err := c.repo.SaveCurrentUser(ctx, s); err != nil {
		c.log.Warn("session user not saved", zap.Error(err))
	}
	c.st.CurrentUser = &s
	if s.IsAdmin() {
		c.st.AllUsers = updated
	}
	return Applied
}

// promoteUser is reserved for the primary admin, who must also still hold
// the admin role.
func (c *Controller) promoteUser(ctx context.Context, cmd PromoteUser) Outcome {
	if !c.st.IsPrimaryAdmin || !c.st.CurrentUser.IsAdmin() {
		return Denied
	}
	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		c.log.Warn("users unreadable, promotion skipped", zap.Error(err))
		return NotSaved
	}
	i := models.FindUser(users, cmd.Email)
	if i < 0 {
		return NotFound
	}
	if users[i].IsAdmin() {
		return Unchanged
	}
	updated := slices.Clone(users)
	updated[i].Role = models.RoleAdmin
	if err := c.repo.SaveUsers(ctx, updated); err != nil {
		return c.saveFailed("users", err)
	}
	c.log.Info("user promoted", zap.String("email", cmd.Email), zap.String("by", c.st.CurrentUser.Email))
	c.st.AllUsers = updated
	return Applied
}

func (c *Controller) selectStudent(cmd SelectStudent) Outcome {
	i := models.FindUser(c.st.AllUsers, cmd.Email)
	if i < 0 {
		return NotFound
	}
	s := sessionCopy(c.st.AllUsers[i])
	c.st.SelectedStudent = &s
	c.st.CurrentView = ViewStudentDetail
	return Applied
}
