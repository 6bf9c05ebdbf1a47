// Package shared holds the request plumbing common to every feature: finding
// the caller's session in the hub and finishing an intent.
package shared

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
)

// ErrNoSession is returned when the request did not pass through
// auth.LoadSession.
var ErrNoSession = errors.New("request has no session id")

// WithSession runs fn on the caller's session while holding its lock.
func WithSession(hub *sessionhub.Hub, r *http.Request, fn func(s *sessionhub.Session) error) error {
	id, ok := auth.SessionID(r)
	if !ok {
		return ErrNoSession
	}
	return hub.Do(r.Context(), id, fn)
}

// Apply runs fn on the caller's session and sends the browser back to the
// shell. Expected failures are reported by fn through s.Flash; an error
// return means something unexpected and renders the error page.
func Apply(w http.ResponseWriter, r *http.Request, hub *sessionhub.Hub, errLog *uierrors.ErrorLogger, fn func(s *sessionhub.Session) error) {
	err := WithSession(hub, r, fn)
	switch {
	case err == nil, errors.Is(err, controller.ErrNotSignedIn):
		auth.Redirect(w, r, "/")
	default:
		errLog.LogServerError(w, r, "intent failed", err, "Something went wrong. Please try again.", "/")
	}
}

// FlashRefused queues an error notice when out reports that the store did
// not take the change. tooLarge is shown for controller.TooLarge. It reports
// whether a notice was queued.
func FlashRefused(s *sessionhub.Session, out controller.Outcome, tooLarge string) bool {
	switch out {
	case controller.TooLarge:
		s.Flash("error", tooLarge)
	case controller.NotSaved:
		s.Flash("error", "Your change could not be saved. Please try again.")
	default:
		return false
	}
	return true
}
