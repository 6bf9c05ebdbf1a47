// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
	BackURL string
}

// Handler is the errors feature handler.
// No storage needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound renders the "page not found" page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "The page you were looking for does not exist.", "/")
}

// MethodNotAllowed answers requests with a verb the route does not accept.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusMethodNotAllowed, "Not allowed", "That action is not available here.", "/")
}

// CSRFFailure is the gorilla/csrf error handler. Expired forms are the
// usual cause, so the page offers a way back rather than a bare 403.
func (h *Handler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "Form expired", "Your form expired. Please go back and try again.", "/")
}
