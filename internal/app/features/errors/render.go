// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderNotFound shows a friendly "not found" page.
// If backURL is empty, it defaults to /.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderServerError shows a friendly "something went wrong" page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

// RenderBadRequest shows a friendly "bad request" page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Invalid request", msg, backURL)
}

func render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}

	// htmx swaps only 2xx responses by default; send the message as a
	// snippet so partial loads still show something.
	if auth.IsHTMX(r) {
		w.WriteHeader(status)
		templates.RenderSnippet(w, "error_inline", pageData{Message: msg, BackURL: backURL})
		return
	}

	data := pageData{
		BaseVM:  viewdata.Minimal(r, title),
		Message: msg,
		BackURL: backURL,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
