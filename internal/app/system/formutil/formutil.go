// Package formutil provides helpers for reading intent forms and route
// parameters.
//
// Every intent is a form POST. Bodies are bounded with http.MaxBytesReader
// before parsing so an oversized submission fails fast with a
// *http.MaxBytesError that handlers can report as a friendly message.
//
// Example usage:
//
//	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
//		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
//		return
//	}
//	id, ok := formutil.Int64Param(r, "id")
package formutil

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Parse reads a url-encoded (or small multipart) form of at most max bytes.
func Parse(w http.ResponseWriter, r *http.Request, max int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(max)
	}
	return r.ParseForm()
}

// ParseMultipart reads a multipart form of at most max bytes, keeping up to
// memory bytes in memory.
func ParseMultipart(w http.ResponseWriter, r *http.Request, max, memory int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, max)
	return r.ParseMultipartForm(memory)
}

// TooLarge reports whether err came from a body over its limit.
func TooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// Int64Param reads a chi URL parameter as int64.
func Int64Param(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return v, err == nil
}

// IntParam reads a chi URL parameter as int.
func IntParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	return v, err == nil
}

// Checked reports whether a checkbox field was submitted as on.
func Checked(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostFormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
