package testutil

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// WithSession attaches a session id as auth.LoadSession would.
func WithSession(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithSessionID(r.Context(), id))
}

// WithChiURLParam adds a chi URL parameter to the request, keeping any
// parameters already set.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// PostForm builds a url-encoded POST request.
func PostForm(path string, form url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	return req
}
