// internal/app/features/modules/detail.go
package modules

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/lesson"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type detailData struct {
	viewdata.BaseVM
	ID          int64
	ModuleTitle string
	Description string
	Icon        string
	VideoURL    string
	Materials   []materialRow
}

// DetailPage builds the module detail view for the shell. Static fields
// render immediately; the generated summary is fetched by the page.
func DetailPage(r *http.Request, s *sessionhub.Session) (string, any) {
	m := s.Ctl.State().SelectedModule

	data := detailData{
		BaseVM:      viewdata.NewBaseVM(r, s, m.Title),
		ID:          m.ID,
		ModuleTitle: m.Title,
		Description: m.Description,
		Icon:        m.Icon(),
		VideoURL:    m.VideoURL,
	}
	for i, mat := range m.Materials {
		data.Materials = append(data.Materials, materialRow{
			Index: i,
			Name:  mat.Name,
			Type:  mat.Type,
			Size:  humanSize(len(mat.Data)),
		})
	}
	return "module_detail", data
}

// HandleOpen selects a module and shows its detail view.
// POST /modules/{id}/open
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.Int64Param(r, "id")
	if !ok {
		uierrors.RenderNotFound(w, r, "Module not found.", "/")
		return
	}
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.SelectModule{ID: id})
		if err == nil && out == controller.NotFound {
			s.Flash("error", "That module is no longer available.")
		}
		return err
	})
}

type contentData struct {
	Blocks []lesson.Block
	Error  string
}

// ServeContent generates the summary of the selected module. It is loaded
// by htmx from the detail view; the Content Service call runs outside the
// session lock.
// GET /modules/content
func (h *Handler) ServeContent(w http.ResponseWriter, r *http.Request) {
	var (
		sid   string
		title string
	)
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		st := s.Ctl.State()
		if st.CurrentUser != nil && st.SelectedModule != nil {
			sid, title = s.ID, st.SelectedModule.Title
		}
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "module content failed", err, "Could not load the module summary.", "/")
		return
	}
	if sid == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !h.Limiter.Allow(sid) {
		templates.RenderSnippet(w, "module_content", contentData{
			Error: "Too many requests for generated content. Please wait a minute and reload.",
		})
		return
	}
	templates.RenderSnippet(w, "module_content", h.moduleContent(r.Context(), title))
}

// moduleContent asks the Content Service for the summary of title and
// classifies it into blocks. Failures become the inline error text.
func (h *Handler) moduleContent(ctx context.Context, title string) contentData {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Content(), h.Log, "generate module content")
	defer cancel()

	var data contentData
	start := time.Now()
	text, err := h.Content.GenerateModuleContent(ctx, title)
	switch {
	case errors.Is(err, contentgen.ErrNotConfigured):
		data.Error = "Module summaries are not available: content generation is not configured."
	case err != nil:
		h.Log.Warn("module content generation failed",
			zap.Error(err),
			zap.String("module", title),
			zap.Duration("elapsed", time.Since(start)))
		data.Error = "The module summary could not be generated."
	default:
		for b := range lesson.Blocks(text) {
			data.Blocks = append(data.Blocks, b)
		}
		if len(data.Blocks) == 0 {
			data.Error = "The module summary came back empty."
		}
	}
	return data
}

// ServeMaterial streams one material's decoded payload.
// GET /modules/{id}/materials/{index}
func (h *Handler) ServeMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok1 := formutil.Int64Param(r, "id")
	idx, ok2 := formutil.IntParam(r, "index")
	if !ok1 || !ok2 {
		uierrors.RenderNotFound(w, r, "File not found.", "/")
		return
	}

	var (
		mat   models.StudyMaterial
		found bool
	)
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		st := s.Ctl.State()
		if st.CurrentUser == nil {
			return nil
		}
		mods := st.Modules
		if i := models.FindModule(mods, id); i >= 0 && idx >= 0 && idx < len(mods[i].Materials) {
			mat, found = mods[i].Materials[idx], true
		}
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "material lookup failed", err, "Could not load the file.", "/")
		return
	}
	if !found {
		uierrors.RenderNotFound(w, r, "File not found.", "/")
		return
	}

	payload, err := base64.StdEncoding.DecodeString(mat.Data)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "material payload undecodable", err, "The file is damaged and cannot be downloaded.", "/")
		return
	}

	typ := mat.Type
	if typ == "" {
		typ = "application/octet-stream"
	}
	w.Header().Set("Content-Type", typ)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": mat.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, mat.Name, time.Time{}, bytes.NewReader(payload))
}
