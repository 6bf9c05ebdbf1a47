// internal/app/features/modules/editor.go
package modules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/studydesk/internal/app/controller"
	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/limits"
	"github.com/dalemusser/studydesk/internal/app/system/moduledraft"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"github.com/dalemusser/studydesk/internal/domain/models"
)

type iconOption struct {
	Name     string
	Selected bool
}

type editData struct {
	viewdata.BaseVM
	IsNew       bool
	ModuleTitle string
	Description string
	VideoURL    string
	Icons       []iconOption
	Materials   []materialRow
}

// EditPage builds the module editor for the shell.
func EditPage(r *http.Request, s *sessionhub.Session) (string, any) {
	if s.Draft == nil {
		s.Draft = moduledraft.New(s.Ctl.State().ModuleToEdit)
	}
	d := s.Draft

	title := "Edit module"
	if d.IsNew() {
		title = "Create a new module"
	}
	data := editData{
		BaseVM:      viewdata.NewBaseVM(r, s, title),
		IsNew:       d.IsNew(),
		ModuleTitle: d.Title,
		Description: d.Description,
		VideoURL:    d.VideoURL,
	}
	for _, name := range models.IconNames {
		data.Icons = append(data.Icons, iconOption{Name: name, Selected: name == d.IconName})
	}
	for i, m := range d.Materials {
		data.Materials = append(data.Materials, materialRow{
			Index: i,
			Name:  m.Name,
			Type:  m.Type,
			Size:  humanSize(len(m.Data)),
		})
	}
	return "module_edit", data
}

// HandleNew opens the editor on an empty module.
// POST /modules/new
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.NewModule{})
		if err == nil && out == controller.Applied {
			s.Draft = moduledraft.New(nil)
		}
		return err
	})
}

// HandleEdit opens the editor on an existing module.
// POST /modules/{id}/edit
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.Int64Param(r, "id")
	if !ok {
		uierrors.RenderNotFound(w, r, "Module not found.", "/")
		return
	}
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.EditModule{ID: id})
		if err != nil {
			return err
		}
		switch out {
		case controller.Applied:
			s.Draft = moduledraft.New(s.Ctl.State().ModuleToEdit)
		case controller.NotFound:
			s.Flash("error", "That module is no longer available.")
		}
		return nil
	})
}

// HandleDelete removes a module once the confirmation box is ticked.
// POST /modules/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.Int64Param(r, "id")
	if !ok {
		uierrors.RenderNotFound(w, r, "Module not found.", "/")
		return
	}
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	confirmed := formutil.Checked(r, "confirm")

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.DeleteModule{ID: id, Confirmed: confirmed})
		if err != nil {
			return err
		}
		h.AuditLog.Admin(r, auditlog.EventModuleDeleted, actor(s), out.String(), map[string]string{"id": strconv.FormatInt(id, 10)})
		switch out {
		case controller.Unconfirmed:
			s.Flash("error", "Tick the confirmation box to delete a module.")
		case controller.Applied:
			s.Flash("success", "Module deleted.")
			if s.Ctl.Screen() == controller.ViewNone {
				_, err = s.Ctl.Dispatch(r.Context(), controller.GoToDashboard{})
			}
		default:
			shared.FlashRefused(s, out, "The catalog is over its storage limit.")
		}
		return err
	})
}

// parseEditor reads the editor form. Every editor button submits the whole
// form, so typed fields survive uploads and removals.
func (h *Handler) parseEditor(w http.ResponseWriter, r *http.Request) (ok bool, tooLarge bool) {
	err := formutil.ParseMultipart(w, r, limits.MaxMaterialsForm, limits.MultipartMemory)
	switch {
	case err == nil:
		return true, false
	case formutil.TooLarge(err):
		return false, true
	default:
		h.ErrLog.LogBadRequest(w, r, "parse editor form failed", err, "Invalid form data.", "/")
		return false, false
	}
}

func setFields(d *moduledraft.Draft, r *http.Request) {
	d.SetFields(
		r.PostFormValue("title"),
		r.PostFormValue("description"),
		r.PostFormValue("icon"),
		r.PostFormValue("video_url"),
	)
}

// HandleFiles adds the selected files to the draft. Files that are too
// large are reported one by one; the rest are added.
// POST /modules/editor/files
func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	ok, tooLarge := h.parseEditor(w, r)
	if !ok && !tooLarge {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if s.Draft == nil {
			return nil
		}
		if tooLarge {
			s.Flash("error", "The selected files are too large to upload at once. Add them in smaller batches.")
			return nil
		}
		setFields(s.Draft, r)
		uploads := moduledraft.FromMultipart(r.MultipartForm.File["files"])
		for _, msg := range s.Draft.Intake(uploads) {
			s.Flash("error", msg)
		}
		return nil
	})
}

// HandleRemoveMaterial drops one file from the draft.
// POST /modules/editor/materials/{index}/remove
func (h *Handler) HandleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	idx, idxOK := formutil.IntParam(r, "index")
	ok, tooLarge := h.parseEditor(w, r)
	if !ok && !tooLarge {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if s.Draft == nil {
			return nil
		}
		if ok {
			setFields(s.Draft, r)
		}
		if idxOK {
			s.Draft.RemoveMaterial(idx)
		}
		return nil
	})
}

// HandleSave validates the draft and saves the module.
// POST /modules/editor/save
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ok, tooLarge := h.parseEditor(w, r)
	if !ok && !tooLarge {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if s.Draft == nil {
			return nil
		}
		if tooLarge {
			s.Flash("error", "The form was too large to save. Upload files with the Add files button first.")
			return nil
		}
		setFields(s.Draft, r)

		m, err := s.Draft.Submit(h.now())
		if errors.Is(err, moduledraft.ErrInvalid) {
			s.Flash("error", err.Error())
			return nil
		}
		if err != nil {
			return err
		}

		out, err := s.Ctl.Dispatch(r.Context(), controller.SaveModule{Module: m})
		if err != nil {
			return err
		}
		h.AuditLog.Admin(r, auditlog.EventModuleSaved, actor(s), out.String(), map[string]string{
			"id":    strconv.FormatInt(m.ID, 10),
			"title": m.Title,
		})
		switch out {
		case controller.Applied:
			s.Draft = nil
			s.Flash("success", "Module saved.")
		default:
			shared.FlashRefused(s, out, "The module is too large to store. Remove some materials and save again.")
		}
		return nil
	})
}

func actor(s *sessionhub.Session) string {
	if u := s.Ctl.State().CurrentUser; u != nil {
		return u.Email
	}
	return ""
}
