// internal/app/features/profile/handler.go
package profile

import (
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/studydesk/internal/app/controller"
	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/inputval"
	"github.com/dalemusser/studydesk/internal/app/system/limits"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

type Handler struct {
	Hub    *sessionhub.Hub
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(hub *sessionhub.Hub, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Hub: hub, Log: logger, ErrLog: errLog}
}

type pageData struct {
	viewdata.BaseVM
	Email       string
	FirstName   string
	LastName    string
	BirthDate   string
	Nationality string
	Photo       template.URL
	MaxPhotoMB  int
	Welcome     bool // profile not filled in yet
}

// Page builds the profile editor for the shell.
func Page(r *http.Request, s *sessionhub.Session) (string, any) {
	u := s.Ctl.State().CurrentUser
	data := pageData{
		BaseVM:      viewdata.NewBaseVM(r, s, "Edit profile"),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   u.BirthDate,
		Nationality: u.Nationality,
		Photo:       viewdata.PictureURL(u.ProfilePicture),
		MaxPhotoMB:  limits.MaxProfilePicture >> 20,
		Welcome:     u.FirstName == "" && u.LastName == "",
	}
	return "profile_edit", data
}

type profileForm struct {
	FirstName   string `validate:"max=100" label:"First name"`
	LastName    string `validate:"max=100" label:"Last name"`
	BirthDate   string `validate:"omitempty,birthdate" label:"Birth date"`
	Nationality string `validate:"max=100" label:"Nationality"`
}

var (
	errPictureTooLarge = errors.New("picture too large")
	errNotImage        = errors.New("not an image")
)

// readPicture returns the uploaded picture as a data URL, or "" when no
// file was chosen.
func readPicture(r *http.Request) (string, error) {
	f, _, err := r.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, limits.MaxProfilePicture+1))
	if err != nil {
		return "", err
	}
	if len(b) > limits.MaxProfilePicture {
		return "", errPictureTooLarge
	}
	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", errNotImage
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// HandleSave updates the signed-in user's profile.
// POST /profile
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	err := formutil.ParseMultipart(w, r, limits.MaxProfileForm, limits.MultipartMemory)
	tooLarge := formutil.TooLarge(err)
	if err != nil && !tooLarge {
		h.ErrLog.LogBadRequest(w, r, "parse profile form failed", err, "Invalid form data.", "/")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var (
		form    profileForm
		picture string
		picErr  error
	)
	if !tooLarge {
		form = profileForm{
			FirstName:   strings.TrimSpace(r.PostFormValue("first_name")),
			LastName:    strings.TrimSpace(r.PostFormValue("last_name")),
			BirthDate:   strings.TrimSpace(r.PostFormValue("birth_date")),
			Nationality: strings.TrimSpace(r.PostFormValue("nationality")),
		}
		picture, picErr = readPicture(r)
	}
	removePicture := !tooLarge && formutil.Checked(r, "remove_picture")

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		cur := s.Ctl.State().CurrentUser
		if cur == nil {
			return nil
		}
		switch {
		case tooLarge, errors.Is(picErr, errPictureTooLarge):
			s.Flash("error", "The profile picture must be 5 MB or smaller.")
			return nil
		case errors.Is(picErr, errNotImage):
			s.Flash("error", "The profile picture must be an image.")
			return nil
		case picErr != nil:
			h.Log.Warn("profile picture unreadable", zap.Error(picErr))
			s.Flash("error", "The profile picture could not be read.")
			return nil
		}
		if res := inputval.Validate(form); res.HasErrors() {
			s.Flash("error", res.First())
			return nil
		}

		u := models.User{
			Email:          cur.Email,
			FirstName:      form.FirstName,
			LastName:       form.LastName,
			BirthDate:      form.BirthDate,
			Nationality:    form.Nationality,
			ProfilePicture: cur.ProfilePicture,
		}
		switch {
		case picture != "":
			u.ProfilePicture = picture
		case removePicture:
			u.ProfilePicture = ""
		}

		out, err := s.Ctl.Dispatch(r.Context(), controller.UpdateProfile{User: u})
		if err != nil {
			return err
		}
		if out == controller.Applied {
			s.Flash("success", "Profile saved.")
		} else {
			shared.FlashRefused(s, out, "Your profile could not be saved: the picture is too large for storage. Choose a smaller picture.")
		}
		return nil
	})
}
