// Package moduledraft holds the module editor's form state between
// requests: field values, intake of material files and final validation.
package moduledraft

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/studydesk/internal/app/system/inputval"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileBytes is the largest material accepted at intake.
	MaxFileBytes = 5 << 20

	// MaxModulePayload caps the encoded size of all materials of one
	// module. The whole catalog is stored as one document.
	MaxModulePayload = 12 << 20
)

// ErrInvalid matches every validation failure returned by Submit.
var ErrInvalid = errors.New("module is incomplete")

// ValidationError carries the message to show next to the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Upload is one selected file.
type Upload struct {
	Name string
	Type string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart adapts the files of a multipart form.
func FromMultipart(fhs []*multipart.FileHeader) []Upload {
	out := make([]Upload, 0, len(fhs))
	for _, fh := range fhs {
		out = append(out, Upload{
			Name: fh.Filename,
			Type: fh.Header.Get("Content-Type"),
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return out
}

// Draft is the editor's form state.
type Draft struct {
	ID          int64 // 0 for a new module
	Title       string
	Description string
	IconName    string
	VideoURL    string
	Materials   []models.StudyMaterial
}

// New seeds a draft from m, or defaults when m is nil.
func New(m *models.Module) *Draft {
	if m == nil {
		return &Draft{IconName: models.DefaultIcon}
	}
	return &Draft{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		IconName:    m.Icon(),
		VideoURL:    m.VideoURL,
		Materials:   slices.Clone(m.Materials),
	}
}

// IsNew reports whether the draft will create a module.
func (d *Draft) IsNew() bool { return d.ID == 0 }

// SetFields replaces the text fields.
func (d *Draft) SetFields(title, description, icon, videoURL string) {
	d.Title = title
	d.Description = description
	d.IconName = icon
	d.VideoURL = strings.TrimSpace(videoURL)
}

// Intake encodes each file and appends it to the materials. Files over
// MaxFileBytes, or that would push the module past MaxModulePayload, are
// rejected one by one; the rest of the batch is still processed. The
// returned messages name each rejected file.
func (d *Draft) Intake(files []Upload) []string {
	var rejected []string
	total := d.payloadSize()
	for _, f := range files {
		if f.Size > MaxFileBytes {
			rejected = append(rejected, fmt.Sprintf("%s is larger than 5 MB and was not added.", f.Name))
			continue
		}
		if total+int64(base64.StdEncoding.EncodedLen(int(f.Size))) > MaxModulePayload {
			rejected = append(rejected, fmt.Sprintf("%s would exceed the 12 MB limit for one module and was not added.", f.Name))
			continue
		}
		m, err := encode(f)
		if err != nil {
			rejected = append(rejected, fmt.Sprintf("%s could not be read.", f.Name))
			continue
		}
		d.Materials = append(d.Materials, m)
		total += int64(len(m.Data))
	}
	return rejected
}

func encode(f Upload) (models.StudyMaterial, error) {
	rc, err := f.Open()
	if err != nil {
		return models.StudyMaterial{}, err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return models.StudyMaterial{}, err
	}
	if len(b) > MaxFileBytes {
		return models.StudyMaterial{}, fmt.Errorf("%s: larger than declared", f.Name)
	}

	typ := f.Type
	if typ == "" || typ == "application/octet-stream" {
		typ = mimetype.Detect(b).String()
	}
	return models.StudyMaterial{
		Name: f.Name,
		Type: typ,
		Data: base64.StdEncoding.EncodeToString(b),
	}, nil
}

// RemoveMaterial drops material i. Out-of-range indexes are ignored.
func (d *Draft) RemoveMaterial(i int) bool {
	if i < 0 || i >= len(d.Materials) {
		return false
	}
	d.Materials = slices.Delete(d.Materials, i, i+1)
	return true
}

func (d *Draft) payloadSize() int64 {
	var n int64
	for _, m := range d.Materials {
		n += int64(len(m.Data))
	}
	return n
}

type submission struct {
	Title       string `validate:"notblank,max=200" label:"Title"`
	Description string `validate:"notblank,max=2000" label:"Description"`
	VideoURL    string `validate:"omitempty,embedurl" label:"Video URL"`
}

// Submit validates the draft and returns the module to save. New modules
// get now in unix millis as id.
func (d *Draft) Submit(now time.Time) (models.Module, error) {
	res := inputval.Validate(submission{
		Title:       d.Title,
		Description: d.Description,
		VideoURL:    d.VideoURL,
	})
	if res.HasErrors() {
		return models.Module{}, &ValidationError{Message: res.First()}
	}
	if d.payloadSize() > MaxModulePayload {
		return models.Module{}, &ValidationError{Message: "Materials exceed the 12 MB limit for one module."}
	}

	id := d.ID
	if id == 0 {
		id = now.UnixMilli()
	}
	return models.Module{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		IconName:    models.ResolveIcon(d.IconName),
		VideoURL:    d.VideoURL,
		Materials:   slices.Clone(d.Materials),
	}, nil
}
