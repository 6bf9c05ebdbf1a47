package modules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/lesson"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/dalemusser/studydesk/internal/testutil"
	"go.uber.org/zap"
)

// stubContent answers module summaries with a fixed text or error and
// records the titles it was asked for.
type stubContent struct {
	text   string
	err    error
	titles []string
}

func (s *stubContent) GenerateExam(context.Context) ([]models.ExamQuestion, error) {
	return nil, s.err
}

func (s *stubContent) GenerateModuleContent(_ context.Context, title string) (string, error) {
	s.titles = append(s.titles, title)
	return s.text, s.err
}

func stubHandler(t *testing.T, content contentgen.Service) *Handler {
	t.Helper()
	hub, _ := testutil.NewHub(t)
	logger := zap.NewNop()
	limiter := ratelimit.New(10, time.Minute)
	t.Cleanup(limiter.Stop)
	return NewHandler(hub, content, limiter, auditlog.New(logger, auditlog.Config{}), uierrors.NewErrorLogger(logger), logger)
}

func TestModuleContent(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubContent
		blocks []lesson.Block
		errMsg string
	}{
		{
			name: "classified blocks",
			stub: &stubContent{text: "Overview:\nCells divide by mitosis.\n\n• Prophase\n• Metaphase\n"},
			blocks: []lesson.Block{
				{Kind: lesson.Subheading, Text: "Overview:"},
				{Kind: lesson.Paragraph, Text: "Cells divide by mitosis."},
				{Kind: lesson.ListItem, Text: "Prophase"},
				{Kind: lesson.ListItem, Text: "Metaphase"},
			},
		},
		{
			name:   "service failure",
			stub:   &stubContent{err: errors.New("upstream status 503")},
			errMsg: "The module summary could not be generated.",
		},
		{
			name:   "not configured",
			stub:   &stubContent{err: contentgen.ErrNotConfigured},
			errMsg: "Module summaries are not available: content generation is not configured.",
		},
		{
			name:   "empty summary",
			stub:   &stubContent{text: " \n\n<p></p>\n"},
			errMsg: "The module summary came back empty.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := stubHandler(t, tt.stub)

			got := h.moduleContent(context.Background(), "Biology")

			if got.Error != tt.errMsg {
				t.Errorf("error: got %q, want %q", got.Error, tt.errMsg)
			}
			if !reflect.DeepEqual(got.Blocks, tt.blocks) {
				t.Errorf("blocks: got %+v, want %+v", got.Blocks, tt.blocks)
			}
			if len(tt.stub.titles) != 1 || tt.stub.titles[0] != "Biology" {
				t.Errorf("service asked for %v", tt.stub.titles)
			}
		})
	}
}

func TestServeContent_AsksForSelectedModule(t *testing.T) {
	stub := &stubContent{text: "Intro:\nSome text.\n"}
	h := stubHandler(t, stub)
	testutil.Register(t, h.Hub, "student", "student@example.com")
	testutil.Session(t, h.Hub, "student", func(s *sessionhub.Session) {
		if _, err := s.Ctl.Dispatch(context.Background(), controller.SelectModule{ID: 2}); err != nil {
			t.Fatal(err)
		}
	})
	title := testutil.State(t, h.Hub, "student").SelectedModule.Title

	rec := httptest.NewRecorder()
	req := testutil.WithSession(httptest.NewRequest(http.MethodGet, "/modules/content", nil), "student")
	// Rendering needs the template engine, which tests do not boot.
	func() {
		defer func() { _ = recover() }()
		h.ServeContent(rec, req)
	}()

	if len(stub.titles) != 1 || stub.titles[0] != title {
		t.Fatalf("service asked for %v, want [%s]", stub.titles, title)
	}
}
