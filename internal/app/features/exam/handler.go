// internal/app/features/exam/handler.go
package exam

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/studydesk/internal/app/controller"
	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/examsim"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/limits"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"go.uber.org/zap"
)

// Handler drives the exam simulator.
type Handler struct {
	Hub     *sessionhub.Hub
	Content contentgen.Service
	Limiter *ratelimit.Limiter // content requests per session
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

func NewHandler(hub *sessionhub.Hub, content contentgen.Service, limiter *ratelimit.Limiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:     hub,
		Content: content,
		Limiter: limiter,
		Log:     logger,
		ErrLog:  errLog,
	}
}

// HandleOpen shows the exam view with a fresh simulator.
// POST /exam/open
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.StartExam{})
		if err == nil && out == controller.Applied {
			s.Exam.Reset()
		}
		return err
	})
}

// HandleStart generates a question set and puts the simulator in progress.
// The Content Service call runs outside the session lock; if the user leaves
// the exam meanwhile, the result is dropped by the simulator's token check.
// POST /exam/start
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var (
		sid string
		tok examsim.Token
	)
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		if s.Ctl.Screen() != controller.ViewExam {
			return nil
		}
		switch s.Exam.Phase() {
		case examsim.NotStarted, examsim.Failed:
			sid, tok = s.ID, s.Exam.Begin()
		}
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "exam start failed", err, "Could not start the exam.", "/")
		return
	}
	if sid == "" {
		auth.Redirect(w, r, "/")
		return
	}

	qs, genErr := h.generate(r, sid)

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		var applied bool
		if genErr != nil {
			applied = s.Exam.Fail(tok, genErr)
		} else {
			applied = s.Exam.Loaded(tok, qs)
		}
		if !applied {
			h.Log.Debug("stale exam generation dropped", zap.String("session", sid))
		}
		return nil
	})
}

// failure is a generation error worded for the exam view.
type failure string

func (f failure) Error() string { return string(f) }

// generate calls the Content Service and turns failures into the message
// shown on the exam view.
func (h *Handler) generate(r *http.Request, sid string) ([]models.ExamQuestion, error) {
	if !h.Limiter.Allow(sid) {
		return nil, failure("Too many exam requests. Please wait a minute and try again.")
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "generate exam")
	defer cancel()

	start := time.Now()
	qs, err := h.Content.GenerateExam(ctx)
	switch {
	case errors.Is(err, contentgen.ErrNotConfigured):
		return nil, failure("Exams are not available: content generation is not configured.")
	case err != nil:
		h.Log.Warn("exam generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, failure("The exam could not be generated. Please try again.")
	case len(qs) == 0:
		return nil, failure("The exam came back without questions. Please try again.")
	}
	return qs, nil
}

// ServeStatus tells a waiting page to reload once generation has finished.
// GET /exam/status
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	loading := false
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		loading = s.Ctl.Screen() == controller.ViewExam && s.Exam.Phase() == examsim.Loading
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "exam status failed", err, "Could not check the exam.", "/")
		return
	}
	if !loading {
		w.Header().Set("HX-Refresh", "true")
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnswer records the selected option for one question.
// POST /exam/answer
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	q, err := strconv.Atoi(r.PostFormValue("question"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad question index", err, "Invalid answer.", "/")
		return
	}
	option := r.PostFormValue("option")

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if s.Ctl.Screen() == controller.ViewExam {
			s.Exam.Select(q, option)
		}
		return nil
	})
}

// HandleSubmit scores the run and hands the attempt to the controller,
// which records it and shows the review.
// POST /exam/submit
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if s.Ctl.Screen() != controller.ViewExam {
			return nil
		}
		at, err := s.Exam.Submit()
		switch {
		case errors.Is(err, examsim.ErrIncomplete):
			s.Flash("error", "Answer every question before submitting.")
			return nil
		case err != nil:
			return nil
		}
		out, err := s.Ctl.Dispatch(r.Context(), controller.CompleteExam{Attempt: at})
		if err != nil {
			return err
		}
		switch out {
		case controller.NotFound:
			s.Flash("error", "Your account record is missing, so this attempt was not recorded.")
		default:
			shared.FlashRefused(s, out, "Your exam history is over its storage limit, so this attempt was not recorded.")
		}
		return nil
	})
}
