// Package examsim is the exam simulator's state machine:
// NotStarted → Loading → (Error | InProgress) → Submitted.
//
// A Sim is owned by one session and is not safe for concurrent use.
package examsim

import (
	"errors"
	"maps"
	"slices"

	"github.com/dalemusser/studydesk/internal/domain/models"
)

// Phase is the simulator's state.
type Phase int

const (
	NotStarted Phase = iota
	Loading
	Failed
	InProgress
	Submitted
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

var (
	ErrNotInProgress = errors.New("exam is not in progress")
	ErrIncomplete    = errors.New("every question needs an answer")
)

// Token identifies one Begin call. Results carrying an older token belong
// to an abandoned generation and are dropped.
type Token uint64

// Sim tracks one exam run.
type Sim struct {
	phase     Phase
	gen       Token
	questions []models.ExamQuestion
	answers   map[int]string
	errMsg    string
}

// New returns a simulator in the NotStarted phase.
func New() *Sim {
	return &Sim{answers: map[int]string{}}
}

func (s *Sim) Phase() Phase                     { return s.phase }
func (s *Sim) Questions() []models.ExamQuestion { return s.questions }
func (s *Sim) Error() string                    { return s.errMsg }

// Answer returns the selected option for question i.
func (s *Sim) Answer(i int) (string, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Begin clears any previous run and enters Loading. The returned token must
// be passed to Loaded or Fail.
func (s *Sim) Begin() Token {
	s.gen++
	s.phase = Loading
	s.questions = nil
	s.answers = map[int]string{}
	s.errMsg = ""
	return s.gen
}

// Loaded installs the generated questions. It reports false when tok is
// stale or the simulator is no longer loading.
func (s *Sim) Loaded(tok Token, qs []models.ExamQuestion) bool {
	if tok != s.gen || s.phase != Loading {
		return false
	}
	s.questions = qs
	s.phase = InProgress
	return true
}

// Fail records a generation failure. The user may Begin again.
func (s *Sim) Fail(tok Token, err error) bool {
	if tok != s.gen || s.phase != Loading {
		return false
	}
	s.phase = Failed
	s.errMsg = err.Error()
	return true
}

// Reset abandons the current run. Pending results are discarded.
func (s *Sim) Reset() {
	s.gen++
	s.phase = NotStarted
	s.questions = nil
	s.answers = map[int]string{}
	s.errMsg = ""
}

// Select records option as the answer to question i. Only options of the
// served question are accepted.
func (s *Sim) Select(i int, option string) bool {
	if s.phase != InProgress || i < 0 || i >= len(s.questions) {
		return false
	}
	if !s.questions[i].HasOption(option) {
		return false
	}
	s.answers[i] = option
	return true
}

// CanSubmit reports whether every question has an answer.
func (s *Sim) CanSubmit() bool {
	if s.phase != InProgress || len(s.questions) == 0 {
		return false
	}
	for i := range s.questions {
		if _, ok := s.answers[i]; !ok {
			return false
		}
	}
	return true
}

// Submit scores the run and returns the attempt. The attempt's question
// list is the list that was served. Date is left for the controller.
func (s *Sim) Submit() (models.ExamAttempt, error) {
	if s.phase != InProgress {
		return models.ExamAttempt{}, ErrNotInProgress
	}
	if !s.CanSubmit() {
		return models.ExamAttempt{}, ErrIncomplete
	}
	at := models.ExamAttempt{
		Questions:   s.questions,
		UserAnswers: maps.Clone(s.answers),
	}
	at.Score = Score(at.Questions, at.UserAnswers)
	s.phase = Submitted
	return at, nil
}

// Score counts answers that equal the correct answer exactly.
func Score(qs []models.ExamQuestion, answers map[int]string) int {
	n := 0
	for i, q := range qs {
		if a, ok := answers[i]; ok && a == q.CorrectAnswer {
			n++
		}
	}
	return n
}

// Answered returns the indexes that have an answer, in order.
func (s *Sim) Answered() []int {
	return slices.Sorted(maps.Keys(s.answers))
}
