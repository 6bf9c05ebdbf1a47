// internal/app/features/exam/page.go
package exam

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/examsim"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
)

type optionItem struct {
	Text     string
	Selected bool
}

type questionItem struct {
	Index    int
	Number   int
	Question string
	Options  []optionItem
}

type examData struct {
	viewdata.BaseVM
	Phase     string
	Error     string
	Questions []questionItem
	Answered  int
	CanSubmit bool
}

// Page builds the exam simulator view for the shell.
func Page(r *http.Request, s *sessionhub.Session) (string, any) {
	sim := s.Exam
	data := examData{
		BaseVM: viewdata.NewBaseVM(r, s, "Exam simulation"),
		Phase:  sim.Phase().String(),
	}
	switch sim.Phase() {
	case examsim.Failed:
		data.Error = sim.Error()
	case examsim.InProgress:
		for i, q := range sim.Questions() {
			sel, _ := sim.Answer(i)
			item := questionItem{Index: i, Number: i + 1, Question: q.Question}
			for _, o := range q.Options {
				item.Options = append(item.Options, optionItem{Text: o, Selected: o == sel})
			}
			data.Questions = append(data.Questions, item)
		}
		data.Answered = len(sim.Answered())
		data.CanSubmit = sim.CanSubmit()
	}
	return "exam", data
}

type reviewItem struct {
	Number        int
	Question      string
	YourAnswer    string
	CorrectAnswer string
	Correct       bool
}

type reviewData struct {
	viewdata.BaseVM
	Score string
	Date  string
	Items []reviewItem
}

// ReviewPage builds the review of the last attempt. Without one it falls
// back to an empty review.
func ReviewPage(r *http.Request, s *sessionhub.Session) (string, any) {
	data := reviewData{BaseVM: viewdata.NewBaseVM(r, s, "Exam review")}

	at := s.Ctl.State().LastAttempt
	if at == nil {
		return "exam_review", data
	}
	data.Score = at.ScoreText()
	if at.Date != nil {
		data.Date = at.Date.Local().Format("Jan 2, 2006 15:04")
	}
	for i, q := range at.Questions {
		ans, ok := at.UserAnswers[i]
		if !ok {
			ans = "No answer"
		}
		data.Items = append(data.Items, reviewItem{
			Number:        i + 1,
			Question:      q.Question,
			YourAnswer:    ans,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       ok && ans == q.CorrectAnswer,
		})
	}
	return "exam_review", data
}
