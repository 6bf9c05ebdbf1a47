// internal/domain/models/exam.go
package models

import (
	"fmt"
	"time"
)

// ExamQuestion is one multiple-choice question. CorrectAnswer must equal one
// of Options exactly for an answer to be scored as correct.
type ExamQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether opt is one of the question's options.
func (q ExamQuestion) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// ExamAttempt is one completed exam run. It is not mutated after creation.
// Date is assigned when the attempt is submitted, not when the exam starts.
type ExamAttempt struct {
	Questions   []ExamQuestion `json:"questions"`
	UserAnswers map[int]string `json:"userAnswers"`
	Score       int            `json:"score"`
	Date        *time.Time     `json:"date,omitempty"`
}

// ScoreText renders the score as "score/total".
func (a ExamAttempt) ScoreText() string {
	return fmt.Sprintf("%d/%d", a.Score, len(a.Questions))
}
