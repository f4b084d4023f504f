package model

import (
	"strings"
	"time"

	"cdr-backend-V1.0/internal/apperr"
)

type User struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"not null"`
	Email             string     `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash      string     `json:"-" gorm:"not null"`
	IsAdmin           bool       `json:"isAdmin" gorm:"default:false"`
	DOB               *time.Time `json:"dob,omitempty"`
	Age               *int       `json:"age,omitempty"`
	BloodGroup        string     `json:"bloodGroup,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	OtherHealthIssues string     `json:"otherHealthIssues,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"-"`
}

// Domain is one named group of catalog questions (e.g. "Memory").
// Position preserves the catalog's insertion order for the UI flow;
// scoring does not depend on it.
type Domain struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	Name        string     `json:"domain" gorm:"not null;uniqueIndex"`
	Description string     `json:"description"`
	Position    int        `json:"-" gorm:"not null;default:0"`
	Questions   []Question `json:"questions" gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE"`
}

type Question struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	DomainID uint   `json:"-" gorm:"index;not null"`
	QID      string `json:"id" gorm:"column:qid;not null;uniqueIndex"`
	Text     string `json:"text" gorm:"not null"`
	Position int    `json:"-" gorm:"not null;default:0"`
}

// Caretaker holds the contact details captured when a test is started.
// Informational only, never part of scoring.
type Caretaker struct {
	Name     string `json:"name,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Age      *int   `json:"age,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Email    string `json:"email"`
	Relation string `json:"relation"`
}

// Validate enforces the required caretaker fields at test start.
func (c Caretaker) Validate() error {
	if strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Relation) == "" {
		return apperr.Validation("caretaker.email and caretaker.relation are required")
	}
	return nil
}

// Test is one administration of the questionnaire for one subject.
// A test is active while FinishedAt is nil; submission sets FinishedAt
// and Score in one step.
type Test struct {
	ID         uint       `json:"-" gorm:"primaryKey"`
	RecordID   string     `json:"testId" gorm:"not null;uniqueIndex"`
	UserID     uint       `json:"userId" gorm:"index;not null"`
	Caretaker  Caretaker  `json:"caretaker" gorm:"embedded;embeddedPrefix:caretaker_"`
	Answers    []Answer   `json:"answers" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Score      *float64   `json:"score,omitempty"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}

func (t *Test) IsFinished() bool {
	return t.FinishedAt != nil
}

// AnswerByQID returns the test's answer for one question, or nil when
// the question has not been answered.
func (t *Test) AnswerByQID(qid string) *Answer {
	for i := range t.Answers {
		if t.Answers[i].QID == qid {
			return &t.Answers[i]
		}
	}
	return nil
}

// Answer is one rating for one catalog question within a test.
// The (TestID, QID) pair is unique; a later write for the same question
// replaces the earlier one.
type Answer struct {
	ID     uint    `json:"-" gorm:"primaryKey"`
	TestID uint    `json:"-" gorm:"uniqueIndex:idx_test_question;not null"`
	QID    string  `json:"qId" gorm:"column:qid;uniqueIndex:idx_test_question;not null"`
	Rating float64 `json:"rating"`
}

// NewAnswer builds an answer from boundary input, rejecting a missing
// question id.
func NewAnswer(qid string, rating float64) (Answer, error) {
	if strings.TrimSpace(qid) == "" {
		return Answer{}, apperr.Validation("answer qId is required")
	}
	return Answer{QID: qid, Rating: rating}, nil
}

// Report records a generated PDF result report for a finished test.
type Report struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TestID   uint      `json:"testId" gorm:"uniqueIndex;not null"`
	UserID   uint      `json:"userId" gorm:"index;not null"`
	Filename string    `json:"filename" gorm:"not null"`
	DoneOn   time.Time `json:"doneOn"`
}

// Identity is the verified caller attached to each request after token
// validation. It is threaded explicitly into every service call.
type Identity struct {
	UserID  uint
	Email   string
	IsAdmin bool
}
