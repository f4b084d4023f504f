package service

import (
	"time"

	"github.com/google/uuid"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
	logger "cdr-backend-V1.0/pkg/logging"
	"cdr-backend-V1.0/utilities"
)

// EventTestFinalized is published with the test's numeric ID once a
// submission has been persisted.
const EventTestFinalized = "test_finalized"

// TestAnalytics is the read-side view of a single test: the canonical
// score plus the per-domain breakdown. Domains may be empty when the
// catalog cannot be loaded; score and severity never depend on it.
type TestAnalytics struct {
	TestID   string        `json:"testId"`
	Score    float64       `json:"score"`
	Severity string        `json:"severity"`
	Domains  []DomainStats `json:"domains"`
}

// TestService drives the test lifecycle: one active test per subject,
// merge-by-question partial saves, replace-and-score submission.
type TestService interface {
	StartTest(ident model.Identity, caretaker model.Caretaker) (*model.Test, error)
	SaveAnswers(ident model.Identity, recordID string, answers []model.Answer) (*model.Test, error)
	SubmitTest(ident model.Identity, recordID string, answers []model.Answer) (*model.Test, error)
	GetTest(ident model.Identity, recordID string) (*model.Test, error)
	ListMyTests(ident model.Identity) ([]model.Test, error)
	GetAnalytics(ident model.Identity, recordID string) (*TestAnalytics, error)
}

type testService struct {
	testRepo repository.TestRepository
	catalog  CatalogService
}

func NewTestService(testRepo repository.TestRepository, catalog CatalogService) TestService {
	return &testService{testRepo: testRepo, catalog: catalog}
}

func (s *testService) StartTest(ident model.Identity, caretaker model.Caretaker) (*model.Test, error) {
	if err := caretaker.Validate(); err != nil {
		return nil, err
	}

	active, err := s.testRepo.GetActiveTestByUser(ident.UserID)
	if err != nil {
		return nil, apperr.Storage("failed to check for an active test", err)
	}
	if active != nil {
		return nil, apperr.Validation("an unfinished test already exists; submit or resume it first")
	}

	test := &model.Test{
		RecordID:  uuid.New().String(),
		UserID:    ident.UserID,
		Caretaker: caretaker,
		StartedAt: time.Now(),
	}
	if err := s.testRepo.CreateTest(test); err != nil {
		return nil, apperr.Storage("failed to create test", err)
	}
	return test, nil
}

// SaveAnswers merges a partial batch into an active test: last write wins
// per question, answers for other questions are untouched. It never
// finishes the test.
func (s *testService) SaveAnswers(ident model.Identity, recordID string, answers []model.Answer) (*model.Test, error) {
	test, err := s.ownedTest(ident, recordID)
	if err != nil {
		return nil, err
	}
	if test.IsFinished() {
		return nil, apperr.Validation("test already finished")
	}

	batch, err := normalizeAnswers(answers)
	if err != nil {
		return nil, err
	}
	if err := s.testRepo.UpsertAnswers(test.ID, batch); err != nil {
		return nil, apperr.Storage("failed to save answers", err)
	}

	updated, err := s.testRepo.GetTestByRecordID(recordID)
	if err != nil || updated == nil {
		return nil, apperr.Storage("failed to reload test", err)
	}
	return updated, nil
}

// SubmitTest replaces the whole answer set with the supplied one, stamps
// finishedAt and computes the score. Submitting again overwrites the
// previous submission wholesale; there is no dedup, so it must not be
// retried blindly.
func (s *testService) SubmitTest(ident model.Identity, recordID string, answers []model.Answer) (*model.Test, error) {
	test, err := s.ownedTest(ident, recordID)
	if err != nil {
		return nil, err
	}

	batch, err := normalizeAnswers(answers)
	if err != nil {
		return nil, err
	}

	score := TotalScore(batch)
	now := time.Now()
	test.Score = &score
	test.FinishedAt = &now

	if err := s.testRepo.FinalizeTest(test, batch); err != nil {
		return nil, apperr.Storage("failed to finalize test", err)
	}
	test.Answers = batch

	utilities.GlobalEventBus.Publish(EventTestFinalized, test.ID)
	return test, nil
}

func (s *testService) GetTest(ident model.Identity, recordID string) (*model.Test, error) {
	test, err := s.testRepo.GetTestByRecordID(recordID)
	if err != nil {
		return nil, apperr.Storage("failed to load test", err)
	}
	if test == nil {
		return nil, apperr.NotFound("test not found")
	}
	if test.UserID != ident.UserID && !ident.IsAdmin {
		return nil, apperr.Forbidden("you do not own this test")
	}
	return test, nil
}

func (s *testService) ListMyTests(ident model.Identity) ([]model.Test, error) {
	tests, err := s.testRepo.GetTestsByUser(ident.UserID)
	if err != nil {
		return nil, apperr.Storage("failed to list tests", err)
	}
	return tests, nil
}

// GetAnalytics computes the per-domain breakdown for a test. A catalog
// failure degrades to zero domains instead of failing the request.
func (s *testService) GetAnalytics(ident model.Identity, recordID string) (*TestAnalytics, error) {
	test, err := s.GetTest(ident, recordID)
	if err != nil {
		return nil, err
	}

	domains, err := s.catalog.ListDomains()
	if err != nil {
		logger.Warn("question catalog unavailable, returning analytics without domains: %v", err)
		domains = nil
	}

	score := TotalScore(test.Answers)
	return &TestAnalytics{
		TestID:   test.RecordID,
		Score:    score,
		Severity: OverallSeverity(score),
		Domains:  DomainBreakdown(test.Answers, domains),
	}, nil
}

// ownedTest loads a test for a write operation; only the owning subject
// may write, admins have no special access here.
func (s *testService) ownedTest(ident model.Identity, recordID string) (*model.Test, error) {
	if recordID == "" {
		return nil, apperr.Validation("testId is required")
	}
	test, err := s.testRepo.GetTestByRecordID(recordID)
	if err != nil {
		return nil, apperr.Storage("failed to load test", err)
	}
	if test == nil {
		return nil, apperr.NotFound("test not found")
	}
	if test.UserID != ident.UserID {
		return nil, apperr.Forbidden("you do not own this test")
	}
	return test, nil
}

// normalizeAnswers validates boundary input and collapses duplicate
// question ids within one batch, keeping the last rating at the first
// occurrence's position.
func normalizeAnswers(answers []model.Answer) ([]model.Answer, error) {
	out := make([]model.Answer, 0, len(answers))
	index := make(map[string]int, len(answers))
	for _, a := range answers {
		answer, err := model.NewAnswer(a.QID, a.Rating)
		if err != nil {
			return nil, err
		}
		if i, seen := index[answer.QID]; seen {
			out[i].Rating = answer.Rating
			continue
		}
		index[answer.QID] = len(out)
		out = append(out, answer)
	}
	return out, nil
}
