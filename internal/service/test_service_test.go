package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
)

// fakeTestRepo keeps tests in memory with the same merge/replace semantics
// the postgres repository implements.
type fakeTestRepo struct {
	nextID  uint
	tests   map[string]*model.Test
	reports map[uint]*model.Report
	failAll bool
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{
		nextID:  1,
		tests:   make(map[string]*model.Test),
		reports: make(map[uint]*model.Report),
	}
}

func (f *fakeTestRepo) CreateTest(test *model.Test) error {
	if f.failAll {
		return errors.New("db down")
	}
	test.ID = f.nextID
	f.nextID++
	f.tests[test.RecordID] = test
	return nil
}

func (f *fakeTestRepo) GetTestByRecordID(recordID string) (*model.Test, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	test, ok := f.tests[recordID]
	if !ok {
		return nil, nil
	}
	cp := *test
	cp.Answers = append([]model.Answer(nil), test.Answers...)
	return &cp, nil
}

func (f *fakeTestRepo) GetTestByID(id uint) (*model.Test, error) {
	for recordID := range f.tests {
		if f.tests[recordID].ID == id {
			return f.GetTestByRecordID(recordID)
		}
	}
	return nil, nil
}

func (f *fakeTestRepo) GetTestsByUser(userID uint) ([]model.Test, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	var out []model.Test
	for _, t := range f.tests {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTestRepo) GetActiveTestByUser(userID uint) (*model.Test, error) {
	if f.failAll {
		return nil, errors.New("db down")
	}
	for _, t := range f.tests {
		if t.UserID == userID && t.FinishedAt == nil {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTestRepo) UpsertAnswers(testID uint, answers []model.Answer) error {
	if f.failAll {
		return errors.New("db down")
	}
	for _, t := range f.tests {
		if t.ID != testID {
			continue
		}
		for _, a := range answers {
			if existing := t.AnswerByQID(a.QID); existing != nil {
				existing.Rating = a.Rating
				continue
			}
			a.TestID = testID
			t.Answers = append(t.Answers, a)
		}
		return nil
	}
	return errors.New("test not found")
}

func (f *fakeTestRepo) FinalizeTest(test *model.Test, answers []model.Answer) error {
	if f.failAll {
		return errors.New("db down")
	}
	stored, ok := f.tests[test.RecordID]
	if !ok {
		return errors.New("test not found")
	}
	stored.Answers = append([]model.Answer(nil), answers...)
	stored.Score = test.Score
	stored.FinishedAt = test.FinishedAt
	return nil
}

func (f *fakeTestRepo) SaveReport(report *model.Report) error {
	f.reports[report.TestID] = report
	return nil
}

func (f *fakeTestRepo) GetReportByTestID(testID uint) (*model.Report, error) {
	return f.reports[testID], nil
}

type fakeCatalog struct {
	domains []model.Domain
	err     error
}

func (f *fakeCatalog) ListDomains() ([]model.Domain, error) {
	return f.domains, f.err
}

func (f *fakeCatalog) FindQuestion(qid string) (*model.Question, error) {
	for _, d := range f.domains {
		for i := range d.Questions {
			if d.Questions[i].QID == qid {
				return &d.Questions[i], nil
			}
		}
	}
	return nil, apperr.NotFound("question not found")
}

var (
	subject = model.Identity{UserID: 1, Email: "subject@example.com"}
	admin   = model.Identity{UserID: 99, Email: "admin@example.com", IsAdmin: true}

	validCaretaker = model.Caretaker{Email: "care@example.com", Relation: "Daughter"}
)

func newTestService(repo *fakeTestRepo, catalog CatalogService) TestService {
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	return NewTestService(repo, catalog)
}

func TestStartTestRequiresCaretaker(t *testing.T) {
	svc := newTestService(newFakeTestRepo(), nil)

	_, err := svc.StartTest(subject, model.Caretaker{Email: "care@example.com"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.StartTest(subject, model.Caretaker{Relation: "Son"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestStartTestCreatesActiveTest(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)
	assert.NotEmpty(t, test.RecordID)
	assert.Equal(t, subject.UserID, test.UserID)
	assert.Nil(t, test.FinishedAt)
	assert.Nil(t, test.Score)
	assert.False(t, test.StartedAt.IsZero())
}

func TestStartTestBlockedWhileOneIsActive(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	_, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	_, err = svc.StartTest(subject, validCaretaker)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// A different subject is unaffected.
	other := model.Identity{UserID: 2}
	_, err = svc.StartTest(other, validCaretaker)
	assert.NoError(t, err)
}

func TestSaveAnswersMergesByQuestion(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	updated, err := svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	require.NoError(t, err)
	require.Len(t, updated.Answers, 1)

	// A second batch for a different question adds, not replaces.
	updated, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: "q2", Rating: 2}})
	require.NoError(t, err)
	require.Len(t, updated.Answers, 2)

	// Re-saving q1 overwrites its rating only.
	updated, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 3}})
	require.NoError(t, err)
	require.Len(t, updated.Answers, 2)
	assert.Equal(t, float64(3), updated.AnswerByQID("q1").Rating)
	assert.Equal(t, float64(2), updated.AnswerByQID("q2").Rating)
}

func TestSaveAnswersDeduplicatesWithinBatch(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	updated, err := svc.SaveAnswers(subject, test.RecordID, []model.Answer{
		{QID: "q1", Rating: 1},
		{QID: "q1", Rating: 2.5},
	})
	require.NoError(t, err)
	require.Len(t, updated.Answers, 1)
	assert.Equal(t, 2.5, updated.AnswerByQID("q1").Rating)
}

func TestSaveAnswersRejectsEmptyQuestionID(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	_, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: " ", Rating: 1}})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSaveAnswersOnFinishedTest(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)
	_, err = svc.SubmitTest(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	require.NoError(t, err)

	_, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: "q2", Rating: 2}})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSubmitReplacesSavedAnswers(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)
	_, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{
		{QID: "q1", Rating: 3},
		{QID: "q2", Rating: 3},
	})
	require.NoError(t, err)

	// Submission is wholesale: q2 is dropped, the score reflects only the
	// submitted set.
	finished, err := svc.SubmitTest(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	require.NoError(t, err)
	require.NotNil(t, finished.Score)
	assert.Equal(t, float64(1), *finished.Score)
	require.NotNil(t, finished.FinishedAt)
	require.Len(t, finished.Answers, 1)
	assert.Nil(t, finished.AnswerByQID("q2"))
}

func TestResubmitOverwrites(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	first, err := svc.SubmitTest(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	require.NoError(t, err)
	assert.Equal(t, float64(1), *first.Score)

	second, err := svc.SubmitTest(subject, test.RecordID, []model.Answer{
		{QID: "q1", Rating: 2},
		{QID: "q2", Rating: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(5), *second.Score)

	stored, err := svc.GetTest(subject, test.RecordID)
	require.NoError(t, err)
	assert.Len(t, stored.Answers, 2)
}

func TestOwnershipChecks(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	intruder := model.Identity{UserID: 2}
	_, err = svc.SaveAnswers(intruder, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	assert.True(t, apperr.IsForbidden(err))
	_, err = svc.SubmitTest(intruder, test.RecordID, nil)
	assert.True(t, apperr.IsForbidden(err))
	_, err = svc.GetTest(intruder, test.RecordID)
	assert.True(t, apperr.IsForbidden(err))

	// Admins read anything but never write on someone else's behalf.
	_, err = svc.GetTest(admin, test.RecordID)
	assert.NoError(t, err)
	_, err = svc.SaveAnswers(admin, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	assert.True(t, apperr.IsForbidden(err))
}

func TestGetTestNotFound(t *testing.T) {
	svc := newTestService(newFakeTestRepo(), nil)

	_, err := svc.GetTest(subject, "missing-record")
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.SaveAnswers(subject, "", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestGetAnalyticsDegradesWithoutCatalog(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, &fakeCatalog{err: errors.New("redis and db both down")})

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)
	_, err = svc.SubmitTest(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 2}})
	require.NoError(t, err)

	analytics, err := svc.GetAnalytics(subject, test.RecordID)
	require.NoError(t, err)
	assert.Equal(t, float64(2), analytics.Score)
	assert.Equal(t, SeverityNone, analytics.Severity)
	assert.Empty(t, analytics.Domains)
}

func TestFullLifecycle(t *testing.T) {
	catalog := &fakeCatalog{domains: sixDomainCatalog()}
	repo := newFakeTestRepo()
	svc := newTestService(repo, catalog)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	// Partial save midway through the questionnaire.
	_, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{
		{QID: "d1-q1", Rating: 2},
		{QID: "d1-q2", Rating: 1},
	})
	require.NoError(t, err)

	// Full submission: 16 answers at 2 plus 14 at 1 across 30 questions.
	var final []model.Answer
	for i, d := range catalog.domains {
		for j, q := range d.Questions {
			rating := float64(1)
			if (i*5+j)%15 < 8 {
				rating = 2
			}
			final = append(final, model.Answer{QID: q.QID, Rating: rating})
		}
	}
	require.Len(t, final, 30)

	finished, err := svc.SubmitTest(subject, test.RecordID, final)
	require.NoError(t, err)
	require.NotNil(t, finished.Score)
	assert.Equal(t, float64(46), *finished.Score)

	analytics, err := svc.GetAnalytics(subject, test.RecordID)
	require.NoError(t, err)
	assert.Equal(t, SeverityModerate, analytics.Severity)
	require.Len(t, analytics.Domains, 6)
	for _, d := range analytics.Domains {
		assert.Equal(t, 5, d.TotalQuestions)
		assert.Equal(t, float64(15), d.MaxScore)
		assert.Len(t, d.TopConcerns, 3)
	}

	// After submission the test appears in the subject's history.
	tests, err := svc.ListMyTests(subject)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	require.NotNil(t, tests[0].FinishedAt)
	assert.WithinDuration(t, time.Now(), *tests[0].FinishedAt, time.Minute)
}

func TestStorageFailuresSurfaceAsStorageErrors(t *testing.T) {
	repo := newFakeTestRepo()
	svc := newTestService(repo, nil)

	test, err := svc.StartTest(subject, validCaretaker)
	require.NoError(t, err)

	repo.failAll = true
	_, err = svc.SaveAnswers(subject, test.RecordID, []model.Answer{{QID: "q1", Rating: 1}})
	assert.True(t, apperr.IsStorage(err))
	_, err = svc.ListMyTests(subject)
	assert.True(t, apperr.IsStorage(err))
	_, err = svc.StartTest(subject, validCaretaker)
	assert.True(t, apperr.IsStorage(err))
}

// sixDomainCatalog builds a catalog shaped like the production one: six
// domains of five questions each.
func sixDomainCatalog() []model.Domain {
	names := []string{
		"Memory", "Orientation", "Judgment and Problem Solving",
		"Community Affairs", "Home and Hobbies", "Personal Care",
	}
	domains := make([]model.Domain, 0, len(names))
	for i, name := range names {
		d := model.Domain{Name: name}
		for j := 0; j < 5; j++ {
			d.Questions = append(d.Questions, model.Question{
				QID:  fmt.Sprintf("d%d-q%d", i+1, j+1),
				Text: name + " question",
			})
		}
		domains = append(domains, d)
	}
	return domains
}
