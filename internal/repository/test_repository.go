package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cdr-backend-V1.0/internal/db"
	"cdr-backend-V1.0/internal/model"
)

// TestRepository persists questionnaire administrations. Lookup methods
// return (nil, nil) when no row matches; the services decide whether that
// is a NotFoundError.
type TestRepository interface {
	CreateTest(test *model.Test) error
	GetTestByRecordID(recordID string) (*model.Test, error)
	GetTestByID(id uint) (*model.Test, error)
	GetTestsByUser(userID uint) ([]model.Test, error)
	GetActiveTestByUser(userID uint) (*model.Test, error)
	UpsertAnswers(testID uint, answers []model.Answer) error
	FinalizeTest(test *model.Test, answers []model.Answer) error
	SaveReport(report *model.Report) error
	GetReportByTestID(testID uint) (*model.Report, error)
}

type testRepository struct{}

func NewTestRepository() TestRepository {
	return &testRepository{}
}

func (r *testRepository) CreateTest(test *model.Test) error {
	return db.GetDB().Create(test).Error
}

func (r *testRepository) GetTestByRecordID(recordID string) (*model.Test, error) {
	var test model.Test
	err := db.GetDB().Preload("Answers").Where("record_id = ?", recordID).First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) GetTestByID(id uint) (*model.Test, error) {
	var test model.Test
	err := db.GetDB().Preload("Answers").Where("id = ?", id).First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) GetTestsByUser(userID uint) ([]model.Test, error) {
	var tests []model.Test
	err := db.GetDB().Preload("Answers").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&tests).Error
	return tests, err
}

func (r *testRepository) GetActiveTestByUser(userID uint) (*model.Test, error) {
	var test model.Test
	err := db.GetDB().Where("user_id = ? AND finished_at IS NULL", userID).First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// UpsertAnswers merges a partial answer batch: a row per (test, question),
// last write wins on the rating.
func (r *testRepository) UpsertAnswers(testID uint, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	for i := range answers {
		answers[i].TestID = testID
		answers[i].ID = 0
	}
	return db.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_id"}, {Name: "qid"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating"}),
	}).Create(&answers).Error
}

// FinalizeTest replaces the whole answer set and stamps score and
// finished_at in one transaction.
func (r *testRepository) FinalizeTest(test *model.Test, answers []model.Answer) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", test.ID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		if len(answers) > 0 {
			for i := range answers {
				answers[i].TestID = test.ID
				answers[i].ID = 0
			}
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Test{}).Where("id = ?", test.ID).Updates(map[string]interface{}{
			"score":       test.Score,
			"finished_at": test.FinishedAt,
		}).Error
	})
}

func (r *testRepository) SaveReport(report *model.Report) error {
	return db.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"filename", "done_on"}),
	}).Create(report).Error
}

func (r *testRepository) GetReportByTestID(testID uint) (*model.Report, error) {
	var report model.Report
	err := db.GetDB().Where("test_id = ?", testID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
