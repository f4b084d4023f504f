package repository

import (
	"errors"

	"gorm.io/gorm"

	"cdr-backend-V1.0/internal/db"
	"cdr-backend-V1.0/internal/model"
)

// CatalogRepository reads the static question catalog. The only write,
// ReplaceCatalog, belongs to the operator CLI import path.
type CatalogRepository interface {
	GetDomains() ([]model.Domain, error)
	GetQuestionByQID(qid string) (*model.Question, error)
	ReplaceCatalog(domains []model.Domain) error
}

type catalogRepository struct{}

func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) GetDomains() ([]model.Domain, error) {
	var domains []model.Domain
	err := db.GetDB().
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Order("position").
		Find(&domains).Error
	return domains, err
}

func (r *catalogRepository) GetQuestionByQID(qid string) (*model.Question, error) {
	var question model.Question
	err := db.GetDB().Where("qid = ?", qid).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ReplaceCatalog wipes and reloads the whole catalog in one transaction,
// mirroring the import tool's "clear existing data, insert" behavior.
func (r *catalogRepository) ReplaceCatalog(domains []model.Domain) error {
	return db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Domain{}).Error; err != nil {
			return err
		}
		for i := range domains {
			domains[i].ID = 0
			domains[i].Position = i
			for j := range domains[i].Questions {
				domains[i].Questions[j].ID = 0
				domains[i].Questions[j].Position = j
			}
		}
		if len(domains) == 0 {
			return nil
		}
		return tx.Create(&domains).Error
	})
}
