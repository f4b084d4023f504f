package service

import (
	"context"
	"time"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/cache"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
	logger "cdr-backend-V1.0/pkg/logging"
)

// CatalogService serves the static question catalog. No mutation is
// exposed here; catalog content changes only through the cdrctl import.
type CatalogService interface {
	ListDomains() ([]model.Domain, error)
	FindQuestion(qid string) (*model.Question, error)
}

type catalogService struct {
	catalogRepo  repository.CatalogRepository
	catalogCache *cache.CatalogCache
}

// NewCatalogService wires the repository with an optional Redis cache;
// pass a nil cache to read straight from the database.
func NewCatalogService(catalogRepo repository.CatalogRepository, catalogCache *cache.CatalogCache) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, catalogCache: catalogCache}
}

func (s *catalogService) ListDomains() ([]model.Domain, error) {
	if s.catalogCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		defer cancel()
		if domains, err := s.catalogCache.GetDomains(ctx); err != nil {
			logger.Warn("catalog cache read failed, falling back to DB: %v", err)
		} else if domains != nil {
			return domains, nil
		}
	}

	domains, err := s.catalogRepo.GetDomains()
	if err != nil {
		return nil, apperr.Storage("failed to load question catalog", err)
	}

	if s.catalogCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		defer cancel()
		if err := s.catalogCache.SetDomains(ctx, domains); err != nil {
			logger.Warn("catalog cache write failed: %v", err)
		}
	}
	return domains, nil
}

// FindQuestion reports an unknown id as NotFound; callers treat that as
// "no text available", never as a fatal condition.
func (s *catalogService) FindQuestion(qid string) (*model.Question, error) {
	question, err := s.catalogRepo.GetQuestionByQID(qid)
	if err != nil {
		return nil, apperr.Storage("failed to look up question", err)
	}
	if question == nil {
		return nil, apperr.NotFound("question not found")
	}
	return question, nil
}
