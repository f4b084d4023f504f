package service

import (
	"math"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
)

// AdminService is the read-only cross-subject view reserved for the
// administrator identity. Route-level checks keep ordinary subjects out;
// nothing here writes.
type AdminService interface {
	ListUsers(search string, page int) ([]repository.UserStats, error)
	GetUser(userID uint) (*model.User, error)
	ListUserTests(userID uint) ([]model.Test, error)
	GetUserTest(userID uint, recordID string) (*model.Test, error)
}

type adminService struct {
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
	testRepo  repository.TestRepository
	pageSize  int
}

func NewAdminService(adminRepo repository.AdminRepository, userRepo repository.UserRepository, testRepo repository.TestRepository, pageSize int) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		testRepo:  testRepo,
		pageSize:  pageSize,
	}
}

func (s *adminService) ListUsers(search string, page int) ([]repository.UserStats, error) {
	stats, err := s.adminRepo.ListUserStats(search, page, s.pageSize)
	if err != nil {
		return nil, apperr.Storage("failed to list users", err)
	}
	for i := range stats {
		stats[i].AvgScore = roundToTenth(stats[i].AvgScore)
	}
	return stats, nil
}

func (s *adminService) GetUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, apperr.Storage("failed to load user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (s *adminService) ListUserTests(userID uint) ([]model.Test, error) {
	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}
	tests, err := s.testRepo.GetTestsByUser(userID)
	if err != nil {
		return nil, apperr.Storage("failed to list user tests", err)
	}
	return tests, nil
}

// GetUserTest resolves a test under a specific user's path; a test owned
// by someone else is reported as not found rather than forbidden, since
// the admin already has cross-subject read access.
func (s *adminService) GetUserTest(userID uint, recordID string) (*model.Test, error) {
	test, err := s.testRepo.GetTestByRecordID(recordID)
	if err != nil {
		return nil, apperr.Storage("failed to load test", err)
	}
	if test == nil || test.UserID != userID {
		return nil, apperr.NotFound("test not found")
	}
	return test, nil
}

// roundToTenth matches the dashboard's one-decimal average display.
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
