package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"cdr-backend-V1.0/internal/apperr"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
	logger "cdr-backend-V1.0/pkg/logging"
	"cdr-backend-V1.0/utilities"
)

// ReportService renders a PDF result report for a finished test and
// records it, so the owner (or an admin) can download it later.
type ReportService interface {
	GenerateReport(testID uint) (*model.Report, error)
	GetReportForTest(ident model.Identity, recordID string) (*model.Report, string, error)
}

type reportService struct {
	testRepo repository.TestRepository
	userRepo repository.UserRepository
	catalog  CatalogService
	dir      string
}

func NewReportService(testRepo repository.TestRepository, userRepo repository.UserRepository, catalog CatalogService, dir string) ReportService {
	if dir == "" {
		dir = "working/reports"
	}
	return &reportService{testRepo: testRepo, userRepo: userRepo, catalog: catalog, dir: dir}
}

// InitReportEventListeners generates a report whenever a test is
// finalized, off the request path.
func InitReportEventListeners(reports ReportService) {
	utilities.GlobalEventBus.Subscribe(EventTestFinalized, func(data interface{}) {
		testID, ok := data.(uint)
		if !ok {
			logger.Warn("invalid test ID received for report generation")
			return
		}
		if _, err := reports.GenerateReport(testID); err != nil {
			logger.Error("failed to generate report for test %d: %v", testID, err)
		}
	})
}

func (s *reportService) GenerateReport(testID uint) (*model.Report, error) {
	test, err := s.testRepo.GetTestByID(testID)
	if err != nil {
		return nil, apperr.Storage("failed to fetch test", err)
	}
	if test == nil {
		return nil, apperr.NotFound("test not found")
	}
	if !test.IsFinished() {
		return nil, apperr.Validation("test is not finished yet")
	}

	user, err := s.userRepo.GetUserByID(test.UserID)
	if err != nil {
		return nil, apperr.Storage("failed to fetch user", err)
	}

	domains, err := s.catalog.ListDomains()
	if err != nil {
		logger.Warn("question catalog unavailable, report will omit the domain table: %v", err)
		domains = nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperr.Storage("failed to create report directory", err)
	}

	filename := fmt.Sprintf("report_%d.pdf", test.ID)
	outputPath := filepath.Join(s.dir, filename)
	if err := s.renderPDF(outputPath, test, user, domains); err != nil {
		return nil, apperr.Storage("failed to render report", err)
	}

	report := &model.Report{
		TestID:   test.ID,
		UserID:   test.UserID,
		Filename: filename,
		DoneOn:   time.Now(),
	}
	if err := s.testRepo.SaveReport(report); err != nil {
		return nil, apperr.Storage("failed to save report record", err)
	}
	return report, nil
}

// GetReportForTest returns the report record and the file path for a
// finished test, generating the PDF first if it is missing.
func (s *reportService) GetReportForTest(ident model.Identity, recordID string) (*model.Report, string, error) {
	test, err := s.testRepo.GetTestByRecordID(recordID)
	if err != nil {
		return nil, "", apperr.Storage("failed to load test", err)
	}
	if test == nil {
		return nil, "", apperr.NotFound("test not found")
	}
	if test.UserID != ident.UserID && !ident.IsAdmin {
		return nil, "", apperr.Forbidden("you do not own this test")
	}
	if !test.IsFinished() {
		return nil, "", apperr.Validation("test is not finished yet")
	}

	report, err := s.testRepo.GetReportByTestID(test.ID)
	if err != nil {
		return nil, "", apperr.Storage("failed to load report record", err)
	}
	if report != nil {
		path := filepath.Join(s.dir, report.Filename)
		if _, err := os.Stat(path); err == nil {
			return report, path, nil
		}
	}

	report, err = s.GenerateReport(test.ID)
	if err != nil {
		return nil, "", err
	}
	return report, filepath.Join(s.dir, report.Filename), nil
}

func (s *reportService) renderPDF(outputPath string, test *model.Test, user *model.User, domains []model.Domain) error {
	score := TotalScore(test.Answers)
	breakdown := DomainBreakdown(test.Answers, domains)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Clinical Dementia Rating - Result Report")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	if user != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Subject: %s (%s)", user.Name, user.Email))
		pdf.Ln(7)
	}
	if test.Caretaker.Name != "" || test.Caretaker.Email != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Caretaker: %s (%s, %s)", test.Caretaker.Name, test.Caretaker.Relation, test.Caretaker.Email))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Started: %s", test.StartedAt.Format(time.RFC1123)))
	pdf.Ln(7)
	if test.FinishedAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Finished: %s", test.FinishedAt.Format(time.RFC1123)))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Total score: %g - %s", score, OverallSeverity(score)))
	pdf.Ln(12)

	if len(breakdown) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Domain breakdown")
		pdf.Ln(9)

		for _, d := range breakdown {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 7, fmt.Sprintf("%s - %g/%g (%d%%), %s", d.Domain, d.Score, d.MaxScore, d.Percent, d.Severity))
			pdf.Ln(7)

			pdf.SetFont("Arial", "", 10)
			for _, c := range d.TopConcerns {
				pdf.MultiCell(0, 6, fmt.Sprintf("  %g - %s", c.Rating, c.Text), "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	return pdf.OutputFileAndClose(outputPath)
}
