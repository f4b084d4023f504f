package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/service"
	"cdr-backend-V1.0/utilities"
)

type TestController struct {
	TestService    service.TestService
	CatalogService service.CatalogService
	ReportService  service.ReportService
}

func NewTestController(testService service.TestService, catalogService service.CatalogService, reportService service.ReportService) *TestController {
	return &TestController{
		TestService:    testService,
		CatalogService: catalogService,
		ReportService:  reportService,
	}
}

type answerPayload struct {
	QID    string  `json:"qId"`
	Rating float64 `json:"rating"`
}

func toAnswers(payload []answerPayload) []model.Answer {
	answers := make([]model.Answer, 0, len(payload))
	for _, p := range payload {
		answers = append(answers, model.Answer{QID: p.QID, Rating: p.Rating})
	}
	return answers
}

// GetQuestions returns the full domain-grouped catalog.
func (tc *TestController) GetQuestions(c *gin.Context) {
	domains, err := tc.CatalogService.ListDomains()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": domains})
}

func (tc *TestController) StartTest(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	var req struct {
		Caretaker model.Caretaker `json:"caretaker"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	test, err := tc.TestService.StartTest(ident, req.Caretaker)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testId": test.RecordID, "startedAt": test.StartedAt, "test": test})
}

func (tc *TestController) SaveAnswers(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	var req struct {
		TestID  string          `json:"testId"`
		Answers []answerPayload `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TestID == "" || req.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "testId and answers required"})
		return
	}

	test, err := tc.TestService.SaveAnswers(ident, req.TestID, toAnswers(req.Answers))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"test": test})
}

func (tc *TestController) SubmitTest(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	var req struct {
		TestID  string          `json:"testId"`
		Answers []answerPayload `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TestID == "" || req.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "testId and answers required"})
		return
	}

	test, err := tc.TestService.SubmitTest(ident, req.TestID, toAnswers(req.Answers))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testId": test.RecordID, "finishedAt": test.FinishedAt, "score": test.Score})
}

func (tc *TestController) MyTests(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	tests, err := tc.TestService.ListMyTests(ident)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

func (tc *TestController) GetResult(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	test, err := tc.TestService.GetTest(ident, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"test": test})
}

func (tc *TestController) GetResultAnalytics(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	analytics, err := tc.TestService.GetAnalytics(ident, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// DownloadReport streams the PDF result report for a finished test.
func (tc *TestController) DownloadReport(c *gin.Context) {
	ident, _ := utilities.CurrentIdentity(c)

	report, path, err := tc.ReportService.GetReportForTest(ident, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.File(path)
}
