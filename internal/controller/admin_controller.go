package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/service"
	"cdr-backend-V1.0/utilities"
)

type AdminController struct {
	AdminService service.AdminService
	TestService  service.TestService
}

func NewAdminController(adminService service.AdminService, testService service.TestService) *AdminController {
	return &AdminController{AdminService: adminService, TestService: testService}
}

// ListUsers returns the per-user aggregates, with optional name/email
// search and pagination.
func (ac *AdminController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	users, err := ac.AdminService.ListUsers(c.Query("search"), page)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ac *AdminController) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := ac.AdminService.GetUser(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AdminController) ListUserTests(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	tests, err := ac.AdminService.ListUserTests(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

func (ac *AdminController) GetUserTest(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	test, err := ac.AdminService.GetUserTest(userID, c.Param("testId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"test": test})
}

// GetUserTestAnalytics serves the same per-domain breakdown the subject
// sees, from the admin's cross-subject path.
func (ac *AdminController) GetUserTestAnalytics(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	// Resolve under the user's path first so a mismatched id is a 404.
	if _, err := ac.AdminService.GetUserTest(userID, c.Param("testId")); err != nil {
		abortWithError(c, err)
		return
	}

	ident, _ := utilities.CurrentIdentity(c)
	analytics, err := ac.TestService.GetAnalytics(ident, c.Param("testId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return uint(id), true
}
