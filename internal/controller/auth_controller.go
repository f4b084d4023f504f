package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/service"
	"cdr-backend-V1.0/utilities"
)

type AuthController struct {
	AuthService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type signupRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	DOB               string `json:"dob"`
	Age               *int   `json:"age"`
	BloodGroup        string `json:"bloodGroup"`
	Gender            string `json:"gender"`
	OtherHealthIssues string `json:"otherHealthIssues"`
}

func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user := model.User{
		Name:              req.Name,
		Email:             req.Email,
		Age:               req.Age,
		BloodGroup:        req.BloodGroup,
		Gender:            req.Gender,
		OtherHealthIssues: req.OtherHealthIssues,
	}
	if req.DOB != "" {
		if dob, err := time.Parse("2006-01-02", req.DOB); err == nil {
			user.DOB = &dob
		}
	}

	if err := ac.AuthService.Register(&user, req.Password); err != nil {
		abortWithError(c, err)
		return
	}

	token, refreshToken, err := utilities.GenerateTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refreshToken": refreshToken, "user": user})
}

func (ac *AuthController) Signin(c *gin.Context) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	user, err := ac.AuthService.Login(creds.Email, creds.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, refreshToken, err := utilities.GenerateTokens(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refreshToken": refreshToken, "user": user})
}

// Me returns the fresh profile of the verified caller.
func (ac *AuthController) Me(c *gin.Context) {
	ident, ok := utilities.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := ac.AuthService.GetProfile(ident.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken required"})
		return
	}

	token, refreshToken, err := utilities.RefreshTokens(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refreshToken": refreshToken})
}
