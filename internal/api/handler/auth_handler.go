package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-api/internal/service"
	"github.com/d60-Lab/blog-api/pkg/response"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register 注册新用户
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "email and password"
// @Success 200 {object} model.User
// @Failure 400 {object} response.Detail
// @Router /api/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, "Email already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, user)
}

// Login 邮箱密码换取访问令牌
// @Summary Exchange credentials for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body credentialsRequest true "email and password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} response.Detail
// @Router /api/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Incorrect email or password")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
