package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandcatalog/internal/app"
	"brandcatalog/internal/model"
	"brandcatalog/internal/transport/http/middleware"
	"brandcatalog/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	logger      *slog.Logger
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

func NewAuthHandler(authService *app.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req app.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		var verr *app.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Validation(c, verr)
		case errors.Is(err, app.ErrUserExists):
			response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
		default:
			writeUnexpected(c, h.logger, "register", err)
		}
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "user registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req app.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		var verr *app.ValidationError
		switch {
		case errors.As(err, &verr):
			response.Validation(c, verr)
		case errors.Is(err, app.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid username or password")
		default:
			writeUnexpected(c, h.logger, "login", err)
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
			return
		}
		writeUnexpected(c, h.logger, "fetch current user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}
