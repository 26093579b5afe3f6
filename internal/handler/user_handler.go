package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

type UserService interface {
	Register(ctx context.Context, reg service.Registration) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type UserHandler struct {
	svc UserService
	log *slog.Logger
}

func NewUserHandler(svc UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

type RegisterRequest struct {
	Name     string `json:"name" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"secret123"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

// Register godoc
// @Summary      Register a new user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "Registration"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	// Parse the request
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	// Create the user and issue a token
	user, token, err := h.svc.Register(c.Request.Context(), service.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Login godoc
// @Summary      Log in and receive a token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	// Parse the request
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	// Check the credentials
	user, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Me godoc
// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	// Get the current user ID from the context
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	// Load the user
	user, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
