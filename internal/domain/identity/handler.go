package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hearcare/hearcare/internal/platform/auth"
	"github.com/hearcare/hearcare/pkg/pagination"
	"github.com/hearcare/hearcare/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterAuthRoutes mounts the unauthenticated login flow.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/login", h.login)
	g.POST("/auth/verify-otp", h.verifyOTP)
	g.POST("/auth/forgot-password/init", h.forgotPasswordInit)
	g.POST("/auth/forgot-password/reset", h.resetPassword)
}

// RegisterUserRoutes mounts the admin-only user management endpoints.
func (h *Handler) RegisterUserRoutes(g *echo.Group) {
	users := g.Group("/users", auth.RequireRole(auth.RoleAdmin))
	users.POST("", h.createUser)
	users.GET("", h.listUsers)
	users.GET("/:id", h.getUser)
	users.PUT("/:id", h.updateUser)
	users.DELETE("/:id", h.deactivateUser)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	if err := h.svc.Login(c.Request().Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return respond.Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return respond.Internal(c, "login failed")
	}
	return respond.OK(c, "verification code sent", nil)
}

type verifyOTPRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

func (h *Handler) verifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	token, user, err := h.svc.VerifyOTP(c.Request().Context(), req.Username, req.Code)
	if err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			return respond.Error(c, http.StatusUnauthorized, "invalid or expired code")
		}
		return respond.Internal(c, "verification failed")
	}
	return respond.OK(c, "logged in", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type forgotPasswordInitRequest struct {
	Username string `json:"username"`
}

func (h *Handler) forgotPasswordInit(c echo.Context) error {
	var req forgotPasswordInitRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	if err := h.svc.ForgotPasswordInit(c.Request().Context(), req.Username); err != nil {
		return respond.Internal(c, "failed to start password reset")
	}
	// Same response whether or not the account exists.
	return respond.OK(c, "if the account exists, a reset code was sent", nil)
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Username, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			return respond.Error(c, http.StatusUnauthorized, "invalid or expired code")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "password updated", nil)
}

type createUserRequest struct {
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Roles       []string    `json:"roles"`
	LocationIDs []uuid.UUID `json:"location_ids"`
}

func (h *Handler) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	u := &User{
		Username:    req.Username,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Roles:       req.Roles,
		LocationIDs: req.LocationIDs,
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreateUser(c.Request().Context(), u, req.Password, actor); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	return respond.Created(c, "user created", u)
}

func (h *Handler) listUsers(c echo.Context) error {
	params := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return respond.Internal(c, "failed to list users")
	}
	return respond.OK(c, "", pagination.NewResponse(users, total, params.Limit, params.Offset))
}

func (h *Handler) getUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid user id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.NotFound(c, "user not found")
		}
		return respond.Internal(c, "failed to load user")
	}
	return respond.OK(c, "", u)
}

type updateUserRequest struct {
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Roles       []string    `json:"roles"`
	LocationIDs []uuid.UUID `json:"location_ids"`
}

func (h *Handler) updateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid user id")
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return respond.BadRequest(c, "invalid request body")
	}
	u := &User{
		ID:          id,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Roles:       req.Roles,
		LocationIDs: req.LocationIDs,
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.UpdateUser(c.Request().Context(), u, actor); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.NotFound(c, "user not found")
		}
		return respond.BadRequest(c, err.Error())
	}
	return respond.OK(c, "user updated", u)
}

func (h *Handler) deactivateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.BadRequest(c, "invalid user id")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeactivateUser(c.Request().Context(), id, actor); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return respond.NotFound(c, "user not found")
		}
		return respond.Internal(c, "failed to deactivate user")
	}
	return respond.OK(c, "user deactivated", nil)
}
