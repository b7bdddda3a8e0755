package identity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/web"
	"github.com/corefellowship/backend/types"
)

// AuthHandler exposes the registration and login endpoints.
type AuthHandler struct {
	auth *services.AuthService
	log  logging.Logger
}

func NewAuthHandler(auth *services.AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// AuthRouter registers the auth routes on the given router.
func AuthRouter(r chi.Router, auth *services.AuthService, log logging.Logger) {
	handler := NewAuthHandler(auth, log)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	UserType    string `json:"userType"`
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
	AdminToken  string `json:"adminToken"`
}

type RegisterResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	Message  string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int    `json:"expiresIn"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	UserType  string `json:"userType"`
	Role      string `json:"role"`
}

// Register creates an account. An adminToken matching the configured
// registration secret yields an ADMIN account; any other non-empty value is
// rejected.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		web.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	userType, ok := parseUserType(req.UserType)
	if !ok {
		web.Error(w, http.StatusBadRequest, "userType must be STUDENT, STARTUP or ADMIN")
		return
	}

	user, err := h.auth.Register(r.Context(), services.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		UserType:    userType,
		FullName:    strings.TrimSpace(req.FullName),
		CompanyName: strings.TrimSpace(req.CompanyName),
		AdminToken:  req.AdminToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			web.Error(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, services.ErrAdminTokenInvalid):
			web.Error(w, http.StatusForbidden, "Invalid admin registration token")
		default:
			h.log.Error(r.Context(), "registration failed", "error", err.Error())
			web.Error(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.log.Info(r.Context(), "user registered", "userId", user.ID, "userType", user.UserType)
	web.JSON(w, http.StatusCreated, RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: string(user.UserType),
		Message:  "Registration successful",
	})
}

// Login verifies credentials and returns a signed bearer token. Unknown
// email and wrong password produce an identical response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		web.Error(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.log.Warn(r.Context(), "login rejected", "reason", "invalid credentials")
			web.Error(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrAccountDisabled):
			h.log.Warn(r.Context(), "login rejected", "reason", "account disabled")
			web.Error(w, http.StatusForbidden, "Account is disabled")
		case errors.Is(err, services.ErrAccountLocked):
			h.log.Warn(r.Context(), "login rejected", "reason", "account locked")
			web.Error(w, http.StatusForbidden, "Account is locked")
		default:
			h.log.Error(r.Context(), "login failed", "error", err.Error())
			web.Error(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.log.Info(r.Context(), "user logged in", "userId", result.User.ID)
	web.JSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		ExpiresIn: result.ExpiresIn,
		UserID:    result.User.ID,
		Email:     result.User.Email,
		UserType:  string(result.User.UserType),
		Role:      string(result.User.Role),
	})
}

func parseUserType(s string) (types.UserType, bool) {
	switch types.UserType(strings.ToUpper(strings.TrimSpace(s))) {
	case types.UserTypeStudent:
		return types.UserTypeStudent, true
	case types.UserTypeStartup:
		return types.UserTypeStartup, true
	case types.UserTypeAdmin:
		return types.UserTypeAdmin, true
	default:
		return "", false
	}
}
