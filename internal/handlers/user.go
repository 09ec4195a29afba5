package handlers

import (
	"CodeVault/internal/config"
	"CodeVault/internal/middleware"
	"CodeVault/internal/model"
	"CodeVault/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — регистрация и вход операторов.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register регистрирует пользователя и сразу авторизует его
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrLoginTaken):
		http.Error(w, "login already taken", http.StatusConflict)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "login and password are required", http.StatusBadRequest)
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.authorize(w, u)
}

// Login проверяет пароль и выдаёт cookie
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "invalid login or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.authorize(w, u)
}

func (h *UserHandler) authorize(w http.ResponseWriter, u *model.User) {
	var grants []middleware.Grant
	if u.Advanced {
		grants = append(grants, middleware.GrantAdvanced)
	}
	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret, grants...); err != nil {
		h.Logger.Errorw("failed to set login cookie", "user_id", u.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "login": u.Login, "advanced": u.Advanced})
}

// Status показывает, кем сервер считает клиента
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	result := "anonymous"
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		result = fmt.Sprintf("User ID = %d", uid)
		if middleware.HasAdvancedGrant(r.Context()) {
			result += " (advanced)"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}
