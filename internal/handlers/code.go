package handlers

import (
	"CodeVault/internal/codec"
	"CodeVault/internal/crypto"
	"CodeVault/internal/middleware"
	"CodeVault/internal/model"
	"CodeVault/internal/scan"
	"CodeVault/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// CodeHandler — сборка, просмотр и раскрытие многослойных кодов.
type CodeHandler struct {
	CodeService *service.CodeService
	Logger      *zap.SugaredLogger
}

func NewCodeHandler(codeService *service.CodeService, logger *zap.SugaredLogger) *CodeHandler {
	return &CodeHandler{CodeService: codeService, Logger: logger}
}

type expiryDTO struct {
	Mode       string `json:"mode"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`
	UsageLimit int    `json:"usage_limit,omitempty"`
}

type layerConfigDTO struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Data        string `json:"data"`
	Description string `json:"description,omitempty"`
	UsageLimit  int    `json:"usage_limit,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
}

// BuildRequest — тело POST /api/codes.
type BuildRequest struct {
	Name    string           `json:"name"`
	PIN     string           `json:"pin,omitempty"`
	Version int              `json:"version,omitempty"`
	Expiry  *expiryDTO       `json:"expiry,omitempty"`
	Layers  []layerConfigDTO `json:"layers"`
}

type payloadRequest struct {
	Payload string `json:"payload"`
}

// RevealRequest — тело POST /api/codes/reveal.
type RevealRequest struct {
	Payload  string `json:"payload"`
	PIN      string `json:"pin,omitempty"`
	Advanced bool   `json:"advanced,omitempty"`
}

type layerDTO struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	UsageLimit  int     `json:"usage_limit,omitempty"`
	ExpiresAt   int64   `json:"expires_at,omitempty"`
	Status      string  `json:"status,omitempty"`
	Unlocked    *bool   `json:"unlocked,omitempty"`
	Data        *string `json:"data,omitempty"`
	UnlockedAt  int64   `json:"unlocked_at,omitempty"`
}

type codeDTO struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Version    int          `json:"version"`
	CreatedAt  int64        `json:"created_at"`
	Expiry     *expiryDTO   `json:"expiry,omitempty"`
	Counts     model.Counts `json:"counts"`
	Payload    string       `json:"payload,omitempty"`
	UsageCount *int         `json:"usage_count,omitempty"`
	Layers     []layerDTO   `json:"layers"`
}

func newCodeDTO(c *model.Container) codeDTO {
	dto := codeDTO{
		ID:        c.ID,
		Name:      c.Name,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		Counts:    c.Counts(),
		Layers:    make([]layerDTO, 0, len(c.Layers)),
	}
	if c.Expiry != nil {
		dto.Expiry = &expiryDTO{Mode: string(c.Expiry.Mode), ExpiresAt: c.Expiry.ExpiresAt, UsageLimit: c.Expiry.UsageLimit}
	}
	return dto
}

func newLayerDTO(l model.Layer) layerDTO {
	return layerDTO{
		ID:          l.ID,
		Type:        l.Class.String(),
		Name:        l.Name,
		Description: l.Description,
		UsageLimit:  l.UsageLimit,
		ExpiresAt:   l.ExpiresAt,
	}
}

// Build собирает новый код; доступно только авторизованным пользователям
func (h *CodeHandler) Build(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Build: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	svcReq := service.BuildRequest{
		Name:    req.Name,
		Secret:  req.PIN,
		Version: req.Version,
		Layers:  make([]service.LayerConfig, 0, len(req.Layers)),
	}
	if req.Expiry != nil {
		svcReq.Expiry = &model.Expiry{
			Mode:       model.ExpiryMode(req.Expiry.Mode),
			ExpiresAt:  req.Expiry.ExpiresAt,
			UsageLimit: req.Expiry.UsageLimit,
		}
	}
	for _, l := range req.Layers {
		class, err := model.ParseClass(l.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		svcReq.Layers = append(svcReq.Layers, service.LayerConfig{
			Class:       class,
			Name:        l.Name,
			Data:        l.Data,
			Description: l.Description,
			UsageLimit:  l.UsageLimit,
			ExpiresAt:   l.ExpiresAt,
		})
	}

	c, payload, err := h.CodeService.Build(r.Context(), svcReq)
	switch {
	case errors.Is(err, service.ErrNoLayers),
		errors.Is(err, service.ErrSecretRequired),
		errors.Is(err, model.ErrInvalidContainer),
		errors.Is(err, crypto.ErrUnsupportedVersion):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.Logger.Errorw("Build: service error", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	dto := newCodeDTO(c)
	dto.Payload = payload
	for _, l := range c.Layers {
		dto.Layers = append(dto.Layers, newLayerDTO(l))
	}
	writeJSON(w, http.StatusCreated, dto)
}

// Inspect разбирает код и возвращает метаданные без расшифровки
func (h *CodeHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req payloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	insp, err := h.CodeService.Inspect(r.Context(), req.Payload)
	if err != nil {
		h.decodeError(w, req.Payload, err)
		return
	}

	dto := newCodeDTO(insp.Container)
	dto.UsageCount = insp.Reveals
	for _, l := range insp.Container.Layers {
		dto.Layers = append(dto.Layers, newLayerDTO(l))
	}
	writeJSON(w, http.StatusOK, dto)
}

// Reveal раскрывает слои. Advanced-режим учитывается только при наличии права в токене.
func (h *CodeHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	advanced := req.Advanced && middleware.HasAdvancedGrant(r.Context())
	if req.Advanced && !advanced {
		h.Logger.Infow("Reveal: advanced mode requested without grant")
	}

	res, err := h.CodeService.Reveal(r.Context(), service.RevealRequest{
		Payload:      req.Payload,
		Secret:       req.PIN,
		AdvancedMode: advanced,
	})
	if err != nil {
		h.decodeError(w, req.Payload, err)
		return
	}

	dto := newCodeDTO(res.Container)
	dto.UsageCount = &res.UsageCount
	for _, u := range res.Layers {
		l := newLayerDTO(u.Layer)
		unlocked := u.Unlocked
		l.Status = string(u.Status)
		l.Unlocked = &unlocked
		l.Data = u.Plaintext
		l.UnlockedAt = u.UnlockedAt
		dto.Layers = append(dto.Layers, l)
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *CodeHandler) decodeError(w http.ResponseWriter, payload string, err error) {
	switch {
	case errors.Is(err, codec.ErrNotThisFormat):
		res := scan.Classify(payload)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Scan: res})
	case errors.Is(err, codec.ErrMalformed), errors.Is(err, crypto.ErrUnsupportedVersion):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.Logger.Errorw("code request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
