package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"CodeVault/internal/codec"
	"CodeVault/internal/crypto"
	"CodeVault/internal/model"
	"CodeVault/internal/unlock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNoLayers — код без слоёв.
	ErrNoLayers = errors.New("at least one layer is required")
	// ErrSecretRequired — для private/hidden слоя не передан PIN.
	ErrSecretRequired = errors.New("PIN required for private and hidden layers")
)

// UsageStore — внешний счётчик показов контейнеров.
type UsageStore interface {
	// Current возвращает текущее значение (0, если показов не было).
	Current(ctx context.Context, containerID string) (int, error)
	// Increment увеличивает счётчик и возвращает новое значение.
	Increment(ctx context.Context, containerID string) (int, error)
}

// LayerConfig — описание слоя при создании кода.
type LayerConfig struct {
	Class       model.Class
	Name        string
	Data        string
	Description string
	UsageLimit  int
	ExpiresAt   int64 // unix ms
}

// BuildRequest — параметры генерации кода.
type BuildRequest struct {
	Name    string
	Secret  string
	Layers  []LayerConfig
	Expiry  *model.Expiry
	Version int // 0 — текущая версия
}

// Inspection — сведения о коде без раскрытия слоёв.
type Inspection struct {
	Container *model.Container
	Counts    model.Counts
	// Reveals — показов на данный момент; nil, если UsageStore не задан.
	Reveals *int
}

// RevealRequest — запрос на показ кода.
type RevealRequest struct {
	Payload      string
	Secret       string
	AdvancedMode bool
}

// Reveal — результат показа.
type Reveal struct {
	Container *model.Container
	Layers    []model.UnlockedLayer
	// UsageCount — число показов до этого, с которым вычислялся результат.
	UsageCount int
}

// CodeService собирает, разбирает и раскрывает многослойные коды.
type CodeService struct {
	usage  UsageStore
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewCodeService создаёт сервис. usage может быть nil, если раскрытие не используется.
func NewCodeService(usage UsageStore, logger *zap.SugaredLogger) *CodeService {
	return &CodeService{usage: usage, logger: logger, now: time.Now}
}

// Build шифрует непубличные слои и возвращает контейнер вместе с текстом кода.
func (s *CodeService) Build(ctx context.Context, req BuildRequest) (*model.Container, string, error) {
	if len(req.Layers) == 0 {
		return nil, "", ErrNoLayers
	}
	version := req.Version
	if version == 0 {
		version = model.CurrentVersion
	}
	cipher, err := crypto.ForVersion(version)
	if err != nil {
		return nil, "", err
	}
	now := s.now().UnixMilli()
	c := &model.Container{
		ID:        uuid.NewString(),
		Version:   version,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		Expiry:    req.Expiry,
		Layers:    make([]model.Layer, 0, len(req.Layers)),
	}
	seen := make(map[string]struct{}, len(req.Layers))
	for _, cfg := range req.Layers {
		if !cfg.Class.Valid() || !utf8.ValidString(cfg.Data) {
			return nil, "", fmt.Errorf("layer %q: %w", cfg.Name, model.ErrInvalidContainer)
		}
		id := newLayerID(cfg, seen)
		payload := cfg.Data
		if cfg.Class.Encrypted() {
			if req.Secret == "" {
				return nil, "", fmt.Errorf("%s layer %q: %w", cfg.Class, cfg.Name, ErrSecretRequired)
			}
			payload, err = cipher.Encrypt(cfg.Data, req.Secret, cfg.Class, id)
			if err != nil {
				return nil, "", fmt.Errorf("encrypt layer %q: %w", cfg.Name, err)
			}
		}
		c.Layers = append(c.Layers, model.Layer{
			ID:          id,
			Class:       cfg.Class,
			Name:        cfg.Name,
			Payload:     payload,
			Description: cfg.Description,
			UsageLimit:  cfg.UsageLimit,
			ExpiresAt:   cfg.ExpiresAt,
			CreatedAt:   now,
		})
	}
	payload, err := codec.Encode(c)
	if err != nil {
		return nil, "", err
	}
	s.logger.Infow("code built", "id", c.ID, "layers", len(c.Layers), "version", c.Version)
	return c, payload, nil
}

// newLayerID — "L-" + 8 hex-символов дайджеста, уникальный в пределах контейнера.
func newLayerID(cfg LayerConfig, seen map[string]struct{}) string {
	for {
		sum := sha256.Sum256([]byte(cfg.Class.String() + "|" + cfg.Name + "|" + uuid.NewString()))
		id := "L-" + strings.ToUpper(hex.EncodeToString(sum[:4]))
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			return id
		}
	}
}

// Inspect разбирает код и считает слои, ничего не расшифровывая и не занимая показ.
func (s *CodeService) Inspect(ctx context.Context, payload string) (*Inspection, error) {
	c, err := codec.Decode(payload)
	if err != nil {
		return nil, err
	}
	insp := &Inspection{Container: c, Counts: c.Counts()}
	if s.usage != nil {
		n, err := s.usage.Current(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("read usage: %w", err)
		}
		insp.Reveals = &n
	}
	return insp, nil
}

// Reveal разбирает код, атомарно занимает показ в UsageStore и раскрывает слои
// со снимком "показов до этого" (новое значение счётчика минус один).
// Параллельные показы получают разные снимки.
func (s *CodeService) Reveal(ctx context.Context, req RevealRequest) (*Reveal, error) {
	if s.usage == nil {
		return nil, errors.New("usage store is not configured")
	}
	c, err := codec.Decode(req.Payload)
	if err != nil {
		return nil, err
	}
	n, err := s.usage.Increment(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("claim usage: %w", err)
	}
	count := n - 1
	layers, err := unlock.UnlockAll(c, unlock.Request{
		Secret:       req.Secret,
		AdvancedMode: req.AdvancedMode,
		Now:          s.now(),
		UsageCount:   count,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("code revealed", "id", c.ID, "usage", count)
	return &Reveal{Container: c, Layers: layers, UsageCount: count}, nil
}
