// Package unlock вычисляет, какие слои контейнера видны при данном PIN и режиме,
// и возвращает их открытый текст.
package unlock

import (
	"errors"
	"fmt"
	"time"

	"CodeVault/internal/crypto"
	"CodeVault/internal/expiry"
	"CodeVault/internal/model"
)

// Request — входные данные одной попытки разблокировки.
type Request struct {
	Secret       string
	AdvancedMode bool
	Now          time.Time
	// UsageCount — снимок внешнего счётчика показов контейнера. Движок его не меняет.
	UsageCount int
}

// UnlockAll оценивает каждый слой независимо и возвращает результат в исходном порядке.
// Функция чистая: ничего не кэширует и не изменяет счётчики.
func UnlockAll(c *model.Container, req Request) ([]model.UnlockedLayer, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil", model.ErrInvalidContainer)
	}
	cipher, err := crypto.ForVersion(c.Version)
	if err != nil {
		return nil, err
	}
	containerLapsed := expiry.ContainerLapsed(c, req.Now, req.UsageCount)
	out := make([]model.UnlockedLayer, 0, len(c.Layers))
	for _, l := range c.Layers {
		if containerLapsed {
			out = append(out, locked(l, model.StatusLapsed))
			continue
		}
		out = append(out, unlockLayer(cipher, l, req))
	}
	return out, nil
}

func unlockLayer(cipher crypto.Cipher, l model.Layer, req Request) model.UnlockedLayer {
	if expiry.IsLapsed(l, req.Now, expiry.LayerUsage(l, req.UsageCount)) {
		return locked(l, model.StatusLapsed)
	}
	switch l.Class {
	case model.ClassPublic:
		return opened(l, l.Payload, req.Now)
	case model.ClassPrivate:
		if req.Secret == "" {
			return locked(l, model.StatusLocked)
		}
	case model.ClassHidden:
		if !req.AdvancedMode || req.Secret == "" {
			return locked(l, model.StatusLocked)
		}
	default:
		return locked(l, model.StatusCorrupt)
	}

	plain, err := cipher.Decrypt(l.Payload, req.Secret, l.Class, l.ID)
	switch {
	case err == nil:
		return opened(l, plain, req.Now)
	case errors.Is(err, crypto.ErrAuthenticationFailed):
		return locked(l, model.StatusAuthFailed)
	default:
		return locked(l, model.StatusCorrupt)
	}
}

func opened(l model.Layer, plain string, now time.Time) model.UnlockedLayer {
	return model.UnlockedLayer{
		Layer:      l,
		Unlocked:   true,
		Plaintext:  &plain,
		UnlockedAt: now.UnixMilli(),
		Status:     model.StatusUnlocked,
	}
}

func locked(l model.Layer, st model.Status) model.UnlockedLayer {
	return model.UnlockedLayer{Layer: l, Status: st}
}
