package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Версии формата кода.
const (
	// VersionLegacy — полные имена полей, шифр без проверки целостности.
	VersionLegacy = 1
	// VersionSealed — сокращённые ключи, шифртекст с HMAC-тегом.
	VersionSealed = 2

	// CurrentVersion — версия, в которой генерируются новые коды.
	CurrentVersion = VersionSealed
)

// ErrInvalidContainer возвращается Validate для структурно некорректного контейнера.
var ErrInvalidContainer = errors.New("invalid container")

// ExpiryMode — какие ограничения контейнера действуют.
type ExpiryMode string

const (
	ExpiryTime  ExpiryMode = "time"
	ExpiryUsage ExpiryMode = "usage"
	ExpiryBoth  ExpiryMode = "both"
)

// Valid сообщает, что режим известен.
func (m ExpiryMode) Valid() bool {
	switch m {
	case ExpiryTime, ExpiryUsage, ExpiryBoth:
		return true
	default:
		return false
	}
}

// Expiry — ограничение срока жизни всего контейнера.
type Expiry struct {
	Mode       ExpiryMode
	ExpiresAt  int64 // unix ms
	UsageLimit int
}

// Limits учитывает только те ограничения, которые включены режимом.
func (e Expiry) Limits() Limits {
	var l Limits
	if e.Mode == ExpiryTime || e.Mode == ExpiryBoth {
		l.ExpiresAt = e.ExpiresAt
	}
	if e.Mode == ExpiryUsage || e.Mode == ExpiryBoth {
		l.UsageLimit = e.UsageLimit
	}
	return l
}

// Limits — ограничения по времени и количеству показов (0 — не задано).
type Limits struct {
	ExpiresAt  int64
	UsageLimit int
}

// Limited реализуют слой и ограничение контейнера.
type Limited interface {
	Limits() Limits
}

// Container — упорядоченный набор слоёв с метаданными, сериализуемый в один код.
// Порядок слоёв — только порядок отображения.
type Container struct {
	ID        string
	Version   int
	Name      string
	Layers    []Layer
	CreatedAt int64 // unix ms
	Expiry    *Expiry
}

// Validate проверяет инварианты контейнера.
func (c *Container) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil", ErrInvalidContainer)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidContainer)
	}
	if !validUTF8(c.ID, c.Name) {
		return fmt.Errorf("%w: id and name must be valid UTF-8", ErrInvalidContainer)
	}
	if c.Version != VersionLegacy && c.Version != VersionSealed {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidContainer, c.Version)
	}
	if len(c.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidContainer)
	}
	if c.Expiry != nil {
		if !c.Expiry.Mode.Valid() {
			return fmt.Errorf("%w: unknown expiry mode %q", ErrInvalidContainer, c.Expiry.Mode)
		}
		if c.Expiry.UsageLimit < 0 || c.Expiry.ExpiresAt < 0 {
			return fmt.Errorf("%w: negative expiry limit", ErrInvalidContainer)
		}
	}
	seen := make(map[string]struct{}, len(c.Layers))
	for i, l := range c.Layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layer %d has empty id", ErrInvalidContainer, i)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate layer id %q", ErrInvalidContainer, l.ID)
		}
		seen[l.ID] = struct{}{}
		if !l.Class.Valid() {
			return fmt.Errorf("%w: layer %q has %s", ErrInvalidContainer, l.ID, l.Class)
		}
		if !validUTF8(l.ID, l.Name, l.Description, l.Payload) {
			return fmt.Errorf("%w: layer %d has invalid UTF-8", ErrInvalidContainer, i)
		}
		if l.UsageLimit < 0 || l.UsageCount < 0 || l.ExpiresAt < 0 {
			return fmt.Errorf("%w: layer %q has negative limits", ErrInvalidContainer, l.ID)
		}
	}
	return nil
}

// validUTF8 — JSON заменяет битые байты на U+FFFD, и код перестал бы совпадать с исходным.
func validUTF8(fields ...string) bool {
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return false
		}
	}
	return true
}

// LayersOf возвращает слои указанного класса в исходном порядке.
func (c *Container) LayersOf(class Class) []Layer {
	var out []Layer
	for _, l := range c.Layers {
		if l.Class == class {
			out = append(out, l)
		}
	}
	return out
}

// Counts — количество слоёв по классам.
type Counts struct {
	Public  int `json:"public"`
	Private int `json:"private"`
	Hidden  int `json:"hidden"`
}

// Counts считает слои по классам.
func (c *Container) Counts() Counts {
	var n Counts
	for _, l := range c.Layers {
		switch l.Class {
		case ClassPublic:
			n.Public++
		case ClassPrivate:
			n.Private++
		case ClassHidden:
			n.Hidden++
		}
	}
	return n
}
