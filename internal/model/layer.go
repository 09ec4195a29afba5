package model

import (
	"fmt"
	"strings"
)

// Class — класс видимости слоя.
type Class uint8

const (
	// ClassPublic — виден всем, payload хранится открытым текстом.
	ClassPublic Class = iota + 1
	// ClassPrivate — требует PIN.
	ClassPrivate
	// ClassHidden — требует PIN и включённый advanced mode.
	ClassHidden
)

// String возвращает имя класса в том виде, в котором оно попадает в код.
func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassPrivate:
		return "private"
	case ClassHidden:
		return "hidden"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Valid сообщает, что значение является одним из известных классов.
func (c Class) Valid() bool {
	switch c {
	case ClassPublic, ClassPrivate, ClassHidden:
		return true
	default:
		return false
	}
}

// Encrypted — payload слоя этого класса хранится только в виде шифртекста.
func (c Class) Encrypted() bool {
	return c == ClassPrivate || c == ClassHidden
}

// ParseClass разбирает имя класса (без учёта регистра).
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return ClassPublic, nil
	case "private":
		return ClassPrivate, nil
	case "hidden":
		return ClassHidden, nil
	default:
		return 0, fmt.Errorf("unknown layer class %q (expected: public|private|hidden)", s)
	}
}

// Layer — один отсек данных внутри контейнера.
//
// Для Private/Hidden поле Payload всегда содержит шифртекст.
// Время — Unix-миллисекунды; 0 в ExpiresAt и UsageLimit означает «не задано».
type Layer struct {
	ID          string
	Class       Class
	Name        string
	Payload     string
	Description string
	UsageLimit  int
	UsageCount  int   // снимок счётчика на момент генерации кода
	ExpiresAt   int64 // unix ms
	CreatedAt   int64 // unix ms
}

// Limits возвращает ограничения слоя по времени и количеству показов.
func (l Layer) Limits() Limits {
	return Limits{ExpiresAt: l.ExpiresAt, UsageLimit: l.UsageLimit}
}

// Status — итог решения о разблокировке слоя.
type Status string

const (
	StatusUnlocked   Status = "unlocked"
	StatusLocked     Status = "locked"
	StatusLapsed     Status = "lapsed"
	StatusAuthFailed Status = "auth_failed"
	StatusCorrupt    Status = "corrupt"
)

// UnlockedLayer — производное представление слоя для отображения. Никогда не сохраняется.
type UnlockedLayer struct {
	Layer
	Unlocked   bool
	Plaintext  *string
	UnlockedAt int64 // unix ms, 0 если слой не открыт
	Status     Status
}
