// Package expiry решает, истёк ли слой или контейнер по времени или числу показов.
package expiry

import (
	"time"

	"CodeVault/internal/model"
)

// Reason — почему ограничение сработало.
type Reason int

const (
	// None — ограничение не сработало.
	None Reason = iota
	// Time — наступил момент expiresAt.
	Time
	// Usage — исчерпан лимит показов.
	Usage
)

func (r Reason) String() string {
	switch r {
	case Time:
		return "time"
	case Usage:
		return "usage"
	default:
		return "none"
	}
}

// Check возвращает первую сработавшую причину. При обоих ограничениях достаточно любого.
func Check(x model.Limited, now time.Time, usage int) Reason {
	lim := x.Limits()
	if lim.ExpiresAt > 0 && now.UnixMilli() > lim.ExpiresAt {
		return Time
	}
	if lim.UsageLimit > 0 && usage >= lim.UsageLimit {
		return Usage
	}
	return None
}

// IsLapsed — истёк ли x к моменту now при счётчике показов usage.
func IsLapsed(x model.Limited, now time.Time, usage int) bool {
	return Check(x, now, usage) != None
}

// ContainerLapsed проверяет ограничение всего контейнера; без Expiry контейнер не истекает.
func ContainerLapsed(c *model.Container, now time.Time, usage int) bool {
	if c == nil || c.Expiry == nil {
		return false
	}
	return IsLapsed(*c.Expiry, now, usage)
}

// LayerUsage — действующий счётчик слоя: снимок из кода или счётчик вызывающего,
// что больше. Счётчики только растут.
func LayerUsage(l model.Layer, usage int) int {
	if l.UsageCount > usage {
		return l.UsageCount
	}
	return usage
}
