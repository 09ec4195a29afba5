package view

import (
	core "CodeVault/internal/model"
	"fmt"
	"time"
)

// LayerView — DTO для отображения слоя в CLI.
type LayerView struct {
	ID          string
	Type        string
	Name        string
	Description string
	Status      core.Status
	Content     string // открытый текст или заглушка
	Limits      string
}

// заглушки для нераскрытых слоёв
var placeholders = map[core.Status]string{
	core.StatusLocked:     "<locked>",
	core.StatusLapsed:     "<expired>",
	core.StatusAuthFailed: "<wrong PIN>",
	core.StatusCorrupt:    "<corrupt>",
}

// NewLayerView готовит слой к выводу.
func NewLayerView(u core.UnlockedLayer) LayerView {
	v := LayerView{
		ID:          u.ID,
		Type:        u.Class.String(),
		Name:        u.Name,
		Description: u.Description,
		Status:      u.Status,
		Limits:      FormatLimits(u.Limits()),
	}
	if u.Unlocked && u.Plaintext != nil {
		v.Content = *u.Plaintext
	} else {
		v.Content = placeholders[u.Status]
	}
	return v
}

// FormatLimits — краткое описание ограничений, пустая строка если их нет.
func FormatLimits(l core.Limits) string {
	switch {
	case l.ExpiresAt > 0 && l.UsageLimit > 0:
		return fmt.Sprintf("until %s, %d uses", formatMillis(l.ExpiresAt), l.UsageLimit)
	case l.ExpiresAt > 0:
		return "until " + formatMillis(l.ExpiresAt)
	case l.UsageLimit > 0:
		return fmt.Sprintf("%d uses", l.UsageLimit)
	default:
		return ""
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
