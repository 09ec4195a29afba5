package model

import "time"

// CodeUsage — серверный счётчик показов контейнера.
type CodeUsage struct {
	ContainerID string `gorm:"primaryKey"`
	Reveals     int    `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
