package expiry

import (
	"testing"
	"time"

	"CodeVault/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCheck_Rules(t *testing.T) {
	now := time.UnixMilli(1_000_000)

	tests := []struct {
		name  string
		lim   model.Layer
		usage int
		want  Reason
	}{
		{"no limits", model.Layer{}, 100, None},
		{"time in future", model.Layer{ExpiresAt: 1_000_001}, 0, None},
		{"time exactly now", model.Layer{ExpiresAt: 1_000_000}, 0, None},
		{"time in past", model.Layer{ExpiresAt: 999_999}, 0, Time},
		{"usage below", model.Layer{UsageLimit: 3}, 2, None},
		{"usage reached", model.Layer{UsageLimit: 3}, 3, Usage},
		{"usage exceeded", model.Layer{UsageLimit: 3}, 7, Usage},
		{"both, only time", model.Layer{ExpiresAt: 1, UsageLimit: 3}, 0, Time},
		{"both, only usage", model.Layer{ExpiresAt: 2_000_000, UsageLimit: 3}, 3, Usage},
		{"both, neither", model.Layer{ExpiresAt: 2_000_000, UsageLimit: 3}, 1, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.lim, now, tt.usage))
			assert.Equal(t, tt.want != None, IsLapsed(tt.lim, now, tt.usage))
		})
	}
}

func TestContainerLapsed_Modes(t *testing.T) {
	now := time.UnixMilli(5_000)
	c := &model.Container{}
	assert.False(t, ContainerLapsed(c, now, 1000))
	assert.False(t, ContainerLapsed(nil, now, 1000))

	// срок прошёл, но режим учитывает только показы
	c.Expiry = &model.Expiry{Mode: model.ExpiryUsage, ExpiresAt: 1, UsageLimit: 10}
	assert.False(t, ContainerLapsed(c, now, 0))
	assert.True(t, ContainerLapsed(c, now, 10))

	c.Expiry = &model.Expiry{Mode: model.ExpiryTime, ExpiresAt: 1, UsageLimit: 10}
	assert.True(t, ContainerLapsed(c, now, 0))

	c.Expiry = &model.Expiry{Mode: model.ExpiryTime, ExpiresAt: 10_000, UsageLimit: 1}
	assert.False(t, ContainerLapsed(c, now, 50))

	c.Expiry = &model.Expiry{Mode: model.ExpiryBoth, ExpiresAt: 10_000, UsageLimit: 1}
	assert.True(t, ContainerLapsed(c, now, 1))
}

func TestLayerUsage(t *testing.T) {
	assert.Equal(t, 4, LayerUsage(model.Layer{UsageCount: 4}, 1))
	assert.Equal(t, 6, LayerUsage(model.Layer{UsageCount: 4}, 6))
	assert.Equal(t, "usage", Usage.String())
	assert.Equal(t, "none", None.String())
}
