package codec

import (
	"fmt"

	"CodeVault/internal/model"
)

// Обязательные поля — указатели: отсутствие ключа отличается от нулевого значения.

// ---- v1: полные имена полей ----

type v1Record struct {
	Version   *int      `json:"version"`
	ID        *string   `json:"id"`
	Name      *string   `json:"name"`
	CreatedAt *int64    `json:"createdAt"`
	Expiry    *v1Expiry `json:"expiry,omitempty"`
	Layers    []v1Layer `json:"layers"`
}

type v1Expiry struct {
	Mode       *string `json:"mode"`
	ExpiresAt  int64   `json:"expiresAt,omitempty"`
	UsageLimit int     `json:"usageLimit,omitempty"`
}

type v1Layer struct {
	ID          *string `json:"id"`
	Type        *string `json:"type"`
	Name        *string `json:"name"`
	Data        *string `json:"data"`
	Description string  `json:"description,omitempty"`
	UsageLimit  int     `json:"usageLimit,omitempty"`
	UsageCount  int     `json:"usageCount,omitempty"`
	ExpiresAt   int64   `json:"expiresAt,omitempty"`
	CreatedAt   *int64  `json:"createdAt"`
}

func toV1(c *model.Container) v1Record {
	r := v1Record{
		Version:   ptr(c.Version),
		ID:        ptr(c.ID),
		Name:      ptr(c.Name),
		CreatedAt: ptr(c.CreatedAt),
		Layers:    make([]v1Layer, 0, len(c.Layers)),
	}
	if c.Expiry != nil {
		r.Expiry = &v1Expiry{
			Mode:       ptr(string(c.Expiry.Mode)),
			ExpiresAt:  c.Expiry.ExpiresAt,
			UsageLimit: c.Expiry.UsageLimit,
		}
	}
	for _, l := range c.Layers {
		r.Layers = append(r.Layers, v1Layer{
			ID:          ptr(l.ID),
			Type:        ptr(l.Class.String()),
			Name:        ptr(l.Name),
			Data:        ptr(l.Payload),
			Description: l.Description,
			UsageLimit:  l.UsageLimit,
			UsageCount:  l.UsageCount,
			ExpiresAt:   l.ExpiresAt,
			CreatedAt:   ptr(l.CreatedAt),
		})
	}
	return r
}

func fromV1(raw []byte) (*model.Container, error) {
	var r v1Record
	if err := decodeStrict(raw, &r); err != nil {
		return nil, malformed("v1 record", err)
	}
	if r.ID == nil || r.Name == nil || r.CreatedAt == nil || r.Layers == nil {
		return nil, malformed("v1 record: missing required field", nil)
	}
	c := &model.Container{
		ID:        *r.ID,
		Version:   model.VersionLegacy,
		Name:      *r.Name,
		CreatedAt: *r.CreatedAt,
		Layers:    make([]model.Layer, 0, len(r.Layers)),
	}
	if r.Expiry != nil {
		mode, err := parseMode(r.Expiry.Mode)
		if err != nil {
			return nil, err
		}
		c.Expiry = &model.Expiry{Mode: mode, ExpiresAt: r.Expiry.ExpiresAt, UsageLimit: r.Expiry.UsageLimit}
	}
	for i, l := range r.Layers {
		if l.ID == nil || l.Name == nil || l.Data == nil || l.CreatedAt == nil {
			return nil, malformed(fmt.Sprintf("layer %d: missing required field", i), nil)
		}
		cl, err := parseClass(l.Type, i)
		if err != nil {
			return nil, err
		}
		c.Layers = append(c.Layers, model.Layer{
			ID:          *l.ID,
			Class:       cl,
			Name:        *l.Name,
			Payload:     *l.Data,
			Description: l.Description,
			UsageLimit:  l.UsageLimit,
			UsageCount:  l.UsageCount,
			ExpiresAt:   l.ExpiresAt,
			CreatedAt:   *l.CreatedAt,
		})
	}
	return c, nil
}

// ---- v2: сокращённые ключи ----

type v2Record struct {
	V  *int      `json:"v"`
	ID *string   `json:"id"`
	N  *string   `json:"n"`
	TS *int64    `json:"ts"`
	X  *v2Expiry `json:"x,omitempty"`
	LS []v2Layer `json:"ls"`
}

type v2Expiry struct {
	M *string `json:"m"`
	E int64   `json:"e,omitempty"`
	L int     `json:"l,omitempty"`
}

type v2Layer struct {
	ID *string `json:"id"`
	T  *string `json:"t"`
	N  *string `json:"n"`
	D  *string `json:"d"`
	DS string  `json:"ds,omitempty"`
	L  int     `json:"l,omitempty"`
	C  int     `json:"c,omitempty"`
	E  int64   `json:"e,omitempty"`
	TS *int64  `json:"ts"`
}

func toV2(c *model.Container) v2Record {
	r := v2Record{
		V:  ptr(c.Version),
		ID: ptr(c.ID),
		N:  ptr(c.Name),
		TS: ptr(c.CreatedAt),
		LS: make([]v2Layer, 0, len(c.Layers)),
	}
	if c.Expiry != nil {
		r.X = &v2Expiry{M: ptr(string(c.Expiry.Mode)), E: c.Expiry.ExpiresAt, L: c.Expiry.UsageLimit}
	}
	for _, l := range c.Layers {
		r.LS = append(r.LS, v2Layer{
			ID: ptr(l.ID),
			T:  ptr(l.Class.String()),
			N:  ptr(l.Name),
			D:  ptr(l.Payload),
			DS: l.Description,
			L:  l.UsageLimit,
			C:  l.UsageCount,
			E:  l.ExpiresAt,
			TS: ptr(l.CreatedAt),
		})
	}
	return r
}

func fromV2(raw []byte) (*model.Container, error) {
	var r v2Record
	if err := decodeStrict(raw, &r); err != nil {
		return nil, malformed("v2 record", err)
	}
	if r.ID == nil || r.N == nil || r.TS == nil || r.LS == nil {
		return nil, malformed("v2 record: missing required field", nil)
	}
	c := &model.Container{
		ID:        *r.ID,
		Version:   model.VersionSealed,
		Name:      *r.N,
		CreatedAt: *r.TS,
		Layers:    make([]model.Layer, 0, len(r.LS)),
	}
	if r.X != nil {
		mode, err := parseMode(r.X.M)
		if err != nil {
			return nil, err
		}
		c.Expiry = &model.Expiry{Mode: mode, ExpiresAt: r.X.E, UsageLimit: r.X.L}
	}
	for i, l := range r.LS {
		if l.ID == nil || l.N == nil || l.D == nil || l.TS == nil {
			return nil, malformed(fmt.Sprintf("layer %d: missing required field", i), nil)
		}
		cl, err := parseClass(l.T, i)
		if err != nil {
			return nil, err
		}
		c.Layers = append(c.Layers, model.Layer{
			ID:          *l.ID,
			Class:       cl,
			Name:        *l.N,
			Payload:     *l.D,
			Description: l.DS,
			UsageLimit:  l.L,
			UsageCount:  l.C,
			ExpiresAt:   l.E,
			CreatedAt:   *l.TS,
		})
	}
	return c, nil
}

func ptr[T any](v T) *T { return &v }
