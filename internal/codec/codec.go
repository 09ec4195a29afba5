// Package codec сериализует контейнер слоёв в однострочный текст для 2-D кода и обратно.
//
// Формат: Marker + base64url(JSON). Версия записи выбирает ровно одну форму JSON:
// v1 — полные имена полей, v2 — сокращённые ключи.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"CodeVault/internal/crypto"
	"CodeVault/internal/model"
)

// Marker — префикс, по которому распознаётся семейство кодов.
const Marker = "QUANTUM:"

var (
	// ErrNotThisFormat — во входе нет маркера; вызывающему стоит попробовать другие декодеры.
	ErrNotThisFormat = errors.New("not a layered code")
	// ErrMalformed — маркер есть, но структура повреждена.
	ErrMalformed = errors.New("malformed layered code")
)

// MalformedError описывает причину, по которой код не удалось разобрать.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed layered code: %s: %v", e.Reason, e.Err)
	}
	return "malformed layered code: " + e.Reason
}

// Is позволяет сравнивать через errors.Is(err, ErrMalformed).
func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func (e *MalformedError) Unwrap() error { return e.Err }

func malformed(reason string, err error) error {
	return &MalformedError{Reason: reason, Err: err}
}

var enc = base64.RawURLEncoding

// IsLayered — дешёвая проверка маркера без разбора.
func IsLayered(s string) bool {
	return strings.HasPrefix(s, Marker)
}

// Encode валидирует контейнер и сериализует его в версии c.Version.
func Encode(c *model.Container) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	var record any
	switch c.Version {
	case model.VersionLegacy:
		record = toV1(c)
	case model.VersionSealed:
		record = toV2(c)
	default:
		return "", fmt.Errorf("%w: %d", crypto.ErrUnsupportedVersion, c.Version)
	}
	b, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal container: %w", err)
	}
	return Marker + enc.EncodeToString(b), nil
}

// versionProbe читает только дискриминатор версии.
type versionProbe struct {
	V       *int `json:"v"`
	Version *int `json:"version"`
}

// Decode разбирает код обратно в контейнер. Шифртексты слоёв не расшифровываются.
func Decode(s string) (*model.Container, error) {
	s = strings.TrimSpace(s)
	if !IsLayered(s) {
		return nil, ErrNotThisFormat
	}
	raw, err := enc.DecodeString(strings.TrimPrefix(s, Marker))
	if err != nil {
		return nil, malformed("bad encoding", err)
	}
	var probe versionProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, malformed("bad record", err)
	}
	var c *model.Container
	switch {
	case probe.V != nil && probe.Version != nil:
		return nil, malformed("ambiguous version fields", nil)
	case probe.Version != nil && *probe.Version == model.VersionLegacy:
		c, err = fromV1(raw)
	case probe.V != nil && *probe.V == model.VersionSealed:
		c, err = fromV2(raw)
	case probe.V != nil:
		return nil, malformed("unknown version", fmt.Errorf("%w: %d", crypto.ErrUnsupportedVersion, *probe.V))
	case probe.Version != nil:
		return nil, malformed("unknown version", fmt.Errorf("%w: %d", crypto.ErrUnsupportedVersion, *probe.Version))
	default:
		return nil, malformed("missing version", nil)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, malformed("invalid container", err)
	}
	return c, nil
}

// decodeStrict запрещает неизвестные поля, чтобы формы версий не смешивались.
func decodeStrict(raw []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.DisallowUnknownFields()
	return d.Decode(v)
}

func parseClass(s *string, layer int) (model.Class, error) {
	if s == nil {
		return 0, malformed(fmt.Sprintf("layer %d: missing class", layer), nil)
	}
	cl, err := model.ParseClass(*s)
	if err != nil {
		return 0, malformed(fmt.Sprintf("layer %d", layer), err)
	}
	return cl, nil
}

func parseMode(s *string) (model.ExpiryMode, error) {
	if s == nil {
		return "", malformed("expiry: missing mode", nil)
	}
	m := model.ExpiryMode(*s)
	if !m.Valid() {
		return "", malformed("expiry: unknown mode "+*s, nil)
	}
	return m, nil
}
