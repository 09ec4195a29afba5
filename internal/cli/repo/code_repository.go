package repo

import (
	"CodeVault/internal/cli/model"
	"context"
)

// CodeRepository определяет порт доступа к локальному хранилищу кодов.
type CodeRepository interface {
	// SaveCode сохраняет собранный код под именем name.
	SaveCode(ctx context.Context, name, payload string) (*model.StoredCode, error)

	// ListCodes возвращает все коды, новые первыми.
	ListCodes(ctx context.Context) ([]model.StoredCode, error)

	// GetCodeByName находит код по точному имени.
	GetCodeByName(ctx context.Context, name string) (*model.StoredCode, error)

	// Current и Increment — локальный счётчик показов по ID контейнера.
	Current(ctx context.Context, containerID string) (int, error)
	Increment(ctx context.Context, containerID string) (int, error)
}
