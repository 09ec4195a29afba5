package bootstrap

import (
	"fmt"

	"CodeVault/internal/cli/repo"
	fsrepo "CodeVault/internal/cli/repo/fs"
	reposqlite "CodeVault/internal/cli/repo/sqlite"
)

// LocalLogin — каталог базы, пока пользователь не вошёл на сервер.
const LocalLogin = "local"

// OpenCodeRepo открывает хранилище кодов активного пользователя (или локального,
// если вход не выполнялся), выполняет миграции и возвращает (repo, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenCodeRepo(baseDir string) (repo.CodeRepository, func() error, error) {
	login, err := (fsrepo.AuthFSStore{}).LoadLogin()
	if err != nil {
		login = LocalLogin
	}
	r, _, err := reposqlite.OpenForUser(baseDir, login)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("migrate user db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, cleanup, nil
}
