package sqlite

import (
	"CodeVault/internal/cli/model"
	"CodeVault/internal/cli/repo"
	"CodeVault/internal/codec"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound — кода с таким именем нет.
	ErrNotFound = errors.New("code not found")
	// ErrNameTaken — имя уже занято другим кодом.
	ErrNameTaken = errors.New("code name already taken")
)

// CodeRepositorySQLite — локальное хранилище кодов и счётчиков показов (SQLite).
type CodeRepositorySQLite struct {
	db    *sql.DB
	login string
}

var _ repo.CodeRepository = (*CodeRepositorySQLite)(nil)

// OpenForUser открывает (и создаёт при необходимости) файл БД base/<login>/client.sqlite
// и возвращает репозиторий. Вторым значением возвращается путь к БД.
func OpenForUser(base, login string) (*CodeRepositorySQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "CodeVault", "users")
	}
	dir := filepath.Join(base, login)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "client.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	// один писатель: счётчик показов обновляется без гонок
	db.SetMaxOpenConns(1)
	return &CodeRepositorySQLite{db: db, login: login}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *CodeRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *CodeRepositorySQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateName проверяет, что имя безопасно для CLI.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid name: %q (allowed: letters, digits, . _ -)", name)
	}
	return nil
}

// SaveCode разбирает payload и сохраняет его вместе с метаданными.
func (r *CodeRepositorySQLite) SaveCode(ctx context.Context, name, payload string) (*model.StoredCode, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	c, err := codec.Decode(payload)
	if err != nil {
		return nil, err
	}
	sc := &model.StoredCode{
		ID:        c.ID,
		Name:      name,
		Payload:   payload,
		Version:   c.Version,
		Counts:    c.Counts(),
		CreatedAt: c.CreatedAt,
	}
	if sc.CreatedAt == 0 {
		sc.CreatedAt = time.Now().UnixMilli()
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM codes WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO codes(name, id, payload, version, public, private, hidden, created_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.Name, sc.ID, sc.Payload, sc.Version, sc.Counts.Public, sc.Counts.Private, sc.Counts.Hidden, sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

const selectCodes = `SELECT c.name, c.id, c.payload, c.version, c.public, c.private, c.hidden, c.created_at,
       IFNULL(u.reveals, 0)
  FROM codes c LEFT JOIN usage u ON u.container_id = c.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanCode(s scanner) (model.StoredCode, error) {
	var sc model.StoredCode
	err := s.Scan(&sc.Name, &sc.ID, &sc.Payload, &sc.Version,
		&sc.Counts.Public, &sc.Counts.Private, &sc.Counts.Hidden, &sc.CreatedAt, &sc.Reveals)
	return sc, err
}

// ListCodes возвращает все коды, отсортированные по created_at DESC.
func (r *CodeRepositorySQLite) ListCodes(ctx context.Context) ([]model.StoredCode, error) {
	rows, err := r.db.QueryContext(ctx, selectCodes+` ORDER BY c.created_at DESC, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.StoredCode
	for rows.Next() {
		sc, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

// GetCodeByName возвращает код по точному имени.
func (r *CodeRepositorySQLite) GetCodeByName(ctx context.Context, name string) (*model.StoredCode, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	sc, err := scanCode(r.db.QueryRowContext(ctx, selectCodes+` WHERE c.name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, err
	}
	return &sc, nil
}

// Current возвращает число показов контейнера (0, если показов не было).
func (r *CodeRepositorySQLite) Current(ctx context.Context, containerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT reveals FROM usage WHERE container_id = ?`, containerID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Increment атомарно увеличивает счётчик показов и возвращает новое значение.
func (r *CodeRepositorySQLite) Increment(ctx context.Context, containerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `INSERT INTO usage(container_id, reveals, updated_at) VALUES(?, 1, ?)
        ON CONFLICT(container_id) DO UPDATE SET reveals = reveals + 1, updated_at = excluded.updated_at
        RETURNING reveals`, containerID, time.Now().UnixMilli()).Scan(&n)
	return n, err
}
