package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"CodeVault/internal/codec"
	"CodeVault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T, login string) *CodeRepositorySQLite {
	t.Helper()
	r, _, err := OpenForUser(t.TempDir(), login)
	require.NoError(t, err)
	require.NoError(t, r.Migrate())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func testPayload(t *testing.T, id string, createdAt int64) string {
	t.Helper()
	p, err := codec.Encode(&model.Container{
		ID:        id,
		Version:   model.CurrentVersion,
		Name:      id,
		CreatedAt: createdAt,
		Layers: []model.Layer{
			{ID: "L-1", Class: model.ClassPublic, Name: "p", Payload: "hello"},
			{ID: "L-2", Class: model.ClassHidden, Name: "h", Payload: "x"},
		},
	})
	require.NoError(t, err)
	return p
}

func TestOpenForUser_And_Migrate(t *testing.T) {
	base := t.TempDir()
	r, dbPath, err := OpenForUser(base, "john")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, filepath.Join(base, "john", "client.sqlite"), dbPath)
	require.NoError(t, r.Migrate())
	// повторная миграция идемпотентна
	require.NoError(t, r.Migrate())
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	_, _, err = OpenForUser(base, "")
	assert.Error(t, err)
}

func TestSaveCode_ThenGetAndList(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t, "ann")

	list, err := r.ListCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	sc, err := r.SaveCode(ctx, "first", testPayload(t, "c-1", 1000))
	require.NoError(t, err)
	assert.Equal(t, "c-1", sc.ID)
	assert.Equal(t, model.Counts{Public: 1, Hidden: 1}, sc.Counts)

	_, err = r.SaveCode(ctx, "second", testPayload(t, "c-2", 2000))
	require.NoError(t, err)

	list, err = r.ListCodes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name, "newest first")
	assert.Equal(t, "first", list[1].Name)

	got, err := r.GetCodeByName(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, sc.Payload, got.Payload)
	assert.Equal(t, model.CurrentVersion, got.Version)
	assert.Zero(t, got.Reveals)
}

func TestSaveCode_Errors(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t, "bob")

	_, err := r.SaveCode(ctx, "bad name", testPayload(t, "c", 1))
	assert.Error(t, err)

	_, err = r.SaveCode(ctx, "plain", "https://example.com")
	assert.ErrorIs(t, err, codec.ErrNotThisFormat)

	_, err = r.SaveCode(ctx, "dup", testPayload(t, "c-1", 1))
	require.NoError(t, err)
	_, err = r.SaveCode(ctx, "dup", testPayload(t, "c-2", 1))
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = r.GetCodeByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsageCounter(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t, "eve")

	n, err := r.Current(ctx, "c-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := 1; want <= 3; want++ {
		n, err = r.Increment(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err = r.Current(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// счётчик виден в сохранённом коде
	_, err = r.SaveCode(ctx, "counted", testPayload(t, "c-1", 1))
	require.NoError(t, err)
	sc, err := r.GetCodeByName(ctx, "counted")
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Reveals)
}
