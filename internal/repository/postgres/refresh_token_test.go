package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/token"
)

var refreshColumns = []string{"id", "user_id", "family_id", "token_hash", "is_valid", "expires_at", "created_at", "updated_at"}

const (
	qInsertRefresh = `(?s)^INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\$2,\$3,\$4,\$5,\$6,NOW\(\),NOW\(\)\)\s*$`
	qMarkRow       = `(?s)^UPDATE\s+refresh_tokens\s+SET\s+is_valid\s*=\s*FALSE.*WHERE\s+id\s*=\s*\$1\s+AND\s+is_valid\s*=\s*TRUE\s*$`
	qMarkFamily    = `(?s)^UPDATE\s+refresh_tokens\s+SET\s+is_valid\s*=\s*FALSE.*WHERE\s+user_id\s*=\s*\$1\s+AND\s+family_id\s*=\s*\$2\s+AND\s+is_valid\s*=\s*TRUE\s*$`
	qPurge         = `(?s)^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+id\s+IN\s*\(.*WHERE\s+is_valid\s*=\s*FALSE\s+AND\s+updated_at\s*<\s*\$1\s+ORDER\s+BY.*FOR\s+UPDATE\s+SKIP\s+LOCKED.*RETURNING\s+id`
)

func sampleToken() model.RefreshToken {
	return model.RefreshToken{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		FamilyID:  token.NewFamilyID(),
		TokenHash: token.HashRefreshValue("value"),
		IsValid:   true,
		ExpiresAt: time.Now().Add(2 * time.Minute),
	}
}

func TestRefreshTokenRepository_FindByTokenValue(t *testing.T) {
	ctx := context.Background()
	q := `(?s)^SELECT\s+id,\s*user_id.*FROM\s+refresh_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s*$`

	t.Run("found by hash of the value", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		rt := sampleToken()
		now := time.Now()
		mock.ExpectQuery(q).
			WithArgs(token.HashRefreshValue("value")).
			WillReturnRows(pgxmock.NewRows(refreshColumns).
				AddRow(rt.ID, rt.UserID, rt.FamilyID, rt.TokenHash, false, rt.ExpiresAt, now, now))

		got, err := NewRefreshTokenRepository(conn).FindByTokenValue(ctx, "value")
		require.NoError(t, err)
		assert.Equal(t, rt.ID, got.ID)
		assert.Equal(t, rt.UserID, got.UserID)
		assert.Equal(t, rt.FamilyID, got.FamilyID)
		assert.False(t, got.IsValid)
		assert.True(t, rt.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("not found", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(q).WillReturnRows(pgxmock.NewRows(refreshColumns))

		_, err := NewRefreshTokenRepository(conn).FindByTokenValue(ctx, "missing")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectQuery(q).WillReturnError(errors.New("db down"))

		_, err := NewRefreshTokenRepository(conn).FindByTokenValue(ctx, "value")
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrNotFound)
	})
}

func TestRefreshTokenRepository_Insert(t *testing.T) {
	ctx := context.Background()
	rt := sampleToken()

	conn, mock := newMockConnection(t)
	mock.ExpectExec(qInsertRefresh).
		WithArgs(rt.ID, rt.UserID, rt.FamilyID, rt.TokenHash, true, rt.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewRefreshTokenRepository(conn).Insert(ctx, rt))
}

func TestRefreshTokenRepository_Insert_GeneratesID(t *testing.T) {
	ctx := context.Background()
	rt := sampleToken()
	rt.ID = uuid.Nil

	conn, mock := newMockConnection(t)
	mock.ExpectExec(qInsertRefresh).
		WithArgs(pgxmock.AnyArg(), rt.UserID, rt.FamilyID, rt.TokenHash, true, rt.ExpiresAt).
		WillReturnError(errors.New("duplicate key"))

	err := NewRefreshTokenRepository(conn).Insert(ctx, rt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create refresh token")
}

func TestRefreshTokenRepository_MarkInvalid(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	conn, mock := newMockConnection(t)
	mock.ExpectExec(qMarkRow).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(qMarkRow).WithArgs(id).WillReturnError(errors.New("db down"))

	repo := NewRefreshTokenRepository(conn)
	require.NoError(t, repo.MarkInvalid(ctx, id))
	require.Error(t, repo.MarkInvalid(ctx, id))
}

func TestRefreshTokenRepository_MarkFamilyInvalid(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	conn, mock := newMockConnection(t)
	mock.ExpectExec(qMarkFamily).WithArgs(userID, "JTIfamily").WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	// already invalid family is not an error
	mock.ExpectExec(qMarkFamily).WithArgs(userID, "JTIfamily").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRefreshTokenRepository(conn)
	require.NoError(t, repo.MarkFamilyInvalid(ctx, userID, "JTIfamily"))
	require.NoError(t, repo.MarkFamilyInvalid(ctx, userID, "JTIfamily"))
}

func TestRefreshTokenRepository_Rotate(t *testing.T) {
	ctx := context.Background()
	currentID := uuid.New()
	next := sampleToken()

	t.Run("winner commits", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectExec(qMarkRow).WithArgs(currentID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(qInsertRefresh).
			WithArgs(next.ID, next.UserID, next.FamilyID, next.TokenHash, true, next.ExpiresAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, NewRefreshTokenRepository(conn).Rotate(ctx, currentID, next))
	})

	t.Run("loser rolls back without inserting", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectExec(qMarkRow).WithArgs(currentID).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err := NewRefreshTokenRepository(conn).Rotate(ctx, currentID, next)
		require.ErrorIs(t, err, model.ErrTokenAlreadyRotated)
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectExec(qMarkRow).WithArgs(currentID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(qInsertRefresh).WillReturnError(errors.New("unique violation"))
		mock.ExpectRollback()

		err := NewRefreshTokenRepository(conn).Rotate(ctx, currentID, next)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrTokenAlreadyRotated)
	})
}

func TestRefreshTokenRepository_PurgeInvalid(t *testing.T) {
	ctx := context.Background()
	before := time.Now().Add(-time.Hour)
	a, b := sampleToken(), sampleToken()

	rows := func() *pgxmock.Rows {
		return pgxmock.NewRows(refreshColumns).
			AddRow(a.ID, a.UserID, a.FamilyID, a.TokenHash, false, a.ExpiresAt, before, before).
			AddRow(b.ID, b.UserID, b.FamilyID, b.TokenHash, false, b.ExpiresAt, before, before)
	}

	t.Run("archives then commits", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectQuery(qPurge).WithArgs(before, 10).WillReturnRows(rows())
		mock.ExpectCommit()

		var archived []model.RefreshToken
		n, err := NewRefreshTokenRepository(conn).PurgeInvalid(ctx, before, 10, func(_ context.Context, tokens []model.RefreshToken) error {
			archived = tokens
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, archived, 2)
		assert.Equal(t, a.ID, archived[0].ID)
		assert.Equal(t, b.FamilyID, archived[1].FamilyID)
	})

	t.Run("archive failure rolls back", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectQuery(qPurge).WithArgs(before, 10).WillReturnRows(rows())
		mock.ExpectRollback()

		n, err := NewRefreshTokenRepository(conn).PurgeInvalid(ctx, before, 10, func(context.Context, []model.RefreshToken) error {
			return errors.New("bucket unavailable")
		})
		require.Error(t, err)
		assert.Zero(t, n)
		assert.Contains(t, err.Error(), "bucket unavailable")
	})

	t.Run("nothing to purge skips archive", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectQuery(qPurge).WithArgs(before, 10).WillReturnRows(pgxmock.NewRows(refreshColumns))
		mock.ExpectCommit()

		n, err := NewRefreshTokenRepository(conn).PurgeInvalid(ctx, before, 10, func(context.Context, []model.RefreshToken) error {
			t.Fatal("archive must not be called")
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
