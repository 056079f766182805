package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/token"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

const refreshTokenColumns = `id, user_id, family_id, token_hash, is_valid, expires_at, created_at, updated_at`

type RefreshTokenRepository struct {
	db Pool
}

func NewRefreshTokenRepository(conn *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: conn.Pool}
}

// FindByTokenValue looks a token up by its plaintext value.
func (r *RefreshTokenRepository) FindByTokenValue(ctx context.Context, value string) (model.RefreshToken, error) {
	const query = `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`

	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, token.HashRefreshValue(value)).Scan(
		&rt.ID, &rt.UserID, &rt.FamilyID, &rt.TokenHash, &rt.IsValid,
		&rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, rt model.RefreshToken) error {
	return insertRefreshToken(ctx, r.db, rt)
}

func (r *RefreshTokenRepository) MarkInvalid(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET is_valid = FALSE, updated_at = NOW()
        WHERE id = $1 AND is_valid = TRUE
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to invalidate refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) MarkFamilyInvalid(ctx context.Context, userID uuid.UUID, familyID string) error {
	const query = `
        UPDATE refresh_tokens SET is_valid = FALSE, updated_at = NOW()
        WHERE user_id = $1 AND family_id = $2 AND is_valid = TRUE
    `
	if _, err := r.db.Exec(ctx, query, userID, familyID); err != nil {
		return fmt.Errorf("failed to invalidate refresh token family: %w", err)
	}
	return nil
}

// Rotate invalidates the current row and inserts its successor atomically.
// Only the caller whose conditional update hits the row gets to insert.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, currentID uuid.UUID, next model.RefreshToken) error {
	const query = `
        UPDATE refresh_tokens SET is_valid = FALSE, updated_at = NOW()
        WHERE id = $1 AND is_valid = TRUE
    `
	return WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		tag, err := tx.Exec(ctx, query, currentID)
		if err != nil {
			return fmt.Errorf("failed to invalidate rotated refresh token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrTokenAlreadyRotated
		}

		return insertRefreshToken(ctx, tx, next)
	})
}

// PurgeInvalid deletes up to limit rows that were invalidated before the
// cutoff. Rows that are expired but still valid are kept so that presenting
// them keeps failing with ErrExpired; they become purgeable once that use
// marks them invalid. The deleted rows are handed to archive inside the
// transaction.
func (r *RefreshTokenRepository) PurgeInvalid(ctx context.Context, before time.Time, limit int, archive model.ArchiveFunc) (int, error) {
	const query = `
        DELETE FROM refresh_tokens WHERE id IN (
            SELECT id FROM refresh_tokens
            WHERE is_valid = FALSE AND updated_at < $1
            ORDER BY updated_at
            LIMIT $2
            FOR UPDATE SKIP LOCKED
        )
        RETURNING ` + refreshTokenColumns

	var purged int
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		rows, err := tx.Query(ctx, query, before, limit)
		if err != nil {
			return fmt.Errorf("failed to purge refresh tokens: %w", err)
		}
		defer rows.Close()

		var tokens []model.RefreshToken
		for rows.Next() {
			var rt model.RefreshToken
			if err := rows.Scan(
				&rt.ID, &rt.UserID, &rt.FamilyID, &rt.TokenHash, &rt.IsValid,
				&rt.ExpiresAt, &rt.CreatedAt, &rt.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan purged refresh token: %w", err)
			}
			tokens = append(tokens, rt)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate purged refresh tokens: %w", err)
		}

		if archive != nil && len(tokens) > 0 {
			if err := archive(ctx, tokens); err != nil {
				return fmt.Errorf("failed to archive purged refresh tokens: %w", err)
			}
		}

		purged = len(tokens)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func insertRefreshToken(ctx context.Context, db DBTX, rt model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, user_id, family_id, token_hash, is_valid, expires_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
    `

	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}

	_, err := db.Exec(ctx, query,
		rt.ID, rt.UserID, rt.FamilyID, rt.TokenHash, rt.IsValid, rt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}
