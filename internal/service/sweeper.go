package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
)

const archivePrefix = "refresh-tokens"

// SweeperConfig controls the refresh token sweeper.
type SweeperConfig struct {
	Interval  time.Duration
	Retention time.Duration
	BatchSize int
}

// Sweeper periodically removes long dead refresh tokens, archiving them first
// when an archive storage is configured.
type Sweeper struct {
	store   model.RefreshTokenStore
	archive model.Storage
	logger  *logger.Logger
	cfg     SweeperConfig
	now     func() time.Time
}

// NewSweeper creates a sweeper. archive may be nil.
func NewSweeper(store model.RefreshTokenStore, archive model.Storage, logger *logger.Logger, cfg SweeperConfig) *Sweeper {
	return &Sweeper{
		store:   store,
		archive: archive,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("Sweeper: sweep failed",
					"purged", n,
					"error", err.Error())
				continue
			}
			if n > 0 {
				s.logger.Info("Sweeper: purged refresh tokens", "purged", n)
			}
		}
	}
}

// SweepOnce purges batches until a short batch is returned.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.Retention)

	var archive model.ArchiveFunc
	if s.archive != nil {
		archive = s.archiveBatch
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := s.store.PurgeInvalid(ctx, cutoff, s.cfg.BatchSize, archive)
		if err != nil {
			return total, fmt.Errorf("failed to purge refresh tokens: %w", err)
		}
		total += n
		if n < s.cfg.BatchSize {
			return total, nil
		}
	}
}

type archivedToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FamilyID  string    `json:"family_id"`
	IsValid   bool      `json:"is_valid"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Sweeper) archiveBatch(ctx context.Context, tokens []model.RefreshToken) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rt := range tokens {
		if err := enc.Encode(archivedToken{
			ID:        rt.ID.String(),
			UserID:    rt.UserID.String(),
			FamilyID:  rt.FamilyID,
			IsValid:   rt.IsValid,
			ExpiresAt: rt.ExpiresAt.UTC(),
			CreatedAt: rt.CreatedAt.UTC(),
			UpdatedAt: rt.UpdatedAt.UTC(),
		}); err != nil {
			return fmt.Errorf("failed to encode archived token: %w", err)
		}
	}

	key := archiveKey(s.now())
	if err := s.archive.Upload(ctx, key, &buf, int64(buf.Len()), "application/x-ndjson"); err != nil {
		return fmt.Errorf("failed to upload archive %s: %w", key, err)
	}

	s.logger.Debug("Sweeper: archived refresh tokens",
		"key", key,
		"count", len(tokens))

	return nil
}

func archiveKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%d.jsonl", archivePrefix, t.Year(), t.Month(), t.Day(), t.UnixNano())
}
