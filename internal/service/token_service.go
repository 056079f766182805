package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/villa-auth/internal/logger"
	"github.com/dtroode/villa-auth/internal/model"
	"github.com/dtroode/villa-auth/internal/token"
)

// MismatchPolicy selects what is invalidated when an access token does not
// match the refresh token it is presented with.
type MismatchPolicy string

const (
	// MismatchInvalidateRow invalidates only the presented refresh token.
	MismatchInvalidateRow MismatchPolicy = "row"
	// MismatchInvalidateFamily invalidates the presented token's whole family.
	MismatchInvalidateFamily MismatchPolicy = "family"
)

// TokenConfig holds token lifetimes and policy.
type TokenConfig struct {
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	MismatchPolicy MismatchPolicy
}

// TokenService issues token pairs and coordinates refresh token rotation,
// reuse detection and revocation.
type TokenService struct {
	codec       model.TokenCodec
	store       model.RefreshTokenStore
	credentials model.CredentialStore
	reporter    model.SecurityReporter
	logger      *logger.Logger
	cfg         TokenConfig
	now         func() time.Time
}

func NewTokenService(
	codec model.TokenCodec,
	store model.RefreshTokenStore,
	credentials model.CredentialStore,
	reporter model.SecurityReporter,
	logger *logger.Logger,
	cfg TokenConfig,
) *TokenService {
	if cfg.MismatchPolicy == "" {
		cfg.MismatchPolicy = MismatchInvalidateRow
	}
	return &TokenService{
		codec:       codec,
		store:       store,
		credentials: credentials,
		reporter:    reporter,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Issue starts a new token family for the user and persists its first refresh token.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, username, role string) (model.TokenPair, error) {
	familyID := token.NewFamilyID()

	pair, rt, err := s.mint(userID, username, role, familyID)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.store.Insert(ctx, rt); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist refresh: %w", err)
	}

	s.logger.Debug("Token service: token family issued",
		"user_id", userID.String(),
		"family_id", familyID)

	return pair, nil
}

// Refresh validates the presented pair and rotates the refresh token.
//
// The checks run in a fixed order: unknown refresh token, access token
// mismatch, reuse of an invalidated token, expiry. Rotation itself is a
// conditional update, so of several concurrent callers only one succeeds;
// the others are treated as reuse.
func (s *TokenService) Refresh(ctx context.Context, accessToken, refreshToken string) (model.TokenPair, error) {
	rt, err := s.store.FindByTokenValue(ctx, refreshToken)
	if errors.Is(err, model.ErrNotFound) {
		return model.TokenPair{}, model.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to find refresh token: %w", err)
	}

	claims, ok := s.matchAccessToken(accessToken, rt)
	if !ok {
		s.handleMismatch(ctx, rt)
		return model.TokenPair{}, model.ErrInvalidToken
	}

	if !rt.IsValid {
		s.invalidateFamily(ctx, rt, model.EventTokenReuse)
		return model.TokenPair{}, model.ErrTokenReuseDetected
	}

	if rt.Expired(s.now()) {
		if err := s.store.MarkInvalid(ctx, rt.ID); err != nil {
			s.logger.Error("Token service: failed to invalidate expired refresh token",
				"user_id", rt.UserID.String(),
				"family_id", rt.FamilyID,
				"error", err.Error())
		}
		return model.TokenPair{}, model.ErrExpired
	}

	roles, err := s.credentials.RolesOf(ctx, rt.UserID)
	if errors.Is(err, model.ErrNotFound) {
		s.invalidateFamily(ctx, rt, "")
		return model.TokenPair{}, model.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to resolve roles: %w", err)
	}

	pair, next, err := s.mint(rt.UserID, claims.Username, primaryRole(roles), rt.FamilyID)
	if err != nil {
		return model.TokenPair{}, err
	}

	err = s.store.Rotate(ctx, rt.ID, next)
	if errors.Is(err, model.ErrTokenAlreadyRotated) {
		s.invalidateFamily(ctx, rt, model.EventRotationRace)
		return model.TokenPair{}, model.ErrTokenReuseDetected
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("rotate refresh: %w", err)
	}

	s.logger.Debug("Token service: refresh token rotated",
		"user_id", rt.UserID.String(),
		"family_id", rt.FamilyID)

	return pair, nil
}

// Revoke invalidates the family of the presented refresh token. Unknown and
// already invalid tokens are a no-op. A mismatched pair gets the same
// treatment as on refresh.
func (s *TokenService) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	rt, err := s.store.FindByTokenValue(ctx, refreshToken)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find refresh token: %w", err)
	}

	if !rt.IsValid {
		return nil
	}

	if _, ok := s.matchAccessToken(accessToken, rt); !ok {
		s.handleMismatch(ctx, rt)
		return model.ErrInvalidToken
	}

	if err := s.store.MarkFamilyInvalid(ctx, rt.UserID, rt.FamilyID); err != nil {
		return fmt.Errorf("revoke family: %w", err)
	}

	s.logger.Info("Token service: token family revoked",
		"user_id", rt.UserID.String(),
		"family_id", rt.FamilyID)

	return nil
}

func (s *TokenService) mint(userID uuid.UUID, username, role, familyID string) (model.TokenPair, model.RefreshToken, error) {
	now := s.now()

	access, err := s.codec.Encode(model.AccessClaims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		FamilyID:  familyID,
		ExpiresAt: now.Add(s.cfg.AccessTTL),
	})
	if err != nil {
		return model.TokenPair{}, model.RefreshToken{}, fmt.Errorf("issue access: %w", err)
	}

	value, err := token.NewRefreshValue()
	if err != nil {
		return model.TokenPair{}, model.RefreshToken{}, fmt.Errorf("issue refresh: %w", err)
	}

	rt := model.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		FamilyID:  familyID,
		TokenHash: token.HashRefreshValue(value),
		IsValid:   true,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return model.TokenPair{AccessToken: access, RefreshToken: value}, rt, nil
}

func (s *TokenService) matchAccessToken(accessToken string, rt model.RefreshToken) (model.AccessClaims, bool) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return model.AccessClaims{}, false
	}
	if claims.UserID != rt.UserID || claims.FamilyID != rt.FamilyID {
		return model.AccessClaims{}, false
	}
	return claims, true
}

func (s *TokenService) handleMismatch(ctx context.Context, rt model.RefreshToken) {
	s.report(ctx, model.EventTokenMismatch, rt)

	var err error
	switch s.cfg.MismatchPolicy {
	case MismatchInvalidateFamily:
		err = s.store.MarkFamilyInvalid(ctx, rt.UserID, rt.FamilyID)
	default:
		err = s.store.MarkInvalid(ctx, rt.ID)
	}
	if err != nil {
		s.logger.Error("Token service: failed to invalidate mismatched refresh token",
			"user_id", rt.UserID.String(),
			"family_id", rt.FamilyID,
			"error", err.Error())
	}
}

func (s *TokenService) invalidateFamily(ctx context.Context, rt model.RefreshToken, event model.SecurityEvent) {
	if event != "" {
		s.report(ctx, event, rt)
	}

	if err := s.store.MarkFamilyInvalid(ctx, rt.UserID, rt.FamilyID); err != nil {
		s.logger.Error("Token service: failed to invalidate token family",
			"user_id", rt.UserID.String(),
			"family_id", rt.FamilyID,
			"error", err.Error())
	}
}

func (s *TokenService) report(ctx context.Context, event model.SecurityEvent, rt model.RefreshToken) {
	if s.reporter == nil {
		return
	}
	s.reporter.Report(ctx, event, rt.UserID, rt.FamilyID)
}

func primaryRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	return roles[0]
}
