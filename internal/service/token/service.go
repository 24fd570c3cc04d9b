// Package token exchanges the configured service API key for signed
// admin tokens.
package token

import (
	"context"
	"fmt"

	"github.com/endosim/pk-api/internal/model"
	"github.com/endosim/pk-api/pkg/auth"
	apperrors "github.com/endosim/pk-api/pkg/errors"
	"github.com/endosim/pk-api/pkg/logger"
	"github.com/endosim/pk-api/pkg/security"
)

// Servicer defines the token exchange operation.
type Servicer interface {
	IssueToken(ctx context.Context, apiKey string) (*model.TokenResponse, error)
}

type Service struct {
	hasher  security.KeyHasher
	jwt     auth.JWTService
	keyHash string
	logger  *logger.Logger
}

// NewService wires the hasher and signer against the configured
// API key hash. An empty hash disables the exchange entirely.
func NewService(hasher security.KeyHasher, jwt auth.JWTService, keyHash string, logger *logger.Logger) *Service {
	return &Service{
		hasher:  hasher,
		jwt:     jwt,
		keyHash: keyHash,
		logger:  logger,
	}
}

// IssueToken verifies the presented key against the configured hash
// and signs a short-lived admin token.
func (s *Service) IssueToken(ctx context.Context, apiKey string) (*model.TokenResponse, error) {
	if s.keyHash == "" {
		return nil, apperrors.Unauthorized(fmt.Errorf("no api key configured"))
	}
	if err := s.hasher.Compare(s.keyHash, apiKey); err != nil {
		s.logger.Warn("Rejected token request", "reason", "api key mismatch")
		return nil, apperrors.Unauthorized(err)
	}

	token, expiresAt, err := s.jwt.GenerateToken("service", auth.ScopeAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("Issued service token", "expires_at", expiresAt)
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
