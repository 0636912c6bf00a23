package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"
	"github.com/cwrk-planet/room-broker/internal/metrics"
)

type TokenService struct {
	signer  TokenSigner
	allowed map[string]struct{} // пусто — любая роль
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTokenService(signer TokenSigner, allowedRoles []string, m *metrics.Metrics) *TokenService {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		if r = strings.TrimSpace(r); r != "" {
			allowed[r] = struct{}{}
		}
	}
	return &TokenService{
		signer:  signer,
		allowed: allowed,
		metrics: m,
		now:     time.Now,
	}
}

// IssueToken подписывает токен участника для комнаты. Существование комнаты не проверяется.
func (s *TokenService) IssueToken(ctx context.Context, roomID, role string) (string, error) {
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[role]; !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrRoleNotAllowed, role)
		}
	}

	tok, err := s.signer.SignRoomToken(roomID, role, s.now())
	if err != nil {
		if !errors.Is(err, domain.ErrTokenSigning) {
			err = fmt.Errorf("%w: %w", domain.ErrTokenSigning, err)
		}
		return "", err
	}
	s.metrics.TokenIssued()

	return tok, nil
}
