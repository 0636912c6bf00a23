package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/room-broker/internal/domain"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenType    = "app"
	tokenVersion = 2
)

// RoomTokenSigner выпускает токены участника комнаты. Используется SigningMethodHS256.
type RoomTokenSigner struct {
	accessKey string
	secret    []byte
	ttl       time.Duration
}

func NewRoomTokenSigner(accessKey, secret string, ttl time.Duration) *RoomTokenSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RoomTokenSigner{
		accessKey: accessKey,
		secret:    []byte(secret),
		ttl:       ttl,
	}
}

type RoomClaims struct {
	AccessKey string `json:"access_key"`
	RoomID    string `json:"room_id"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	Version   int    `json:"version"`
	jwt.StandardClaims
}

// SignRoomToken — iat=now, exp=now+ttl, роль кладётся как есть.
func (s *RoomTokenSigner) SignRoomToken(roomID, role string, now time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: empty secret", domain.ErrTokenSigning)
	}

	claims := RoomClaims{
		AccessKey: s.accessKey,
		RoomID:    roomID,
		Role:      role,
		Type:      tokenType,
		Version:   tokenVersion,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenSigning, err)
	}
	return signed, nil
}

// ParseAndValidate проверяет подпись HS256 и exp/iat.
func (s *RoomTokenSigner) ParseAndValidate(tokenStr string) (*RoomClaims, error) {
	claims := &RoomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType || claims.Version != tokenVersion {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
