package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HandshakeClaims are the identity claims the upstream auth service embeds
// in bearer tokens. The signature check here is a cheap local gate; the
// account oracle remains the authority on whether the account is valid.
type HandshakeClaims struct {
	Subject   string
	Username  string
	AvatarURL string
}

type TokenService struct {
	secretKey []byte
	issuer    string
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secretKey: []byte(secret),
		issuer:    "comms-backend",
	}
}

func (s *TokenService) GenerateToken(userID, username, avatarURL string) (string, error) {
	claims := jwt.MapClaims{
		"sub":        userID,
		"username":   username,
		"avatar_url": avatarURL,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iss":        s.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ParseClaims validates the signature and extracts the handshake claims.
func (s *TokenService) ParseClaims(tokenStr string) (*HandshakeClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("subject not found in token")
	}
	out := &HandshakeClaims{Subject: sub}
	if v, ok := claims["username"].(string); ok {
		out.Username = v
	}
	if v, ok := claims["avatar_url"].(string); ok {
		out.AvatarURL = v
	}
	return out, nil
}
