package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义 JWT 负载，SessionID 对应 sessions 表，用于注销
type Claims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer 负责签发和校验 token
type TokenIssuer struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Generate 为一次登录会话签发 JWT
func (ti TokenIssuer) Generate(userID uint, sessionID, role string, now time.Time) (string, time.Time, error) {
	ttl := ti.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	expires := now.Add(ttl)
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.Issuer,
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse 解析并验证 JWT，只接受 HS256
func (ti TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if ti.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(ti.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(ti.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.SessionID == "" {
		return nil, errors.New("token has no session")
	}
	return claims, nil
}
