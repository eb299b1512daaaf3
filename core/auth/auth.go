package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 密码错误或未配置管理员密码
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims 歌词写接口使用的令牌
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer 签发与校验 HS256 令牌
type Issuer struct {
	secret       []byte
	expire       time.Duration
	passwordHash string
}

// NewIssuer passwordHash 为空时 Login 总是失败
func NewIssuer(secret string, expire time.Duration, passwordHash string) *Issuer {
	return &Issuer{secret: []byte(secret), expire: expire, passwordHash: passwordHash}
}

// Login 校验管理员密码并签发令牌
func (i *Issuer) Login(subject, password string) (string, error) {
	if i.passwordHash == "" || !CheckPasswordHash(password, i.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return i.GenerateToken(subject)
}

func (i *Issuer) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expire)),
			Issuer:    "lrcsync",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 校验签名与有效期
func (i *Issuer) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
