package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SubjectUser marks tokens issued to operators via the login endpoint.
	SubjectUser = "user"
	// SubjectRobot marks tokens provisioned into robot firmware.
	SubjectRobot = "robot"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type Config struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type Claims struct {
	Kind       string `json:"kind"`
	UserID     string `json:"user_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	RobotID    string `json:"robot_id,omitempty"`
	Identifier string `json:"identificador,omitempty"`
	jwt.RegisteredClaims
}

// GenerateUserToken issues a signed access token for an operator.
func GenerateUserToken(config Config, userID, name, role string) (string, error) {
	ttl := config.TokenTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	now := time.Now()
	claims := Claims{
		Kind:   SubjectUser,
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GenerateRobotToken issues a signed credential for one robot. Robot tokens
// do not expire; they live in the robot's provisioned configuration and are
// revoked by disabling the robot.
func GenerateRobotToken(config Config, robotID, identifier string) (string, error) {
	claims := Claims{
		Kind:       SubjectRobot,
		RobotID:    robotID,
		Identifier: identifier,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign robot token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func ValidateToken(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
