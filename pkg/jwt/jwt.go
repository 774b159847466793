// Package jwt emite y valida las credenciales del agente de sincronización.
// Las sesiones de usuario NO usan JWT: son tokens opacos validados en servidor.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Modos del agente. Solo un agente "real" cuenta para el estado de conexión.
const (
	ModeReal = "real"
	ModeMock = "mock"
)

// AgentClaims claims estándar más la identidad y el modo del agente.
type AgentClaims struct {
	jwt.RegisteredClaims
	AgentID string `json:"agent_id"`
	Mode    string `json:"mode"`
}

// IsReal informa si el token pertenece a un agente real (no simulado).
func (c *AgentClaims) IsReal() bool { return c.Mode == ModeReal }

// GenerateAgent firma un token HS256 para un agente. ttl <= 0 = sin vencimiento.
func GenerateAgent(secret, issuer, agentID, mode string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if agentID == "" {
		return "", fmt.Errorf("jwt: agent_id vacío")
	}
	if mode != ModeReal && mode != ModeMock {
		return "", fmt.Errorf("jwt: modo de agente inválido %q", mode)
	}
	now := time.Now()
	claims := AgentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  agentID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		AgentID: agentID,
		Mode:    mode,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAgent valida firma, emisor y vencimiento del token de agente.
func ParseAgent(secret, issuer, tokenString string) (*AgentClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &AgentClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AgentClaims)
	if !ok || !token.Valid || claims.AgentID == "" {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Mode != ModeReal && claims.Mode != ModeMock {
		return nil, fmt.Errorf("modo de agente inválido %q", claims.Mode)
	}
	return claims, nil
}
