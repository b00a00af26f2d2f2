package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

var ErrTokenInvalido = errors.New("token de acesso invalido")

type Claims struct {
	UserID         domain.PerfilID       `json:"user_id"`
	Papel          domain.Papel          `json:"papel"`
	StatusCadastro domain.StatusCadastro `json:"status_cadastro"`
	jwt.RegisteredClaims
}

// Emissor assina e valida tokens HS256.
type Emissor struct {
	segredo []byte
	issuer  string
	ttl     time.Duration
	clock   domain.Clock
}

func NewEmissor(segredo, issuer string, ttl time.Duration, clock domain.Clock) *Emissor {
	return &Emissor{
		segredo: []byte(segredo),
		issuer:  issuer,
		ttl:     ttl,
		clock:   clock,
	}
}

func (e *Emissor) Emitir(p domain.Perfil) (string, error) {
	agora := e.clock.Agora()
	claims := Claims{
		UserID:         p.ID,
		Papel:          p.Papel,
		StatusCadastro: p.StatusCadastro,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(p.ID),
			Issuer:    e.issuer,
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(agora.Add(e.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.segredo)
	if err != nil {
		return "", fmt.Errorf("auth: assinar token: %w", err)
	}
	return token, nil
}

func (e *Emissor) Validar(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return e.segredo, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(e.issuer),
		jwt.WithTimeFunc(e.clock.Agora),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalido, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}
