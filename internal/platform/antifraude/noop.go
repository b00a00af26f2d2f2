package antifraude

import (
	"context"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// Noop é usado quando o limite de requisições está desligado.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(ctx context.Context, chave string) error {
	return nil
}

var _ domain.Antifraude = Noop{}
