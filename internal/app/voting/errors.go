package voting

import (
	"errors"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

var (
	ErrNaoElegivel          = errors.New("eleitor nao elegivel")
	ErrEleicaoNaoEncontrada = errors.New("eleicao nao encontrada")
	ErrEleicaoInativa       = errors.New("eleicao fora do periodo de votacao")
	ErrJaVotou              = errors.New("eleitor ja votou nesta eleicao")
	ErrSessaoInvalida       = errors.New("sessao de votacao invalida")
	ErrSessaoExpirada       = errors.New("sessao de votacao expirada")
	ErrSessaoConsumida      = errors.New("sessao de votacao ja utilizada")
	ErrCandidatoInvalido    = errors.New("candidato nao pertence ao cargo ou a eleicao")
	ErrVotoDuplicado        = errors.New("cargo ja votado nesta sessao")
	ErrApuracao             = errors.New("falha ao apurar resultados")
	ErrLimiteExcedido       = domain.ErrLimiteExcedido
)

// Classes de erro expostas aos clientes da cédula.
const (
	ClasseElegibilidade = "elegibilidade"
	ClasseSessao        = "sessao"
	ClasseIntegridade   = "integridade"
	ClasseVotoDuplicado = "voto_duplicado"
	ClasseApuracao      = "apuracao"
	ClasseLimite        = "limite"
	ClasseNaoEncontrado = "nao_encontrado"
	ClasseInterno       = "interno"
)

// Classificar devolve a classe do erro; nil vira string vazia.
func Classificar(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNaoElegivel), errors.Is(err, ErrEleicaoInativa), errors.Is(err, ErrJaVotou):
		return ClasseElegibilidade
	case errors.Is(err, ErrSessaoInvalida), errors.Is(err, ErrSessaoExpirada), errors.Is(err, ErrSessaoConsumida):
		return ClasseSessao
	case errors.Is(err, ErrCandidatoInvalido):
		return ClasseIntegridade
	case errors.Is(err, ErrVotoDuplicado):
		return ClasseVotoDuplicado
	case errors.Is(err, ErrApuracao):
		return ClasseApuracao
	case errors.Is(err, ErrLimiteExcedido):
		return ClasseLimite
	case errors.Is(err, ErrEleicaoNaoEncontrada):
		return ClasseNaoEncontrado
	}
	return ClasseInterno
}
