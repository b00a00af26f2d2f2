// Pacote voting implementa o serviço de cédulas: emissão de sessões, registro de votos e apuração.
package voting

import (
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
)

const sessaoTTLPadrao = 30 * time.Minute

// Dependencias agrupa as portas usadas pelo serviço. Contador, Fila e Antifraude são opcionais.
type Dependencias struct {
	Perfis     domain.PerfilRepository
	Eleicoes   domain.EleicaoRepository
	Sessoes    domain.SessaoRepository
	Urna       domain.Urna
	Apuracao   domain.ApuracaoRepository
	Contador   domain.Contador
	Fila       domain.Fila
	Antifraude domain.Antifraude
	Clock      domain.Clock
	IDs        *ids.Generator
	SessaoTTL  time.Duration
}

// Service concentra as regras da cédula e delega persistência às portas do domínio.
type Service struct {
	perfis     domain.PerfilRepository
	eleicoes   domain.EleicaoRepository
	sessoes    domain.SessaoRepository
	urna       domain.Urna
	apuracao   domain.ApuracaoRepository
	contador   domain.Contador
	fila       domain.Fila
	antifraude domain.Antifraude
	clock      domain.Clock
	ids        *ids.Generator
	sessaoTTL  time.Duration
	novoToken  func() (string, error)
}

func NewService(deps Dependencias) *Service {
	if deps.IDs == nil {
		deps.IDs = ids.DefaultGenerator()
	}
	if deps.SessaoTTL <= 0 {
		deps.SessaoTTL = sessaoTTLPadrao
	}
	return &Service{
		perfis:     deps.Perfis,
		eleicoes:   deps.Eleicoes,
		sessoes:    deps.Sessoes,
		urna:       deps.Urna,
		apuracao:   deps.Apuracao,
		contador:   deps.Contador,
		fila:       deps.Fila,
		antifraude: deps.Antifraude,
		clock:      deps.Clock,
		ids:        deps.IDs,
		sessaoTTL:  deps.SessaoTTL,
		novoToken:  ids.NovoToken,
	}
}
