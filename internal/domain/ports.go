package domain

import (
	"context"
	"time"
)

type PerfilRepository interface {
	Create(ctx context.Context, p Perfil) error
	FindByID(ctx context.Context, id PerfilID) (Perfil, error)
	FindByEmail(ctx context.Context, email string) (Perfil, error)
	ExisteDuplicado(ctx context.Context, email, matricula string) (bool, error)
	// ExisteDuplicadoDeOutro ignora o próprio perfil, para edições que mantêm e-mail ou matrícula.
	ExisteDuplicadoDeOutro(ctx context.Context, id PerfilID, email, matricula string) (bool, error)
	ListPorStatus(ctx context.Context, status StatusCadastro) ([]Perfil, error)
	AtualizarCadastro(ctx context.Context, id PerfilID, status StatusCadastro, observacoes string) error
	AtualizarPapel(ctx context.Context, id PerfilID, papel Papel) error
	AtualizarDados(ctx context.Context, p Perfil) error
}

type EleicaoRepository interface {
	CreateComCargos(ctx context.Context, e Eleicao, cargos []Cargo) error
	FindByID(ctx context.Context, id EleicaoID) (Eleicao, error)
	Detalhar(ctx context.Context, id EleicaoID) (Eleicao, error)
	List(ctx context.Context) ([]Eleicao, error)
	AtualizarStatus(ctx context.Context, id EleicaoID, status StatusEleicao) error
	PublicarResultados(ctx context.Context, id EleicaoID) error
}

type CandidatoRepository interface {
	FindCargo(ctx context.Context, id CargoID) (Cargo, error)
	FindByID(ctx context.Context, id CandidatoID) (Candidato, error)
	ContarPorCargo(ctx context.Context, cargoID CargoID) (int64, error)
	Create(ctx context.Context, c Candidato) error
	Delete(ctx context.Context, id CandidatoID) error
}

type AcaoRepository interface {
	Create(ctx context.Context, a AcaoPendente) error
	FindByID(ctx context.Context, id AcaoID) (AcaoPendente, error)
	ListPendentes(ctx context.Context) ([]AcaoPendente, error)
	Revisar(ctx context.Context, id AcaoID, status StatusAcao, revisor PerfilID, observacoes string, quando time.Time) error
}

type AuditoriaRepository interface {
	Registrar(ctx context.Context, r RegistroAuditoria) error
}

// SessaoRepository concentra as escritas do emissor de sessões.
type SessaoRepository interface {
	FindByEleitor(ctx context.Context, eleitorID PerfilID, eleicaoID EleicaoID) (SessaoVotacao, error)
	// CriarSeAusente devolve false quando outra requisição já criou a sessão para o mesmo par.
	CriarSeAusente(ctx context.Context, s SessaoVotacao) (bool, error)
	Rotacionar(ctx context.Context, id SessaoID, tokenAnterior, novoToken string, expiraEm time.Time) (bool, error)
	ContarVotos(ctx context.Context, id SessaoID) (int64, error)
}

// Urna abre a unidade de trabalho em que uma cédula é validada e gravada.
type Urna interface {
	Transacao(ctx context.Context, fn func(ctx context.Context, tx UrnaTx) error) error
}

// UrnaTx expõe as leituras e escritas de uma transação de voto.
type UrnaTx interface {
	// SessaoPorToken bloqueia a linha da sessão até o fim da transação.
	SessaoPorToken(ctx context.Context, token string) (SessaoVotacao, error)
	Eleicao(ctx context.Context, id EleicaoID) (Eleicao, error)
	Cargo(ctx context.Context, id CargoID) (Cargo, error)
	Candidato(ctx context.Context, id CandidatoID) (Candidato, error)
	VotoExiste(ctx context.Context, sessaoID SessaoID, cargoID CargoID) (bool, error)
	InserirVoto(ctx context.Context, v Voto) error
	ContarVotosSessao(ctx context.Context, sessaoID SessaoID) (int64, error)
	// ContarCargosVotaveis ignora cargos sem candidatos, que nunca recebem voto.
	ContarCargosVotaveis(ctx context.Context, eleicaoID EleicaoID) (int64, error)
	MarcarVotou(ctx context.Context, sessaoID SessaoID) error
}

type ApuracaoRepository interface {
	Apurar(ctx context.Context) ([]LinhaApuracao, error)
	// Participacao devolve ErrNotFound quando a eleição não existe; Percentual fica a cargo do chamador.
	Participacao(ctx context.Context, eleicaoID EleicaoID) (Participacao, error)
}

type Contador interface {
	Incrementar(ctx context.Context, chave string, delta int64) (int64, error)
	Obter(ctx context.Context, chave string) (int64, error)
	ObterTodos(ctx context.Context, chaves []string) (map[string]int64, error)
}

type Fila interface {
	PublicarVoto(ctx context.Context, evento EventoVoto) error
	ConsumirVotos(ctx context.Context, handler func(context.Context, EventoVoto) error) error
}

type Notificador interface {
	Publicar(ctx context.Context, n Notificacao) error
}

type Antifraude interface {
	Validar(ctx context.Context, chave string) error
}

type Clock interface {
	Agora() time.Time
}
