// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para os serviços de contas,
// catálogo de eleições e votação.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marcelojr/eleicao-estudantil/internal/app/contas"
	"github.com/marcelojr/eleicao-estudantil/internal/app/eleicoes"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/auth"
)

type Votacao interface {
	CriarSessao(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SessaoVotacao, error)
	RegistrarVoto(ctx context.Context, cedula domain.Cedula) error
	Resultados(ctx context.Context, privilegiado bool) ([]domain.Resultado, error)
	ResultadosEleicao(ctx context.Context, eleicaoID domain.EleicaoID, privilegiado bool) ([]domain.Resultado, error)
	Parcial(ctx context.Context, eleicaoID domain.EleicaoID) ([]domain.Parcial, error)
	Participacao(ctx context.Context, eleicaoID domain.EleicaoID) (domain.Participacao, error)
	SituacaoEleitor(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SituacaoEleitor, error)
}

type Contas interface {
	Registrar(ctx context.Context, c contas.NovoCadastro) (domain.Perfil, error)
	Autenticar(ctx context.Context, email, senha string) (domain.Perfil, string, error)
	AprovarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error
	RejeitarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error
	AlterarPapel(ctx context.Context, ator domain.Ator, id domain.PerfilID, papel domain.Papel) error
	ListarPendentes(ctx context.Context, ator domain.Ator) ([]domain.Perfil, error)
	AtualizarPerfil(ctx context.Context, ator domain.Ator, dados contas.DadosPerfil) (domain.Perfil, error)
}

type Eleicoes interface {
	CriarEleicao(ctx context.Context, ator domain.Ator, nova eleicoes.NovaEleicao) (eleicoes.Efeito, error)
	AdicionarCandidato(ctx context.Context, ator domain.Ator, novo eleicoes.NovoCandidato) (eleicoes.Efeito, error)
	RemoverCandidato(ctx context.Context, ator domain.Ator, eleicaoID domain.EleicaoID, candidatoID domain.CandidatoID) (eleicoes.Efeito, error)
	PublicarResultados(ctx context.Context, ator domain.Ator, eleicaoID domain.EleicaoID) (eleicoes.Efeito, error)
	ListarEleicoes(ctx context.Context) ([]domain.Eleicao, error)
	Detalhar(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error)
	ListarAcoes(ctx context.Context, ator domain.Ator) ([]domain.AcaoPendente, error)
	AprovarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) (eleicoes.Efeito, error)
	RejeitarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) error
}

// Autenticador valida o token de acesso enviado pelo cliente.
type Autenticador interface {
	Validar(token string) (*auth.Claims, error)
}

// Painel atende a conexão websocket de uma eleição já autorizada.
type Painel interface {
	Atender(w http.ResponseWriter, r *http.Request, eleicaoID domain.EleicaoID) error
}

type Dependencias struct {
	Votacao  Votacao
	Contas   Contas
	Eleicoes Eleicoes
	Tokens   Autenticador
	Painel   Painel
	Logger   *slog.Logger
}

type API struct {
	votacao  Votacao
	contas   Contas
	eleicoes Eleicoes
	tokens   Autenticador
	painel   Painel
	logger   *slog.Logger
}

func New(deps Dependencias) *API {
	l := deps.Logger
	if l == nil {
		l = slog.Default()
	}
	return &API{
		votacao:  deps.Votacao,
		contas:   deps.Contas,
		eleicoes: deps.Eleicoes,
		tokens:   deps.Tokens,
		painel:   deps.Painel,
		logger:   l,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	mux.HandleFunc("POST /contas", a.registrarConta)
	mux.HandleFunc("POST /login", a.login)
	mux.HandleFunc("GET /contas/pendentes", a.protegido(acessoEquipe, a.listarPendentes))
	mux.HandleFunc("POST /contas/{id}/aprovar", a.protegido(acessoEquipe, a.aprovarCadastro))
	mux.HandleFunc("POST /contas/{id}/rejeitar", a.protegido(acessoEquipe, a.rejeitarCadastro))
	mux.HandleFunc("PUT /contas/{id}/papel", a.protegido(acessoAdministrador, a.alterarPapel))
	mux.HandleFunc("PUT /contas/eu", a.protegido(acessoAutenticado, a.atualizarPerfil))

	mux.HandleFunc("GET /eleicoes", a.protegido(acessoAutenticado, a.listarEleicoes))
	mux.HandleFunc("POST /eleicoes", a.protegido(acessoEquipe, a.criarEleicao))
	mux.HandleFunc("GET /eleicoes/{id}", a.protegido(acessoAutenticado, a.detalharEleicao))
	mux.HandleFunc("POST /eleicoes/{id}/candidatos", a.protegido(acessoEquipe, a.adicionarCandidato))
	mux.HandleFunc("DELETE /eleicoes/{id}/candidatos/{candidatoID}", a.protegido(acessoEquipe, a.removerCandidato))
	mux.HandleFunc("POST /eleicoes/{id}/publicar", a.protegido(acessoEquipe, a.publicarResultados))

	mux.HandleFunc("GET /acoes", a.protegido(acessoAdministrador, a.listarAcoes))
	mux.HandleFunc("POST /acoes/{id}/aprovar", a.protegido(acessoAdministrador, a.aprovarAcao))
	mux.HandleFunc("POST /acoes/{id}/rejeitar", a.protegido(acessoAdministrador, a.rejeitarAcao))

	mux.HandleFunc("POST /eleicoes/{id}/sessoes", a.protegido(acessoAutenticado, a.criarSessao))
	mux.HandleFunc("GET /eleicoes/{id}/sessoes/minha", a.protegido(acessoAutenticado, a.minhaSessao))
	mux.HandleFunc("POST /votos", a.protegido(acessoAutenticado, a.registrarVoto))
	mux.HandleFunc("GET /resultados", a.protegido(acessoAutenticado, a.resultados))
	mux.HandleFunc("GET /eleicoes/{id}/resultados", a.protegido(acessoAutenticado, a.resultadosEleicao))
	mux.HandleFunc("GET /eleicoes/{id}/parcial", a.protegido(acessoEquipe, a.parcial))
	mux.HandleFunc("GET /eleicoes/{id}/participacao", a.protegido(acessoEquipe, a.participacao))

	if a.painel != nil {
		// Navegadores não enviam cabeçalhos no handshake; o token vem na query.
		mux.HandleFunc("GET /ws/eleicoes/{id}", a.protegidoComQuery(acessoEquipe, a.painelTempoReal))
	}
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
