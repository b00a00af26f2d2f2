package httpapi

import (
	"net/http"
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/app/voting"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// respostaCedula é o corpo estruturado das rotas de sessão e voto, inclusive nas falhas.
type respostaCedula struct {
	Success     bool       `json:"success"`
	TokenSessao string     `json:"token_sessao,omitempty"`
	ExpiraEm    *time.Time `json:"expira_em,omitempty"`
	Erro        string     `json:"erro,omitempty"`
	Classe      string     `json:"classe,omitempty"`
}

type votoRequest struct {
	TokenSessao string `json:"token_sessao"`
	EleicaoID   string `json:"eleicao_id"`
	CargoID     string `json:"cargo_id"`
	CandidatoID string `json:"candidato_id"`
}

func (a *API) criarSessao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	eleicaoID := domain.EleicaoID(r.PathValue("id"))

	sessao, err := a.votacao.CriarSessao(r.Context(), ator.ID, eleicaoID)
	if err != nil {
		a.falhaCedula(w, r, err, "eleicao", eleicaoID)
		return
	}

	expira := sessao.ExpiraEm
	responderJSON(w, http.StatusOK, respostaCedula{
		Success:     true,
		TokenSessao: sessao.Token,
		ExpiraEm:    &expira,
	})
}

func (a *API) registrarVoto(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	var req votoRequest
	if err := decodificar(r, &req); err != nil {
		responderJSON(w, http.StatusBadRequest, respostaCedula{Erro: err.Error(), Classe: voting.ClasseIntegridade})
		return
	}

	cedula := domain.Cedula{
		Token:       req.TokenSessao,
		EleicaoID:   domain.EleicaoID(req.EleicaoID),
		CargoID:     domain.CargoID(req.CargoID),
		CandidatoID: domain.CandidatoID(req.CandidatoID),
	}

	// O ator não é logado aqui: o voto só se liga à sessão.
	if err := a.votacao.RegistrarVoto(r.Context(), cedula); err != nil {
		a.falhaCedula(w, r, err, "cargo", req.CargoID)
		return
	}

	responderJSON(w, http.StatusCreated, respostaCedula{Success: true})
}

func (a *API) falhaCedula(w http.ResponseWriter, r *http.Request, err error, chave string, valor any) {
	classe := voting.Classificar(err)
	status := statusDaClasse(classe)

	mensagem := err.Error()
	if classe == voting.ClasseInterno {
		a.logger.Error("falha interna na cedula", "err", err, chave, valor)
		mensagem = "erro interno"
	} else {
		a.logger.Warn("cedula recusada", "classe", classe, chave, valor)
	}

	responderJSON(w, status, respostaCedula{Erro: mensagem, Classe: classe})
}

func (a *API) resultados(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	resultado, err := a.votacao.Resultados(r.Context(), ator.Privilegiado())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, resultado)
}

func (a *API) resultadosEleicao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	resultado, err := a.votacao.ResultadosEleicao(r.Context(), domain.EleicaoID(r.PathValue("id")), ator.Privilegiado())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, resultado)
}

func (a *API) parcial(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	parciais, err := a.votacao.Parcial(r.Context(), domain.EleicaoID(r.PathValue("id")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, parciais)
}

func (a *API) participacao(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	p, err := a.votacao.Participacao(r.Context(), domain.EleicaoID(r.PathValue("id")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, p)
}

func (a *API) minhaSessao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	situacao, err := a.votacao.SituacaoEleitor(r.Context(), ator.ID, domain.EleicaoID(r.PathValue("id")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, situacao)
}

func (a *API) painelTempoReal(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	eleicaoID := domain.EleicaoID(r.PathValue("id"))
	if err := a.painel.Atender(w, r, eleicaoID); err != nil {
		// O upgrader já respondeu ao cliente quando o handshake falha.
		a.logger.Warn("falha ao abrir painel em tempo real", "err", err, "eleicao", eleicaoID)
	}
}
