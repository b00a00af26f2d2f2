package httpapi

import (
	"net/http"

	"github.com/marcelojr/eleicao-estudantil/internal/app/eleicoes"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func (a *API) listarEleicoes(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	lista, err := a.eleicoes.ListarEleicoes(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, lista)
}

func (a *API) detalharEleicao(w http.ResponseWriter, r *http.Request, _ domain.Ator) {
	e, err := a.eleicoes.Detalhar(r.Context(), domain.EleicaoID(r.PathValue("id")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, e)
}

func (a *API) criarEleicao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req eleicoes.NovaEleicao
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}

	efeito, err := a.eleicoes.CriarEleicao(r.Context(), ator, req)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderEfeito(w, efeito, http.StatusCreated)
}

func (a *API) adicionarCandidato(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req eleicoes.NovoCandidato
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}
	req.EleicaoID = domain.EleicaoID(r.PathValue("id"))

	efeito, err := a.eleicoes.AdicionarCandidato(r.Context(), ator, req)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderEfeito(w, efeito, http.StatusCreated)
}

func (a *API) removerCandidato(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	efeito, err := a.eleicoes.RemoverCandidato(r.Context(), ator,
		domain.EleicaoID(r.PathValue("id")), domain.CandidatoID(r.PathValue("candidatoID")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderEfeito(w, efeito, http.StatusOK)
}

func (a *API) publicarResultados(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	efeito, err := a.eleicoes.PublicarResultados(r.Context(), ator, domain.EleicaoID(r.PathValue("id")))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderEfeito(w, efeito, http.StatusCreated)
}

func (a *API) listarAcoes(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	acoes, err := a.eleicoes.ListarAcoes(r.Context(), ator)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, acoes)
}

func (a *API) aprovarAcao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req revisaoRequest
	if r.ContentLength != 0 {
		if err := decodificar(r, &req); err != nil {
			a.responderErro(w, r, err)
			return
		}
	}

	efeito, err := a.eleicoes.AprovarAcao(r.Context(), ator, domain.AcaoID(r.PathValue("id")), req.Observacoes)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, efeito)
}

func (a *API) rejeitarAcao(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req revisaoRequest
	if r.ContentLength != 0 {
		if err := decodificar(r, &req); err != nil {
			a.responderErro(w, r, err)
			return
		}
	}

	if err := a.eleicoes.RejeitarAcao(r.Context(), ator, domain.AcaoID(r.PathValue("id")), req.Observacoes); err != nil {
		a.responderErro(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// responderEfeito usa 202 quando o pedido ficou aguardando um administrador.
func responderEfeito(w http.ResponseWriter, efeito eleicoes.Efeito, status int) {
	if efeito.Pendente {
		status = http.StatusAccepted
	}
	responderJSON(w, status, efeito)
}
