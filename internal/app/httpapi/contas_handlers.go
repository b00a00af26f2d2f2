package httpapi

import (
	"context"
	"net/http"

	"github.com/marcelojr/eleicao-estudantil/internal/app/contas"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token  string        `json:"token"`
	Perfil domain.Perfil `json:"perfil"`
}

type revisaoRequest struct {
	Observacoes string `json:"observacoes"`
}

type papelRequest struct {
	Papel domain.Papel `json:"papel"`
}

func (a *API) registrarConta(w http.ResponseWriter, r *http.Request) {
	var req contas.NovoCadastro
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}

	perfil, err := a.contas.Registrar(r.Context(), req)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	a.logger.Info("cadastro recebido", "perfil", perfil.ID)
	responderJSON(w, http.StatusCreated, perfil)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}

	perfil, token, err := a.contas.Autenticar(r.Context(), req.Email, req.Senha)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	responderJSON(w, http.StatusOK, loginResponse{Token: token, Perfil: perfil})
}

func (a *API) listarPendentes(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	perfis, err := a.contas.ListarPendentes(r.Context(), ator)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, perfis)
}

func (a *API) aprovarCadastro(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	a.revisarCadastro(w, r, ator, a.contas.AprovarCadastro)
}

func (a *API) rejeitarCadastro(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	a.revisarCadastro(w, r, ator, a.contas.RejeitarCadastro)
}

func (a *API) revisarCadastro(
	w http.ResponseWriter,
	r *http.Request,
	ator domain.Ator,
	revisar func(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error,
) {
	var req revisaoRequest
	if r.ContentLength != 0 {
		if err := decodificar(r, &req); err != nil {
			a.responderErro(w, r, err)
			return
		}
	}

	if err := revisar(r.Context(), ator, domain.PerfilID(r.PathValue("id")), req.Observacoes); err != nil {
		a.responderErro(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) alterarPapel(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req papelRequest
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}

	if err := a.contas.AlterarPapel(r.Context(), ator, domain.PerfilID(r.PathValue("id")), req.Papel); err != nil {
		a.responderErro(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) atualizarPerfil(w http.ResponseWriter, r *http.Request, ator domain.Ator) {
	var req contas.DadosPerfil
	if err := decodificar(r, &req); err != nil {
		a.responderErro(w, r, err)
		return
	}

	perfil, err := a.contas.AtualizarPerfil(r.Context(), ator, req)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, perfil)
}
