package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marcelojr/eleicao-estudantil/internal/app/contas"
	"github.com/marcelojr/eleicao-estudantil/internal/app/eleicoes"
	"github.com/marcelojr/eleicao-estudantil/internal/app/voting"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

const limiteCorpo = 1 << 20

var errPayloadInvalido = errors.New("payload invalido")

func decodificar(r *http.Request, destino any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limiteCorpo))
	if err := dec.Decode(destino); err != nil {
		return fmt.Errorf("%w: %v", errPayloadInvalido, err)
	}
	return nil
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderMensagem(w http.ResponseWriter, status int, mensagem string) {
	responderJSON(w, status, map[string]string{"erro": mensagem})
}

// responderErro traduz erros de serviço; falhas internas não expõem detalhes ao cliente.
func (a *API) responderErro(w http.ResponseWriter, r *http.Request, err error) {
	status := statusHTTP(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("erro interno", "err", err, "method", r.Method, "path", r.URL.Path)
		responderMensagem(w, status, "erro interno")
		return
	}
	responderMensagem(w, status, err.Error())
}

func statusHTTP(err error) int {
	switch {
	case errors.Is(err, errPayloadInvalido),
		errors.Is(err, contas.ErrCadastroInvalido),
		errors.Is(err, eleicoes.ErrEleicaoInvalida),
		errors.Is(err, eleicoes.ErrCandidatoInvalido):
		return http.StatusBadRequest
	case errors.Is(err, contas.ErrCredenciaisInvalidas):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSemPermissao):
		return http.StatusForbidden
	case errors.Is(err, contas.ErrPerfilNaoEncontrado),
		errors.Is(err, eleicoes.ErrEleicaoNaoEncontrada),
		errors.Is(err, eleicoes.ErrAcaoNaoEncontrada),
		errors.Is(err, eleicoes.ErrCandidatoNaoEncontrado),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contas.ErrCadastroDuplicado),
		errors.Is(err, contas.ErrCadastroJaRevisado),
		errors.Is(err, eleicoes.ErrAcaoJaRevisada),
		errors.Is(err, eleicoes.ErrCargoCompleto):
		return http.StatusConflict
	}
	return statusDaClasse(voting.Classificar(err))
}

func statusDaClasse(classe string) int {
	switch classe {
	case voting.ClasseElegibilidade:
		return http.StatusForbidden
	case voting.ClasseSessao:
		return http.StatusUnauthorized
	case voting.ClasseIntegridade:
		return http.StatusUnprocessableEntity
	case voting.ClasseVotoDuplicado:
		return http.StatusConflict
	case voting.ClasseApuracao:
		return http.StatusServiceUnavailable
	case voting.ClasseLimite:
		return http.StatusTooManyRequests
	case voting.ClasseNaoEncontrado:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
