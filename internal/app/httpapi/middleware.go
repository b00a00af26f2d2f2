package httpapi

import (
	"net/http"
	"strings"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

type nivelAcesso int

const (
	acessoAutenticado nivelAcesso = iota
	acessoEquipe
	acessoAdministrador
)

type handlerComAtor func(w http.ResponseWriter, r *http.Request, ator domain.Ator)

func (a *API) protegido(nivel nivelAcesso, h handlerComAtor) http.HandlerFunc {
	return a.autorizar(nivel, false, h)
}

func (a *API) protegidoComQuery(nivel nivelAcesso, h handlerComAtor) http.HandlerFunc {
	return a.autorizar(nivel, true, h)
}

func (a *API) autorizar(nivel nivelAcesso, aceitaQuery bool, h handlerComAtor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenDaRequisicao(r, aceitaQuery)
		if token == "" {
			responderMensagem(w, http.StatusUnauthorized, "token de acesso ausente")
			return
		}

		claims, err := a.tokens.Validar(token)
		if err != nil {
			a.logger.Debug("token recusado", "err", err, "path", r.URL.Path)
			responderMensagem(w, http.StatusUnauthorized, "token de acesso invalido")
			return
		}

		ator := domain.Ator{ID: claims.UserID, Papel: claims.Papel}
		if !permitido(nivel, ator) {
			responderMensagem(w, http.StatusForbidden, domain.ErrSemPermissao.Error())
			return
		}

		h(w, r, ator)
	}
}

func permitido(nivel nivelAcesso, ator domain.Ator) bool {
	switch nivel {
	case acessoEquipe:
		return ator.Privilegiado()
	case acessoAdministrador:
		return ator.Administrador()
	}
	return true
}

func tokenDaRequisicao(r *http.Request, aceitaQuery bool) string {
	if h := r.Header.Get("Authorization"); h != "" {
		tipo, valor, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(tipo, "Bearer") {
			return strings.TrimSpace(valor)
		}
		return ""
	}
	if aceitaQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}
