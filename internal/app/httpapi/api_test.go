package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/eleicao-estudantil/internal/app/contas"
	"github.com/marcelojr/eleicao-estudantil/internal/app/eleicoes"
	"github.com/marcelojr/eleicao-estudantil/internal/app/voting"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/auth"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/clock"
)

type MockVotacao struct {
	mock.Mock
}

func (m *MockVotacao) CriarSessao(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SessaoVotacao, error) {
	args := m.Called(ctx, eleitorID, eleicaoID)
	return args.Get(0).(domain.SessaoVotacao), args.Error(1)
}

func (m *MockVotacao) RegistrarVoto(ctx context.Context, cedula domain.Cedula) error {
	args := m.Called(ctx, cedula)
	return args.Error(0)
}

func (m *MockVotacao) Resultados(ctx context.Context, privilegiado bool) ([]domain.Resultado, error) {
	args := m.Called(ctx, privilegiado)
	return args.Get(0).([]domain.Resultado), args.Error(1)
}

func (m *MockVotacao) ResultadosEleicao(ctx context.Context, eleicaoID domain.EleicaoID, privilegiado bool) ([]domain.Resultado, error) {
	args := m.Called(ctx, eleicaoID, privilegiado)
	return args.Get(0).([]domain.Resultado), args.Error(1)
}

func (m *MockVotacao) Parcial(ctx context.Context, eleicaoID domain.EleicaoID) ([]domain.Parcial, error) {
	args := m.Called(ctx, eleicaoID)
	return args.Get(0).([]domain.Parcial), args.Error(1)
}

func (m *MockVotacao) Participacao(ctx context.Context, eleicaoID domain.EleicaoID) (domain.Participacao, error) {
	args := m.Called(ctx, eleicaoID)
	return args.Get(0).(domain.Participacao), args.Error(1)
}

func (m *MockVotacao) SituacaoEleitor(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SituacaoEleitor, error) {
	args := m.Called(ctx, eleitorID, eleicaoID)
	return args.Get(0).(domain.SituacaoEleitor), args.Error(1)
}

type MockContas struct {
	mock.Mock
}

func (m *MockContas) Registrar(ctx context.Context, c contas.NovoCadastro) (domain.Perfil, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Perfil), args.Error(1)
}

func (m *MockContas) Autenticar(ctx context.Context, email, senha string) (domain.Perfil, string, error) {
	args := m.Called(ctx, email, senha)
	return args.Get(0).(domain.Perfil), args.String(1), args.Error(2)
}

func (m *MockContas) AprovarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error {
	return m.Called(ctx, ator, id, observacoes).Error(0)
}

func (m *MockContas) RejeitarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error {
	return m.Called(ctx, ator, id, observacoes).Error(0)
}

func (m *MockContas) AlterarPapel(ctx context.Context, ator domain.Ator, id domain.PerfilID, papel domain.Papel) error {
	return m.Called(ctx, ator, id, papel).Error(0)
}

func (m *MockContas) AtualizarPerfil(ctx context.Context, ator domain.Ator, dados contas.DadosPerfil) (domain.Perfil, error) {
	args := m.Called(ctx, ator, dados)
	return args.Get(0).(domain.Perfil), args.Error(1)
}

func (m *MockContas) ListarPendentes(ctx context.Context, ator domain.Ator) ([]domain.Perfil, error) {
	args := m.Called(ctx, ator)
	return args.Get(0).([]domain.Perfil), args.Error(1)
}

type MockEleicoes struct {
	mock.Mock
}

func (m *MockEleicoes) CriarEleicao(ctx context.Context, ator domain.Ator, nova eleicoes.NovaEleicao) (eleicoes.Efeito, error) {
	args := m.Called(ctx, ator, nova)
	return args.Get(0).(eleicoes.Efeito), args.Error(1)
}

func (m *MockEleicoes) AdicionarCandidato(ctx context.Context, ator domain.Ator, novo eleicoes.NovoCandidato) (eleicoes.Efeito, error) {
	args := m.Called(ctx, ator, novo)
	return args.Get(0).(eleicoes.Efeito), args.Error(1)
}

func (m *MockEleicoes) RemoverCandidato(ctx context.Context, ator domain.Ator, eleicaoID domain.EleicaoID, candidatoID domain.CandidatoID) (eleicoes.Efeito, error) {
	args := m.Called(ctx, ator, eleicaoID, candidatoID)
	return args.Get(0).(eleicoes.Efeito), args.Error(1)
}

func (m *MockEleicoes) PublicarResultados(ctx context.Context, ator domain.Ator, id domain.EleicaoID) (eleicoes.Efeito, error) {
	args := m.Called(ctx, ator, id)
	return args.Get(0).(eleicoes.Efeito), args.Error(1)
}

func (m *MockEleicoes) ListarEleicoes(ctx context.Context) ([]domain.Eleicao, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Eleicao), args.Error(1)
}

func (m *MockEleicoes) Detalhar(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Eleicao), args.Error(1)
}

func (m *MockEleicoes) ListarAcoes(ctx context.Context, ator domain.Ator) ([]domain.AcaoPendente, error) {
	args := m.Called(ctx, ator)
	return args.Get(0).([]domain.AcaoPendente), args.Error(1)
}

func (m *MockEleicoes) AprovarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) (eleicoes.Efeito, error) {
	args := m.Called(ctx, ator, id, observacoes)
	return args.Get(0).(eleicoes.Efeito), args.Error(1)
}

func (m *MockEleicoes) RejeitarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) error {
	return m.Called(ctx, ator, id, observacoes).Error(0)
}

type mocks struct {
	votacao  *MockVotacao
	contas   *MockContas
	eleicoes *MockEleicoes
}

type ambienteAPI struct {
	mux     *http.ServeMux
	emissor *auth.Emissor
	mocks   mocks
}

// setupAPI monta o mux completo com serviços mockados e um emissor real de tokens.
func setupAPI(t *testing.T) *ambienteAPI {
	m := mocks{votacao: new(MockVotacao), contas: new(MockContas), eleicoes: new(MockEleicoes)}
	emissor := auth.NewEmissor("segredo-teste", "eleicao-estudantil", time.Hour, clock.NewSystemClock())
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	api := New(Dependencias{
		Votacao:  m.votacao,
		Contas:   m.contas,
		Eleicoes: m.eleicoes,
		Tokens:   emissor,
		Logger:   logger,
	})
	mux := http.NewServeMux()
	api.Register(mux)

	t.Cleanup(func() {
		m.votacao.AssertExpectations(t)
		m.contas.AssertExpectations(t)
		m.eleicoes.AssertExpectations(t)
	})

	return &ambienteAPI{mux: mux, emissor: emissor, mocks: m}
}

func (a *ambienteAPI) token(t *testing.T, id domain.PerfilID, papel domain.Papel) string {
	t.Helper()
	token, err := a.emissor.Emitir(domain.Perfil{ID: id, Papel: papel, StatusCadastro: domain.CadastroAprovado})
	require.NoError(t, err)
	return token
}

func (a *ambienteAPI) fazer(t *testing.T, metodo, path, token string, corpo any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if corpo != nil {
		payload, err := json.Marshal(corpo)
		require.NoError(t, err)
		body = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(metodo, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

func decodificarResposta[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// === TESTES GET /healthz ===

func TestHandleHealthz_QuandoSolicitado_DeveRetornar200OK(t *testing.T) {
	a := setupAPI(t)

	w := a.fazer(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

// === AUTENTICACAO E PAPEIS ===

func TestProtegido_QuandoSemToken_DeveRetornar401(t *testing.T) {
	a := setupAPI(t)

	w := a.fazer(t, http.MethodGet, "/eleicoes", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtegido_QuandoTokenInvalido_DeveRetornar401(t *testing.T) {
	a := setupAPI(t)
	outro := auth.NewEmissor("outro-segredo", "eleicao-estudantil", time.Hour, clock.NewSystemClock())
	token, err := outro.Emitir(domain.Perfil{ID: "p1", Papel: domain.PapelAdministrador})
	require.NoError(t, err)

	w := a.fazer(t, http.MethodGet, "/eleicoes", token, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtegido_PapeisPorRota(t *testing.T) {
	casos := []struct {
		nome   string
		metodo string
		path   string
		papel  domain.Papel
	}{
		{"eleitor nao cria eleicao", http.MethodPost, "/eleicoes", domain.PapelEleitor},
		{"eleitor nao le parcial", http.MethodGet, "/eleicoes/e1/parcial", domain.PapelEleitor},
		{"eleitor nao lista pendentes", http.MethodGet, "/contas/pendentes", domain.PapelEleitor},
		{"staff nao revisa acoes", http.MethodGet, "/acoes", domain.PapelStaff},
		{"staff nao altera papel", http.MethodPut, "/contas/p1/papel", domain.PapelStaff},
		{"eleitor nao remove candidato", http.MethodDelete, "/eleicoes/e1/candidatos/c1", domain.PapelEleitor},
		{"eleitor nao le participacao", http.MethodGet, "/eleicoes/e1/participacao", domain.PapelEleitor},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			a := setupAPI(t)

			w := a.fazer(t, tc.metodo, tc.path, a.token(t, "p1", tc.papel), map[string]string{})

			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

// === CONTAS ===

func TestRegistrarConta_QuandoValido_DeveRetornar201(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	cadastro := contas.NovoCadastro{Email: "ana@universidade.edu", Senha: "senha-segura", Matricula: "2025001"}
	a.mocks.contas.On("Registrar", mock.Anything, cadastro).
		Return(domain.Perfil{ID: "p1", Email: cadastro.Email, SenhaHash: "nao-vaza"}, nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/contas", "", cadastro)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "nao-vaza")
}

func TestRegistrarConta_QuandoDuplicado_DeveRetornar409(t *testing.T) {
	a := setupAPI(t)
	a.mocks.contas.On("Registrar", mock.Anything, mock.Anything).Return(domain.Perfil{}, contas.ErrCadastroDuplicado)

	w := a.fazer(t, http.MethodPost, "/contas", "", contas.NovoCadastro{Email: "ana@universidade.edu"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegistrarConta_QuandoPayloadInvalido_DeveRetornar400(t *testing.T) {
	a := setupAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/contas", strings.NewReader("{"))
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_QuandoCredenciaisInvalidas_DeveRetornar401(t *testing.T) {
	a := setupAPI(t)
	a.mocks.contas.On("Autenticar", mock.Anything, "ana@universidade.edu", "errada").
		Return(domain.Perfil{}, "", contas.ErrCredenciaisInvalidas)

	w := a.fazer(t, http.MethodPost, "/login", "", loginRequest{Email: "ana@universidade.edu", Senha: "errada"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_QuandoValido_DeveDevolverToken(t *testing.T) {
	a := setupAPI(t)
	a.mocks.contas.On("Autenticar", mock.Anything, "ana@universidade.edu", "senha-segura").
		Return(domain.Perfil{ID: "p1"}, "jwt", nil)

	w := a.fazer(t, http.MethodPost, "/login", "", loginRequest{Email: "ana@universidade.edu", Senha: "senha-segura"})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[loginResponse](t, w)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, domain.PerfilID("p1"), resp.Perfil.ID)
}

func TestAprovarCadastro_DevePassarAtorDoToken(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	staff := domain.Ator{ID: "staff-1", Papel: domain.PapelStaff}
	a.mocks.contas.On("AprovarCadastro", mock.Anything, staff, domain.PerfilID("p9"), "documento ok").Return(nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/contas/p9/aprovar", a.token(t, staff.ID, staff.Papel), revisaoRequest{Observacoes: "documento ok"})

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAtualizarPerfil_DeveUsarPerfilDoToken(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	eleitor := domain.Ator{ID: "p1", Papel: domain.PapelEleitor}
	dados := contas.DadosPerfil{Email: "ana@escola.br", NomeCompleto: "Ana Souza", Matricula: "2024001"}
	a.mocks.contas.On("AtualizarPerfil", mock.Anything, eleitor, dados).
		Return(domain.Perfil{ID: "p1", Email: dados.Email, NomeCompleto: dados.NomeCompleto}, nil)

	// Act
	w := a.fazer(t, http.MethodPut, "/contas/eu", a.token(t, eleitor.ID, eleitor.Papel), dados)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[domain.Perfil](t, w)
	assert.Equal(t, "Ana Souza", resp.NomeCompleto)
}

func TestAtualizarPerfil_QuandoEmailDeOutro_DeveRetornar409(t *testing.T) {
	a := setupAPI(t)
	a.mocks.contas.On("AtualizarPerfil", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Perfil{}, contas.ErrCadastroDuplicado)

	w := a.fazer(t, http.MethodPut, "/contas/eu", a.token(t, "p1", domain.PapelEleitor),
		contas.DadosPerfil{Email: "bia@escola.br", NomeCompleto: "Ana", Matricula: "1"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejeitarCadastro_QuandoJaRevisado_DeveRetornar409(t *testing.T) {
	a := setupAPI(t)
	a.mocks.contas.On("RejeitarCadastro", mock.Anything, mock.Anything, domain.PerfilID("p9"), "").Return(contas.ErrCadastroJaRevisado)

	w := a.fazer(t, http.MethodPost, "/contas/p9/rejeitar", a.token(t, "staff-1", domain.PapelStaff), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// === ELEICOES ===

func TestCriarEleicao_QuandoStaff_DeveRetornar202ComAcao(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	acao := domain.AcaoPendente{ID: "acao-1", Tipo: domain.AcaoCriarEleicao, Status: domain.AcaoPendenteStatus}
	a.mocks.eleicoes.On("CriarEleicao", mock.Anything, domain.Ator{ID: "staff-1", Papel: domain.PapelStaff}, mock.AnythingOfType("eleicoes.NovaEleicao")).
		Return(eleicoes.Efeito{Pendente: true, Acao: &acao}, nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/eleicoes", a.token(t, "staff-1", domain.PapelStaff), eleicoes.NovaEleicao{Titulo: "Grêmio"})

	// Assert
	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decodificarResposta[eleicoes.Efeito](t, w)
	assert.True(t, resp.Pendente)
	require.NotNil(t, resp.Acao)
	assert.Equal(t, domain.AcaoID("acao-1"), resp.Acao.ID)
}

func TestCriarEleicao_QuandoInvalida_DeveRetornar400(t *testing.T) {
	a := setupAPI(t)
	a.mocks.eleicoes.On("CriarEleicao", mock.Anything, mock.Anything, mock.Anything).
		Return(eleicoes.Efeito{}, eleicoes.ErrEleicaoInvalida)

	w := a.fazer(t, http.MethodPost, "/eleicoes", a.token(t, "admin", domain.PapelAdministrador), eleicoes.NovaEleicao{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdicionarCandidato_DeveUsarEleicaoDoPath(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	esperado := eleicoes.NovoCandidato{EleicaoID: "e1", CargoID: "c1", NomeCompleto: "Ana"}
	a.mocks.eleicoes.On("AdicionarCandidato", mock.Anything, mock.Anything, esperado).
		Return(eleicoes.Efeito{Candidato: &domain.Candidato{ID: "cand-1"}}, nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/eleicoes/e1/candidatos", a.token(t, "admin", domain.PapelAdministrador),
		eleicoes.NovoCandidato{EleicaoID: "outra", CargoID: "c1", NomeCompleto: "Ana"})

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAdicionarCandidato_QuandoCargoCompleto_DeveRetornar409(t *testing.T) {
	a := setupAPI(t)
	a.mocks.eleicoes.On("AdicionarCandidato", mock.Anything, mock.Anything, mock.Anything).
		Return(eleicoes.Efeito{}, eleicoes.ErrCargoCompleto)

	w := a.fazer(t, http.MethodPost, "/eleicoes/e1/candidatos", a.token(t, "admin", domain.PapelAdministrador),
		eleicoes.NovoCandidato{CargoID: "c1", NomeCompleto: "Ana"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoverCandidato_QuandoAdministrador_DeveRetornar200(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	admin := domain.Ator{ID: "admin", Papel: domain.PapelAdministrador}
	a.mocks.eleicoes.On("RemoverCandidato", mock.Anything, admin, domain.EleicaoID("e1"), domain.CandidatoID("cand-1")).
		Return(eleicoes.Efeito{Candidato: &domain.Candidato{ID: "cand-1"}}, nil)

	// Act
	w := a.fazer(t, http.MethodDelete, "/eleicoes/e1/candidatos/cand-1", a.token(t, admin.ID, admin.Papel), nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRemoverCandidato_QuandoStaff_DeveRetornar202(t *testing.T) {
	a := setupAPI(t)
	a.mocks.eleicoes.On("RemoverCandidato", mock.Anything, mock.Anything, domain.EleicaoID("e1"), domain.CandidatoID("cand-1")).
		Return(eleicoes.Efeito{Pendente: true, Acao: &domain.AcaoPendente{ID: "a1"}}, nil)

	w := a.fazer(t, http.MethodDelete, "/eleicoes/e1/candidatos/cand-1", a.token(t, "staff-1", domain.PapelStaff), nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRemoverCandidato_QuandoFalha_DeveMapearStatus(t *testing.T) {
	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"candidato desconhecido", eleicoes.ErrCandidatoNaoEncontrado, http.StatusNotFound},
		{"votacao aberta", eleicoes.ErrEleicaoInvalida, http.StatusBadRequest},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			a := setupAPI(t)
			a.mocks.eleicoes.On("RemoverCandidato", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(eleicoes.Efeito{}, tc.err)

			w := a.fazer(t, http.MethodDelete, "/eleicoes/e1/candidatos/x", a.token(t, "admin", domain.PapelAdministrador), nil)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestDetalharEleicao_QuandoInexistente_DeveRetornar404(t *testing.T) {
	a := setupAPI(t)
	a.mocks.eleicoes.On("Detalhar", mock.Anything, domain.EleicaoID("nao-existe")).
		Return(domain.Eleicao{}, eleicoes.ErrEleicaoNaoEncontrada)

	w := a.fazer(t, http.MethodGet, "/eleicoes/nao-existe", a.token(t, "p1", domain.PapelEleitor), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAprovarAcao_QuandoJaRevisada_DeveRetornar409(t *testing.T) {
	a := setupAPI(t)
	a.mocks.eleicoes.On("AprovarAcao", mock.Anything, mock.Anything, domain.AcaoID("acao-1"), "").
		Return(eleicoes.Efeito{}, eleicoes.ErrAcaoJaRevisada)

	w := a.fazer(t, http.MethodPost, "/acoes/acao-1/aprovar", a.token(t, "admin", domain.PapelAdministrador), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// === SESSOES E VOTOS ===

func TestCriarSessao_QuandoSucesso_DeveDevolverTokenEExpiracao(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	expira := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	a.mocks.votacao.On("CriarSessao", mock.Anything, domain.PerfilID("eleitor-1"), domain.EleicaoID("e1")).
		Return(domain.SessaoVotacao{Token: "tok", ExpiraEm: expira}, nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/eleicoes/e1/sessoes", a.token(t, "eleitor-1", domain.PapelEleitor), nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[respostaCedula](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", resp.TokenSessao)
	require.NotNil(t, resp.ExpiraEm)
	assert.True(t, expira.Equal(*resp.ExpiraEm))
}

func TestCriarSessao_QuandoFalha_DeveResponderCorpoEstruturado(t *testing.T) {
	casos := []struct {
		nome   string
		erro   error
		status int
		classe string
	}{
		{"nao elegivel", voting.ErrNaoElegivel, http.StatusForbidden, voting.ClasseElegibilidade},
		{"eleicao inativa", voting.ErrEleicaoInativa, http.StatusForbidden, voting.ClasseElegibilidade},
		{"eleicao inexistente", voting.ErrEleicaoNaoEncontrada, http.StatusNotFound, voting.ClasseNaoEncontrado},
		{"limite", voting.ErrLimiteExcedido, http.StatusTooManyRequests, voting.ClasseLimite},
		{"interno", assert.AnError, http.StatusInternalServerError, voting.ClasseInterno},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			// Arrange
			a := setupAPI(t)
			a.mocks.votacao.On("CriarSessao", mock.Anything, mock.Anything, mock.Anything).
				Return(domain.SessaoVotacao{}, tc.erro)

			// Act
			w := a.fazer(t, http.MethodPost, "/eleicoes/e1/sessoes", a.token(t, "eleitor-1", domain.PapelEleitor), nil)

			// Assert
			assert.Equal(t, tc.status, w.Code)
			resp := decodificarResposta[respostaCedula](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.classe, resp.Classe)
			assert.NotEmpty(t, resp.Erro)
			assert.Empty(t, resp.TokenSessao)
		})
	}
}

func TestRegistrarVoto_QuandoValido_DeveRetornar201(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	cedula := domain.Cedula{Token: "tok", EleicaoID: "e1", CargoID: "c1", CandidatoID: "cand-1"}
	a.mocks.votacao.On("RegistrarVoto", mock.Anything, cedula).Return(nil)

	// Act
	w := a.fazer(t, http.MethodPost, "/votos", a.token(t, "eleitor-1", domain.PapelEleitor),
		votoRequest{TokenSessao: "tok", EleicaoID: "e1", CargoID: "c1", CandidatoID: "cand-1"})

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodificarResposta[respostaCedula](t, w)
	assert.True(t, resp.Success)
}

func TestRegistrarVoto_QuandoFalha_DeveMapearClasse(t *testing.T) {
	casos := []struct {
		nome   string
		erro   error
		status int
		classe string
	}{
		{"duplicado", voting.ErrVotoDuplicado, http.StatusConflict, voting.ClasseVotoDuplicado},
		{"sessao expirada", voting.ErrSessaoExpirada, http.StatusUnauthorized, voting.ClasseSessao},
		{"sessao consumida", voting.ErrSessaoConsumida, http.StatusUnauthorized, voting.ClasseSessao},
		{"candidato invalido", voting.ErrCandidatoInvalido, http.StatusUnprocessableEntity, voting.ClasseIntegridade},
		{"eleicao encerrada", voting.ErrEleicaoInativa, http.StatusForbidden, voting.ClasseElegibilidade},
	}

	for _, tc := range casos {
		t.Run(tc.nome, func(t *testing.T) {
			// Arrange
			a := setupAPI(t)
			a.mocks.votacao.On("RegistrarVoto", mock.Anything, mock.Anything).Return(tc.erro)

			// Act
			w := a.fazer(t, http.MethodPost, "/votos", a.token(t, "eleitor-1", domain.PapelEleitor),
				votoRequest{TokenSessao: "tok", EleicaoID: "e1", CargoID: "c1", CandidatoID: "x"})

			// Assert
			assert.Equal(t, tc.status, w.Code)
			resp := decodificarResposta[respostaCedula](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.classe, resp.Classe)
			assert.Equal(t, tc.erro.Error(), resp.Erro)
		})
	}
}

// === RESULTADOS ===

func TestResultados_DeveRepassarPrivilegioDoPapel(t *testing.T) {
	casos := []struct {
		papel        domain.Papel
		privilegiado bool
	}{
		{domain.PapelEleitor, false},
		{domain.PapelStaff, true},
		{domain.PapelAdministrador, true},
	}

	for _, tc := range casos {
		t.Run(string(tc.papel), func(t *testing.T) {
			a := setupAPI(t)
			a.mocks.votacao.On("Resultados", mock.Anything, tc.privilegiado).
				Return([]domain.Resultado{{CandidatoNome: "Ana", Votos: 3}}, nil)

			w := a.fazer(t, http.MethodGet, "/resultados", a.token(t, "p1", tc.papel), nil)

			require.Equal(t, http.StatusOK, w.Code)
			resp := decodificarResposta[[]domain.Resultado](t, w)
			assert.Len(t, resp, 1)
		})
	}
}

func TestResultados_QuandoApuracaoFalha_DeveRetornar503(t *testing.T) {
	a := setupAPI(t)
	a.mocks.votacao.On("Resultados", mock.Anything, false).Return([]domain.Resultado(nil), voting.ErrApuracao)

	w := a.fazer(t, http.MethodGet, "/resultados", a.token(t, "p1", domain.PapelEleitor), nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResultadosEleicao_QuandoInexistente_DeveRetornar404(t *testing.T) {
	a := setupAPI(t)
	a.mocks.votacao.On("ResultadosEleicao", mock.Anything, domain.EleicaoID("x"), false).
		Return([]domain.Resultado(nil), voting.ErrEleicaoNaoEncontrada)

	w := a.fazer(t, http.MethodGet, "/eleicoes/x/resultados", a.token(t, "p1", domain.PapelEleitor), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParcial_QuandoStaff_DeveDevolverContadores(t *testing.T) {
	a := setupAPI(t)
	a.mocks.votacao.On("Parcial", mock.Anything, domain.EleicaoID("e1")).
		Return([]domain.Parcial{{EleicaoID: "e1", CandidatoID: "ana", Total: 4, TotalCargo: 9}}, nil)

	w := a.fazer(t, http.MethodGet, "/eleicoes/e1/parcial", a.token(t, "staff-1", domain.PapelStaff), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[[]domain.Parcial](t, w)
	require.Len(t, resp, 1)
	assert.Equal(t, int64(4), resp[0].Total)
}

func TestParticipacao_QuandoStaff_DeveDevolverComparecimento(t *testing.T) {
	a := setupAPI(t)
	a.mocks.votacao.On("Participacao", mock.Anything, domain.EleicaoID("e1")).
		Return(domain.Participacao{EleicaoID: "e1", TotalVotos: 6, Votantes: 3, TotalElegiveis: 4, Percentual: 75}, nil)

	w := a.fazer(t, http.MethodGet, "/eleicoes/e1/participacao", a.token(t, "staff-1", domain.PapelStaff), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[domain.Participacao](t, w)
	assert.Equal(t, int64(3), resp.Votantes)
	assert.InDelta(t, 75.0, resp.Percentual, 0.001)
}

func TestMinhaSessao_DeveConsultarEleitorDoToken(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	a.mocks.votacao.On("SituacaoEleitor", mock.Anything, domain.PerfilID("p1"), domain.EleicaoID("e1")).
		Return(domain.SituacaoEleitor{EleicaoID: "e1", PossuiSessao: true, Votou: true, CargosVotados: 2}, nil)

	// Act
	w := a.fazer(t, http.MethodGet, "/eleicoes/e1/sessoes/minha", a.token(t, "p1", domain.PapelEleitor), nil)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodificarResposta[domain.SituacaoEleitor](t, w)
	assert.True(t, resp.Votou)
	assert.Equal(t, int64(2), resp.CargosVotados)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestMinhaSessao_QuandoEleicaoInexistente_DeveRetornar404(t *testing.T) {
	a := setupAPI(t)
	a.mocks.votacao.On("SituacaoEleitor", mock.Anything, mock.Anything, domain.EleicaoID("x")).
		Return(domain.SituacaoEleitor{}, voting.ErrEleicaoNaoEncontrada)

	w := a.fazer(t, http.MethodGet, "/eleicoes/x/sessoes/minha", a.token(t, "p1", domain.PapelEleitor), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRotaDesconhecida_DeveRetornar404(t *testing.T) {
	a := setupAPI(t)

	w := a.fazer(t, http.MethodGet, "/paredoes", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
