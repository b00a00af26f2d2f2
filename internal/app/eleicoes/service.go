// Pacote eleicoes mantém o catálogo de eleições, cargos e candidatos e o fluxo de aprovação
// das solicitações feitas pela equipe.
package eleicoes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
)

var (
	ErrEleicaoInvalida        = errors.New("eleicao invalida")
	ErrEleicaoNaoEncontrada   = errors.New("eleicao nao encontrada")
	ErrCandidatoInvalido      = errors.New("candidato invalido")
	ErrCargoCompleto          = errors.New("cargo ja atingiu o maximo de candidatos")
	ErrCandidatoNaoEncontrado = errors.New("candidato nao encontrado")
	ErrAcaoNaoEncontrada      = errors.New("acao pendente nao encontrada")
	ErrAcaoJaRevisada         = errors.New("acao ja revisada")
)

type NovoCargo struct {
	Titulo        string `json:"titulo"`
	Descricao     string `json:"descricao"`
	MaxCandidatos int    `json:"max_candidatos"`
}

type NovaEleicao struct {
	Titulo             string      `json:"titulo"`
	Descricao          string      `json:"descricao"`
	URLCapa            string      `json:"url_capa"`
	Inicio             time.Time   `json:"inicio"`
	Fim                time.Time   `json:"fim"`
	EleitoresElegiveis string      `json:"eleitores_elegiveis"`
	Cargos             []NovoCargo `json:"cargos"`
}

type NovoCandidato struct {
	EleicaoID         domain.EleicaoID `json:"eleicao_id"`
	CargoID           domain.CargoID   `json:"cargo_id"`
	NomeCompleto      string           `json:"nome_completo"`
	Bio               string           `json:"bio"`
	Partido           string           `json:"partido"`
	URLFoto           string           `json:"url_foto"`
	EscolaFundamental string           `json:"escola_fundamental"`
	AnoFundamental    int              `json:"ano_fundamental"`
	EscolaMedio       string           `json:"escola_medio"`
	AnoMedio          int              `json:"ano_medio"`
	Proposta          string           `json:"proposta"`
}

type publicacao struct {
	EleicaoID domain.EleicaoID `json:"eleicao_id"`
}

type remocao struct {
	EleicaoID   domain.EleicaoID   `json:"eleicao_id"`
	CandidatoID domain.CandidatoID `json:"candidato_id"`
}

// Efeito descreve o que uma solicitação produziu: a alteração aplicada ou a ação que aguarda revisão.
type Efeito struct {
	Pendente  bool                 `json:"pendente"`
	Acao      *domain.AcaoPendente `json:"acao,omitempty"`
	Eleicao   *domain.Eleicao      `json:"eleicao,omitempty"`
	Candidato *domain.Candidato    `json:"candidato,omitempty"`
}

type Service struct {
	eleicoes   domain.EleicaoRepository
	candidatos domain.CandidatoRepository
	acoes      domain.AcaoRepository
	auditoria  domain.AuditoriaRepository
	clock      domain.Clock
	ids        *ids.Generator
}

func NewService(
	eleicoes domain.EleicaoRepository,
	candidatos domain.CandidatoRepository,
	acoes domain.AcaoRepository,
	auditoria domain.AuditoriaRepository,
	clock domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		eleicoes:   eleicoes,
		candidatos: candidatos,
		acoes:      acoes,
		auditoria:  auditoria,
		clock:      clock,
		ids:        idsGen,
	}
}

// CriarEleicao grava direto para administradores; pedidos da equipe viram ação pendente.
func (s *Service) CriarEleicao(ctx context.Context, ator domain.Ator, nova NovaEleicao) (Efeito, error) {
	if !ator.Privilegiado() {
		return Efeito{}, domain.ErrSemPermissao
	}
	if err := validarEleicao(nova); err != nil {
		return Efeito{}, err
	}
	if !ator.Administrador() {
		return s.solicitar(ctx, ator, domain.AcaoCriarEleicao, nova)
	}

	e, err := s.criarEleicao(ctx, nova)
	if err != nil {
		return Efeito{}, err
	}
	s.auditar(ctx, ator, "criar_eleicao", "eleicao", string(e.ID), map[string]any{"titulo": e.Titulo})
	return Efeito{Eleicao: &e}, nil
}

func (s *Service) criarEleicao(ctx context.Context, nova NovaEleicao) (domain.Eleicao, error) {
	elegiveis := strings.TrimSpace(nova.EleitoresElegiveis)
	if elegiveis == "" {
		elegiveis = domain.TodosOsCursos
	}

	e := domain.Eleicao{
		ID:                 domain.EleicaoID(s.ids.New()),
		Titulo:             strings.TrimSpace(nova.Titulo),
		Descricao:          nova.Descricao,
		URLCapa:            nova.URLCapa,
		Inicio:             nova.Inicio.UTC(),
		Fim:                nova.Fim.UTC(),
		EleitoresElegiveis: elegiveis,
	}
	agora := s.clock.Agora()
	e.Status = e.StatusEm(agora)

	cargos := make([]domain.Cargo, len(nova.Cargos))
	for i, c := range nova.Cargos {
		cargos[i] = domain.Cargo{
			ID:            domain.CargoID(s.ids.New()),
			EleicaoID:     e.ID,
			Titulo:        strings.TrimSpace(c.Titulo),
			Descricao:     c.Descricao,
			MaxCandidatos: c.MaxCandidatos,
			// Ordem da cédula segue a ordem do pedido.
			CriadoEm: agora.Add(time.Duration(i) * time.Millisecond),
		}
	}

	if err := s.eleicoes.CreateComCargos(ctx, e, cargos); err != nil {
		return domain.Eleicao{}, err
	}
	e.Cargos = cargos
	return e, nil
}

func (s *Service) AdicionarCandidato(ctx context.Context, ator domain.Ator, novo NovoCandidato) (Efeito, error) {
	if !ator.Privilegiado() {
		return Efeito{}, domain.ErrSemPermissao
	}
	if err := s.validarCandidato(ctx, novo); err != nil {
		return Efeito{}, err
	}
	if !ator.Administrador() {
		return s.solicitar(ctx, ator, domain.AcaoAdicionarCandidato, novo)
	}

	c, err := s.adicionarCandidato(ctx, novo)
	if err != nil {
		return Efeito{}, err
	}
	s.auditar(ctx, ator, "adicionar_candidato", "candidato", string(c.ID), map[string]any{"cargo_id": c.CargoID})
	return Efeito{Candidato: &c}, nil
}

func (s *Service) adicionarCandidato(ctx context.Context, novo NovoCandidato) (domain.Candidato, error) {
	c := domain.Candidato{
		ID:                domain.CandidatoID(s.ids.New()),
		EleicaoID:         novo.EleicaoID,
		CargoID:           novo.CargoID,
		NomeCompleto:      strings.TrimSpace(novo.NomeCompleto),
		Bio:               novo.Bio,
		Partido:           novo.Partido,
		URLFoto:           novo.URLFoto,
		EscolaFundamental: novo.EscolaFundamental,
		AnoFundamental:    novo.AnoFundamental,
		EscolaMedio:       novo.EscolaMedio,
		AnoMedio:          novo.AnoMedio,
		Proposta:          novo.Proposta,
	}
	if err := s.candidatos.Create(ctx, c); err != nil {
		return domain.Candidato{}, err
	}
	return c, nil
}

func (s *Service) validarCandidato(ctx context.Context, novo NovoCandidato) error {
	if strings.TrimSpace(novo.NomeCompleto) == "" {
		return fmt.Errorf("%w: nome obrigatorio", ErrCandidatoInvalido)
	}
	if err := s.exigirCatalogoAberto(ctx, novo.EleicaoID); err != nil {
		return err
	}

	cargo, err := s.candidatos.FindCargo(ctx, novo.CargoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: cargo desconhecido", ErrCandidatoInvalido)
		}
		return err
	}
	if cargo.EleicaoID != novo.EleicaoID {
		return fmt.Errorf("%w: cargo de outra eleicao", ErrCandidatoInvalido)
	}

	total, err := s.candidatos.ContarPorCargo(ctx, cargo.ID)
	if err != nil {
		return err
	}
	if total >= int64(cargo.MaxCandidatos) {
		return fmt.Errorf("%w: %d de %d", ErrCargoCompleto, total, cargo.MaxCandidatos)
	}
	return nil
}

// RemoverCandidato segue a mesma divisão de AdicionarCandidato: administrador remove direto,
// equipe gera ação pendente.
func (s *Service) RemoverCandidato(ctx context.Context, ator domain.Ator, eleicaoID domain.EleicaoID, candidatoID domain.CandidatoID) (Efeito, error) {
	if !ator.Privilegiado() {
		return Efeito{}, domain.ErrSemPermissao
	}
	pedido := remocao{EleicaoID: eleicaoID, CandidatoID: candidatoID}
	c, err := s.validarRemocao(ctx, pedido)
	if err != nil {
		return Efeito{}, err
	}
	if !ator.Administrador() {
		return s.solicitar(ctx, ator, domain.AcaoRemoverCandidato, pedido)
	}

	if err := s.candidatos.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Efeito{}, ErrCandidatoNaoEncontrado
		}
		return Efeito{}, err
	}
	s.auditar(ctx, ator, "remover_candidato", "candidato", string(c.ID), map[string]any{"cargo_id": c.CargoID})
	return Efeito{Candidato: &c}, nil
}

func (s *Service) validarRemocao(ctx context.Context, pedido remocao) (domain.Candidato, error) {
	if err := s.exigirCatalogoAberto(ctx, pedido.EleicaoID); err != nil {
		return domain.Candidato{}, err
	}
	c, err := s.candidatos.FindByID(ctx, pedido.CandidatoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Candidato{}, ErrCandidatoNaoEncontrado
		}
		return domain.Candidato{}, err
	}
	if c.EleicaoID != pedido.EleicaoID {
		return domain.Candidato{}, ErrCandidatoNaoEncontrado
	}
	return c, nil
}

// exigirCatalogoAberto congela cargos e candidatos a partir da abertura da votação,
// para que todos os eleitores recebam a mesma cédula.
func (s *Service) exigirCatalogoAberto(ctx context.Context, id domain.EleicaoID) error {
	e, err := s.buscarEleicao(ctx, id)
	if err != nil {
		return err
	}
	if status := e.StatusEm(s.clock.Agora()); status != domain.EleicaoAgendada {
		return fmt.Errorf("%w: candidatos nao mudam com a eleicao %s", ErrEleicaoInvalida, status)
	}
	return nil
}

func (s *Service) PublicarResultados(ctx context.Context, ator domain.Ator, eleicaoID domain.EleicaoID) (Efeito, error) {
	if !ator.Privilegiado() {
		return Efeito{}, domain.ErrSemPermissao
	}
	if _, err := s.buscarEleicao(ctx, eleicaoID); err != nil {
		return Efeito{}, err
	}
	if !ator.Administrador() {
		return s.solicitar(ctx, ator, domain.AcaoPublicarResultados, publicacao{EleicaoID: eleicaoID})
	}

	if err := s.eleicoes.PublicarResultados(ctx, eleicaoID); err != nil {
		return Efeito{}, err
	}
	s.auditar(ctx, ator, "publicar_resultados", "eleicao", string(eleicaoID), nil)

	e, err := s.buscarEleicao(ctx, eleicaoID)
	if err != nil {
		return Efeito{}, err
	}
	return Efeito{Eleicao: &e}, nil
}

func (s *Service) ListarEleicoes(ctx context.Context) ([]domain.Eleicao, error) {
	eleicoes, err := s.eleicoes.List(ctx)
	if err != nil {
		return nil, err
	}
	agora := s.clock.Agora()
	for i := range eleicoes {
		eleicoes[i].Status = eleicoes[i].StatusEm(agora)
	}
	return eleicoes, nil
}

// Detalhar devolve a eleição com cargos e candidatos; o status reflete o relógio, não a coluna gravada.
func (s *Service) Detalhar(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	e, err := s.eleicoes.Detalhar(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Eleicao{}, ErrEleicaoNaoEncontrada
		}
		return domain.Eleicao{}, err
	}
	e.Status = e.StatusEm(s.clock.Agora())
	return e, nil
}

func (s *Service) buscarEleicao(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	e, err := s.eleicoes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Eleicao{}, ErrEleicaoNaoEncontrada
		}
		return domain.Eleicao{}, err
	}
	return e, nil
}

func (s *Service) auditar(ctx context.Context, ator domain.Ator, acao, tipo, recurso string, detalhes map[string]any) {
	if s.auditoria == nil {
		return
	}
	var payload []byte
	if detalhes != nil {
		var err error
		if payload, err = json.Marshal(detalhes); err != nil {
			logger.Warn("auditoria: serializar detalhes", "acao", acao, "error", err)
			return
		}
	}
	reg := domain.RegistroAuditoria{
		ID:          domain.AuditoriaID(s.ids.New()),
		AtorID:      ator.ID,
		AtorPapel:   ator.Papel,
		Acao:        acao,
		TipoRecurso: tipo,
		RecursoID:   recurso,
		Detalhes:    payload,
	}
	if err := s.auditoria.Registrar(ctx, reg); err != nil {
		logger.Warn("auditoria: registrar", "acao", acao, "recurso_id", recurso, "error", err)
	}
}

func validarEleicao(nova NovaEleicao) error {
	if strings.TrimSpace(nova.Titulo) == "" {
		return fmt.Errorf("%w: titulo obrigatorio", ErrEleicaoInvalida)
	}
	if nova.Inicio.IsZero() || !nova.Fim.After(nova.Inicio) {
		return fmt.Errorf("%w: fim deve ser posterior ao inicio", ErrEleicaoInvalida)
	}
	if len(nova.Cargos) == 0 {
		return fmt.Errorf("%w: ao menos um cargo", ErrEleicaoInvalida)
	}
	for _, c := range nova.Cargos {
		if strings.TrimSpace(c.Titulo) == "" {
			return fmt.Errorf("%w: cargo sem titulo", ErrEleicaoInvalida)
		}
		if c.MaxCandidatos < 1 {
			return fmt.Errorf("%w: cargo %q com max_candidatos < 1", ErrEleicaoInvalida, c.Titulo)
		}
	}
	return nil
}
