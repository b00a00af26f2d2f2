// Pacote contas trata cadastro, login e revisão de perfis de estudantes e da equipe.
package contas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
)

const tamanhoMinimoSenha = 8

var (
	ErrCadastroInvalido     = errors.New("cadastro invalido")
	ErrCadastroDuplicado    = errors.New("email ou matricula ja cadastrados")
	ErrCredenciaisInvalidas = errors.New("email ou senha invalidos")
	ErrPerfilNaoEncontrado  = errors.New("perfil nao encontrado")
	ErrCadastroJaRevisado   = errors.New("cadastro ja revisado")
)

type Hasher interface {
	Hash(senha string) (string, error)
	Conferir(hash, senha string) bool
}

type EmissorToken interface {
	Emitir(p domain.Perfil) (string, error)
}

type NovoCadastro struct {
	Email        string `json:"email"`
	Senha        string `json:"senha"`
	NomeCompleto string `json:"nome_completo"`
	Matricula    string `json:"matricula"`
	Curso        string `json:"curso"`
	Ano          string `json:"ano"`
	Genero       string `json:"genero"`
	URLDocumento string `json:"url_documento"`
}

// DadosPerfil são os campos que o próprio estudante pode editar.
type DadosPerfil struct {
	Email        string `json:"email"`
	NomeCompleto string `json:"nome_completo"`
	Matricula    string `json:"matricula"`
	Curso        string `json:"curso"`
	Ano          string `json:"ano"`
	Genero       string `json:"genero"`
}

type Service struct {
	perfis    domain.PerfilRepository
	auditoria domain.AuditoriaRepository
	hasher    Hasher
	tokens    EmissorToken
	ids       *ids.Generator
}

func NewService(perfis domain.PerfilRepository, auditoria domain.AuditoriaRepository, hasher Hasher, tokens EmissorToken, idsGen *ids.Generator) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		perfis:    perfis,
		auditoria: auditoria,
		hasher:    hasher,
		tokens:    tokens,
		ids:       idsGen,
	}
}

// Registrar cria o perfil como eleitor pendente de aprovação.
func (s *Service) Registrar(ctx context.Context, c NovoCadastro) (domain.Perfil, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Matricula = strings.TrimSpace(c.Matricula)
	if err := validarCadastro(c); err != nil {
		return domain.Perfil{}, err
	}

	duplicado, err := s.perfis.ExisteDuplicado(ctx, c.Email, c.Matricula)
	if err != nil {
		return domain.Perfil{}, err
	}
	if duplicado {
		return domain.Perfil{}, ErrCadastroDuplicado
	}

	hash, err := s.hasher.Hash(c.Senha)
	if err != nil {
		return domain.Perfil{}, err
	}

	p := domain.Perfil{
		ID:             domain.PerfilID(s.ids.New()),
		Email:          c.Email,
		SenhaHash:      hash,
		NomeCompleto:   strings.TrimSpace(c.NomeCompleto),
		Matricula:      c.Matricula,
		Curso:          strings.TrimSpace(c.Curso),
		Ano:            c.Ano,
		Genero:         c.Genero,
		URLDocumento:   c.URLDocumento,
		Papel:          domain.PapelEleitor,
		StatusCadastro: domain.CadastroPendente,
	}
	if err := s.perfis.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicado) {
			return domain.Perfil{}, ErrCadastroDuplicado
		}
		return domain.Perfil{}, err
	}

	s.auditar(ctx, domain.Ator{ID: p.ID, Papel: p.Papel}, "registrar", p.ID, map[string]any{"curso": p.Curso})
	return p, nil
}

// Autenticar confere a senha e emite o token de acesso; perfis pendentes também entram.
func (s *Service) Autenticar(ctx context.Context, email, senha string) (domain.Perfil, string, error) {
	p, err := s.perfis.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Perfil{}, "", ErrCredenciaisInvalidas
		}
		return domain.Perfil{}, "", err
	}
	if !s.hasher.Conferir(p.SenhaHash, senha) {
		return domain.Perfil{}, "", ErrCredenciaisInvalidas
	}

	token, err := s.tokens.Emitir(p)
	if err != nil {
		return domain.Perfil{}, "", err
	}
	return p, token, nil
}

func (s *Service) AprovarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error {
	return s.revisar(ctx, ator, id, domain.CadastroAprovado, observacoes)
}

func (s *Service) RejeitarCadastro(ctx context.Context, ator domain.Ator, id domain.PerfilID, observacoes string) error {
	return s.revisar(ctx, ator, id, domain.CadastroRejeitado, observacoes)
}

func (s *Service) revisar(ctx context.Context, ator domain.Ator, id domain.PerfilID, status domain.StatusCadastro, observacoes string) error {
	if !ator.Privilegiado() {
		return domain.ErrSemPermissao
	}

	p, err := s.buscar(ctx, id)
	if err != nil {
		return err
	}
	if p.StatusCadastro != domain.CadastroPendente {
		return fmt.Errorf("%w: status atual %s", ErrCadastroJaRevisado, p.StatusCadastro)
	}

	if err := s.perfis.AtualizarCadastro(ctx, id, status, observacoes); err != nil {
		return err
	}

	s.auditar(ctx, ator, "revisar_cadastro", id, map[string]any{"status": status, "observacoes": observacoes})
	return nil
}

// AlterarPapel é exclusivo de administradores.
func (s *Service) AlterarPapel(ctx context.Context, ator domain.Ator, id domain.PerfilID, papel domain.Papel) error {
	if !ator.Administrador() {
		return domain.ErrSemPermissao
	}
	if !papel.Valido() {
		return fmt.Errorf("%w: papel %q", ErrCadastroInvalido, papel)
	}

	anterior, err := s.buscar(ctx, id)
	if err != nil {
		return err
	}
	if err := s.perfis.AtualizarPapel(ctx, id, papel); err != nil {
		return err
	}

	s.auditar(ctx, ator, "alterar_papel", id, map[string]any{"de": anterior.Papel, "para": papel})
	return nil
}

// AtualizarPerfil edita o perfil do próprio ator. Depois da aprovação, matrícula e curso ficam
// presos ao documento conferido pela equipe e não mudam por aqui.
func (s *Service) AtualizarPerfil(ctx context.Context, ator domain.Ator, dados DadosPerfil) (domain.Perfil, error) {
	dados.Email = strings.ToLower(strings.TrimSpace(dados.Email))
	dados.Matricula = strings.TrimSpace(dados.Matricula)
	dados.NomeCompleto = strings.TrimSpace(dados.NomeCompleto)
	dados.Curso = strings.TrimSpace(dados.Curso)
	if err := validarDados(dados); err != nil {
		return domain.Perfil{}, err
	}

	p, err := s.buscar(ctx, ator.ID)
	if err != nil {
		return domain.Perfil{}, err
	}
	if p.StatusCadastro == domain.CadastroAprovado && (dados.Matricula != p.Matricula || dados.Curso != p.Curso) {
		return domain.Perfil{}, fmt.Errorf("%w: matricula e curso nao mudam apos a aprovacao", ErrCadastroInvalido)
	}

	duplicado, err := s.perfis.ExisteDuplicadoDeOutro(ctx, p.ID, dados.Email, dados.Matricula)
	if err != nil {
		return domain.Perfil{}, err
	}
	if duplicado {
		return domain.Perfil{}, ErrCadastroDuplicado
	}

	p.Email = dados.Email
	p.NomeCompleto = dados.NomeCompleto
	p.Matricula = dados.Matricula
	p.Curso = dados.Curso
	p.Ano = dados.Ano
	p.Genero = dados.Genero
	if err := s.perfis.AtualizarDados(ctx, p); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicado):
			return domain.Perfil{}, ErrCadastroDuplicado
		case errors.Is(err, domain.ErrNotFound):
			return domain.Perfil{}, ErrPerfilNaoEncontrado
		}
		return domain.Perfil{}, err
	}

	s.auditar(ctx, ator, "atualizar_perfil", p.ID, map[string]any{"email": p.Email})
	return p, nil
}

func (s *Service) ListarPendentes(ctx context.Context, ator domain.Ator) ([]domain.Perfil, error) {
	if !ator.Privilegiado() {
		return nil, domain.ErrSemPermissao
	}
	return s.perfis.ListPorStatus(ctx, domain.CadastroPendente)
}

func (s *Service) buscar(ctx context.Context, id domain.PerfilID) (domain.Perfil, error) {
	p, err := s.perfis.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Perfil{}, ErrPerfilNaoEncontrado
	}
	return p, err
}

// auditar não interrompe a operação: falha na trilha vira log.
func (s *Service) auditar(ctx context.Context, ator domain.Ator, acao string, recurso domain.PerfilID, detalhes map[string]any) {
	if s.auditoria == nil {
		return
	}
	payload, err := json.Marshal(detalhes)
	if err != nil {
		logger.Warn("auditoria: serializar detalhes", "acao", acao, "error", err)
		return
	}
	reg := domain.RegistroAuditoria{
		ID:          domain.AuditoriaID(s.ids.New()),
		AtorID:      ator.ID,
		AtorPapel:   ator.Papel,
		Acao:        acao,
		TipoRecurso: "perfil",
		RecursoID:   string(recurso),
		Detalhes:    payload,
	}
	if err := s.auditoria.Registrar(ctx, reg); err != nil {
		logger.Warn("auditoria: registrar", "acao", acao, "recurso_id", recurso, "error", err)
	}
}

func validarCadastro(c NovoCadastro) error {
	if len(c.Senha) < tamanhoMinimoSenha {
		return fmt.Errorf("%w: senha com menos de %d caracteres", ErrCadastroInvalido, tamanhoMinimoSenha)
	}
	return validarDados(DadosPerfil{Email: c.Email, NomeCompleto: c.NomeCompleto, Matricula: c.Matricula})
}

func validarDados(d DadosPerfil) error {
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return fmt.Errorf("%w: email", ErrCadastroInvalido)
	}
	if strings.TrimSpace(d.NomeCompleto) == "" {
		return fmt.Errorf("%w: nome obrigatorio", ErrCadastroInvalido)
	}
	if d.Matricula == "" {
		return fmt.Errorf("%w: matricula obrigatoria", ErrCadastroInvalido)
	}
	return nil
}
