package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

// tentativasEmissao limita as releituras quando outra requisição do mesmo eleitor vence a corrida.
const tentativasEmissao = 3

// CriarSessao emite, reaproveita ou rotaciona a sessão do eleitor na eleição.
// A aprovação do cadastro é checada antes do estado da eleição.
func (s *Service) CriarSessao(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SessaoVotacao, error) {
	sessao, err := s.criarSessao(ctx, eleitorID, eleicaoID)
	if err != nil {
		metrics.ObserveSessionRequest(statusMetrica(err))
		return domain.SessaoVotacao{}, err
	}
	metrics.ObserveSessionRequest("ok")
	return sessao, nil
}

func (s *Service) criarSessao(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SessaoVotacao, error) {
	perfil, err := s.perfis.FindByID(ctx, eleitorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SessaoVotacao{}, fmt.Errorf("%w: perfil inexistente", ErrNaoElegivel)
		}
		return domain.SessaoVotacao{}, fmt.Errorf("voting: carregar perfil: %w", err)
	}
	if perfil.Papel != domain.PapelEleitor {
		return domain.SessaoVotacao{}, fmt.Errorf("%w: papel %s nao vota", ErrNaoElegivel, perfil.Papel)
	}
	if perfil.StatusCadastro != domain.CadastroAprovado {
		return domain.SessaoVotacao{}, fmt.Errorf("%w: cadastro %s", ErrNaoElegivel, perfil.StatusCadastro)
	}

	eleicao, err := s.eleicoes.FindByID(ctx, eleicaoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SessaoVotacao{}, ErrEleicaoNaoEncontrada
		}
		return domain.SessaoVotacao{}, fmt.Errorf("voting: carregar eleicao: %w", err)
	}

	agora := s.clock.Agora()
	if status := eleicao.StatusEm(agora); status != domain.EleicaoAtiva {
		return domain.SessaoVotacao{}, fmt.Errorf("%w: status %s", ErrEleicaoInativa, status)
	}
	if !eleicao.AceitaCurso(perfil.Curso) {
		return domain.SessaoVotacao{}, fmt.Errorf("%w: curso %q fora de %q", ErrNaoElegivel, perfil.Curso, eleicao.EleitoresElegiveis)
	}

	if s.antifraude != nil {
		if err := s.antifraude.Validar(ctx, "sessao|"+string(eleitorID)); err != nil {
			return domain.SessaoVotacao{}, err
		}
	}

	for tentativa := 0; tentativa < tentativasEmissao; tentativa++ {
		sessao, pronta, err := s.emitir(ctx, eleitorID, eleicao)
		if err != nil || pronta {
			return sessao, err
		}
		logger.Debug("disputa na emissao de sessao", "eleicao_id", eleicaoID, "tentativa", tentativa+1)
	}

	return domain.SessaoVotacao{}, fmt.Errorf("voting: emissao de sessao nao convergiu para eleicao %s", eleicaoID)
}

// emitir devolve pronta=false quando uma escrita concorrente mudou a linha e a leitura precisa ser refeita.
func (s *Service) emitir(ctx context.Context, eleitorID domain.PerfilID, eleicao domain.Eleicao) (domain.SessaoVotacao, bool, error) {
	agora := s.clock.Agora()

	atual, err := s.sessoes.FindByEleitor(ctx, eleitorID, eleicao.ID)
	if errors.Is(err, domain.ErrNotFound) {
		token, err := s.novoToken()
		if err != nil {
			return domain.SessaoVotacao{}, false, err
		}
		nova := domain.SessaoVotacao{
			ID:        domain.SessaoID(s.ids.New()),
			EleicaoID: eleicao.ID,
			EleitorID: eleitorID,
			Token:     token,
			ExpiraEm:  agora.Add(s.sessaoTTL),
			CriadoEm:  agora,
		}
		criada, err := s.sessoes.CriarSeAusente(ctx, nova)
		if err != nil {
			return domain.SessaoVotacao{}, false, fmt.Errorf("voting: criar sessao: %w", err)
		}
		return nova, criada, nil
	}
	if err != nil {
		return domain.SessaoVotacao{}, false, fmt.Errorf("voting: buscar sessao: %w", err)
	}

	if atual.Votou {
		return domain.SessaoVotacao{}, false, ErrJaVotou
	}
	if !atual.Expirada(agora) {
		return atual, true, nil
	}

	token, err := s.novoToken()
	if err != nil {
		return domain.SessaoVotacao{}, false, err
	}
	expiraEm := agora.Add(s.sessaoTTL)
	rotacionada, err := s.sessoes.Rotacionar(ctx, atual.ID, atual.Token, token, expiraEm)
	if err != nil {
		return domain.SessaoVotacao{}, false, fmt.Errorf("voting: rotacionar sessao: %w", err)
	}
	if !rotacionada {
		return domain.SessaoVotacao{}, false, nil
	}

	atual.Token = token
	atual.ExpiraEm = expiraEm
	return atual, true, nil
}

func statusMetrica(err error) string {
	if classe := Classificar(err); classe != ClasseInterno {
		return classe
	}
	return "erro"
}

// SituacaoEleitor informa ao eleitor se ele já tem sessão e quantos cargos já votou.
// Não valida elegibilidade: quem nunca pediu sessão apenas recebe PossuiSessao=false.
func (s *Service) SituacaoEleitor(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SituacaoEleitor, error) {
	if _, err := s.eleicoes.FindByID(ctx, eleicaoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SituacaoEleitor{}, ErrEleicaoNaoEncontrada
		}
		return domain.SituacaoEleitor{}, fmt.Errorf("voting: carregar eleicao: %w", err)
	}

	situacao := domain.SituacaoEleitor{EleicaoID: eleicaoID}
	sessao, err := s.sessoes.FindByEleitor(ctx, eleitorID, eleicaoID)
	if errors.Is(err, domain.ErrNotFound) {
		return situacao, nil
	}
	if err != nil {
		return domain.SituacaoEleitor{}, fmt.Errorf("voting: carregar sessao: %w", err)
	}

	votados, err := s.sessoes.ContarVotos(ctx, sessao.ID)
	if err != nil {
		return domain.SituacaoEleitor{}, fmt.Errorf("voting: contar votos da sessao: %w", err)
	}
	situacao.PossuiSessao = true
	situacao.Votou = sessao.Votou
	situacao.CargosVotados = votados
	return situacao, nil
}
