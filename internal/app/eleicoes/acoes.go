package eleicoes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func (s *Service) solicitar(ctx context.Context, ator domain.Ator, tipo domain.TipoAcao, dados any) (Efeito, error) {
	payload, err := json.Marshal(dados)
	if err != nil {
		return Efeito{}, fmt.Errorf("eleicoes: serializar solicitacao: %w", err)
	}

	acao := domain.AcaoPendente{
		ID:            domain.AcaoID(s.ids.New()),
		Tipo:          tipo,
		Dados:         payload,
		Status:        domain.AcaoPendenteStatus,
		SolicitadoPor: ator.ID,
		SolicitadoEm:  s.clock.Agora(),
	}
	if err := s.acoes.Create(ctx, acao); err != nil {
		return Efeito{}, err
	}

	s.auditar(ctx, ator, "solicitar_"+string(tipo), "acao_pendente", string(acao.ID), nil)
	return Efeito{Pendente: true, Acao: &acao}, nil
}

func (s *Service) ListarAcoes(ctx context.Context, ator domain.Ator) ([]domain.AcaoPendente, error) {
	if !ator.Administrador() {
		return nil, domain.ErrSemPermissao
	}
	return s.acoes.ListPendentes(ctx)
}

// AprovarAcao revalida e aplica o pedido guardado. A ação é marcada antes da aplicação,
// então duas aprovações simultâneas não aplicam o mesmo pedido duas vezes.
func (s *Service) AprovarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) (Efeito, error) {
	if !ator.Administrador() {
		return Efeito{}, domain.ErrSemPermissao
	}

	acao, err := s.buscarAcao(ctx, id)
	if err != nil {
		return Efeito{}, err
	}

	aplicar, err := s.preparar(ctx, acao)
	if err != nil {
		return Efeito{}, err
	}

	if err := s.revisar(ctx, acao.ID, domain.AcaoAprovada, ator, observacoes); err != nil {
		return Efeito{}, err
	}

	efeito, err := aplicar(ctx)
	if err != nil {
		return Efeito{}, fmt.Errorf("eleicoes: aplicar acao %s aprovada: %w", acao.ID, err)
	}
	s.auditar(ctx, ator, "aprovar_acao", "acao_pendente", string(acao.ID), map[string]any{"tipo": acao.Tipo})
	return efeito, nil
}

func (s *Service) RejeitarAcao(ctx context.Context, ator domain.Ator, id domain.AcaoID, observacoes string) error {
	if !ator.Administrador() {
		return domain.ErrSemPermissao
	}
	if _, err := s.buscarAcao(ctx, id); err != nil {
		return err
	}
	if err := s.revisar(ctx, id, domain.AcaoRejeitada, ator, observacoes); err != nil {
		return err
	}
	s.auditar(ctx, ator, "rejeitar_acao", "acao_pendente", string(id), map[string]any{"observacoes": observacoes})
	return nil
}

// preparar decodifica e valida o pedido, devolvendo a função que o aplica.
func (s *Service) preparar(ctx context.Context, acao domain.AcaoPendente) (func(context.Context) (Efeito, error), error) {
	switch acao.Tipo {
	case domain.AcaoCriarEleicao:
		var nova NovaEleicao
		if err := json.Unmarshal(acao.Dados, &nova); err != nil {
			return nil, fmt.Errorf("%w: dados corrompidos: %v", ErrEleicaoInvalida, err)
		}
		if err := validarEleicao(nova); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (Efeito, error) {
			e, err := s.criarEleicao(ctx, nova)
			if err != nil {
				return Efeito{}, err
			}
			return Efeito{Eleicao: &e}, nil
		}, nil

	case domain.AcaoAdicionarCandidato:
		var novo NovoCandidato
		if err := json.Unmarshal(acao.Dados, &novo); err != nil {
			return nil, fmt.Errorf("%w: dados corrompidos: %v", ErrCandidatoInvalido, err)
		}
		if err := s.validarCandidato(ctx, novo); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (Efeito, error) {
			c, err := s.adicionarCandidato(ctx, novo)
			if err != nil {
				return Efeito{}, err
			}
			return Efeito{Candidato: &c}, nil
		}, nil

	case domain.AcaoRemoverCandidato:
		var pedido remocao
		if err := json.Unmarshal(acao.Dados, &pedido); err != nil {
			return nil, fmt.Errorf("%w: dados corrompidos: %v", ErrCandidatoInvalido, err)
		}
		c, err := s.validarRemocao(ctx, pedido)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) (Efeito, error) {
			if err := s.candidatos.Delete(ctx, c.ID); err != nil {
				return Efeito{}, err
			}
			return Efeito{Candidato: &c}, nil
		}, nil

	case domain.AcaoPublicarResultados:
		var pub publicacao
		if err := json.Unmarshal(acao.Dados, &pub); err != nil {
			return nil, fmt.Errorf("%w: dados corrompidos: %v", ErrEleicaoInvalida, err)
		}
		if _, err := s.buscarEleicao(ctx, pub.EleicaoID); err != nil {
			return nil, err
		}
		return func(ctx context.Context) (Efeito, error) {
			if err := s.eleicoes.PublicarResultados(ctx, pub.EleicaoID); err != nil {
				return Efeito{}, err
			}
			e, err := s.buscarEleicao(ctx, pub.EleicaoID)
			if err != nil {
				return Efeito{}, err
			}
			return Efeito{Eleicao: &e}, nil
		}, nil
	}

	return nil, fmt.Errorf("eleicoes: tipo de acao desconhecido %q", acao.Tipo)
}

func (s *Service) buscarAcao(ctx context.Context, id domain.AcaoID) (domain.AcaoPendente, error) {
	acao, err := s.acoes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AcaoPendente{}, ErrAcaoNaoEncontrada
		}
		return domain.AcaoPendente{}, err
	}
	if acao.Status != domain.AcaoPendenteStatus {
		return domain.AcaoPendente{}, fmt.Errorf("%w: status %s", ErrAcaoJaRevisada, acao.Status)
	}
	return acao, nil
}

func (s *Service) revisar(ctx context.Context, id domain.AcaoID, status domain.StatusAcao, ator domain.Ator, observacoes string) error {
	err := s.acoes.Revisar(ctx, id, status, ator.ID, observacoes, s.clock.Agora())
	if errors.Is(err, domain.ErrNotFound) {
		// Outra revisão venceu entre a leitura e a escrita.
		return ErrAcaoJaRevisada
	}
	return err
}
