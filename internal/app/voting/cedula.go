package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

// RegistrarVoto grava um voto para um cargo dentro de uma transação. O evento anônimo
// só é publicado depois do commit; falha na fila não desfaz o voto.
func (s *Service) RegistrarVoto(ctx context.Context, cedula domain.Cedula) error {
	evento, err := s.registrarVoto(ctx, cedula)
	if err != nil {
		metrics.ObserveVoteRequest(statusMetrica(err))
		return err
	}
	metrics.ObserveVoteRequest("ok")

	if s.fila != nil {
		if err := s.fila.PublicarVoto(ctx, evento); err != nil {
			logger.Warn("falha ao publicar evento de voto",
				"eleicao_id", evento.EleicaoID,
				"cargo_id", evento.CargoID,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) registrarVoto(ctx context.Context, cedula domain.Cedula) (domain.EventoVoto, error) {
	if cedula.Token == "" {
		return domain.EventoVoto{}, fmt.Errorf("%w: token ausente", ErrSessaoInvalida)
	}
	if cedula.CargoID == "" || cedula.CandidatoID == "" {
		return domain.EventoVoto{}, fmt.Errorf("%w: cargo e candidato obrigatorios", ErrCandidatoInvalido)
	}

	if s.antifraude != nil {
		if err := s.antifraude.Validar(ctx, "voto|"+cedula.Token); err != nil {
			return domain.EventoVoto{}, err
		}
	}

	agora := s.clock.Agora()
	var evento domain.EventoVoto

	err := s.urna.Transacao(ctx, func(ctx context.Context, tx domain.UrnaTx) error {
		sessao, err := tx.SessaoPorToken(ctx, cedula.Token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrSessaoInvalida
			}
			return err
		}
		if sessao.EleicaoID != cedula.EleicaoID {
			return fmt.Errorf("%w: sessao emitida para outra eleicao", ErrSessaoInvalida)
		}
		if sessao.Expirada(agora) {
			return ErrSessaoExpirada
		}

		eleicao, err := tx.Eleicao(ctx, sessao.EleicaoID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrEleicaoNaoEncontrada
			}
			return err
		}
		if status := eleicao.StatusEm(agora); status != domain.EleicaoAtiva {
			return fmt.Errorf("%w: status %s", ErrEleicaoInativa, status)
		}

		if err := validarCandidato(ctx, tx, eleicao.ID, cedula); err != nil {
			return err
		}

		jaVotado, err := tx.VotoExiste(ctx, sessao.ID, cedula.CargoID)
		if err != nil {
			return err
		}
		if jaVotado {
			return ErrVotoDuplicado
		}
		if sessao.Votou {
			return ErrSessaoConsumida
		}

		voto := domain.Voto{
			ID:          domain.VotoID(s.ids.New()),
			EleicaoID:   eleicao.ID,
			CargoID:     cedula.CargoID,
			CandidatoID: cedula.CandidatoID,
			SessaoID:    sessao.ID,
			CriadoEm:    agora,
		}
		if err := tx.InserirVoto(ctx, voto); err != nil {
			if errors.Is(err, domain.ErrDuplicado) {
				return ErrVotoDuplicado
			}
			return err
		}

		votados, err := tx.ContarVotosSessao(ctx, sessao.ID)
		if err != nil {
			return err
		}
		cargos, err := tx.ContarCargosVotaveis(ctx, eleicao.ID)
		if err != nil {
			return err
		}
		if votados >= cargos {
			if err := tx.MarcarVotou(ctx, sessao.ID); err != nil {
				return err
			}
		}

		evento = domain.EventoVoto{
			EleicaoID:   voto.EleicaoID,
			CargoID:     voto.CargoID,
			CandidatoID: voto.CandidatoID,
			CriadoEm:    agora,
		}
		return nil
	})
	if err != nil {
		return domain.EventoVoto{}, err
	}

	return evento, nil
}

func validarCandidato(ctx context.Context, tx domain.UrnaTx, eleicaoID domain.EleicaoID, cedula domain.Cedula) error {
	cargo, err := tx.Cargo(ctx, cedula.CargoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: cargo desconhecido", ErrCandidatoInvalido)
		}
		return err
	}
	if cargo.EleicaoID != eleicaoID {
		return fmt.Errorf("%w: cargo de outra eleicao", ErrCandidatoInvalido)
	}

	candidato, err := tx.Candidato(ctx, cedula.CandidatoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: candidato desconhecido", ErrCandidatoInvalido)
		}
		return err
	}
	if candidato.CargoID != cargo.ID || candidato.EleicaoID != eleicaoID {
		return fmt.Errorf("%w: candidato de outro cargo", ErrCandidatoInvalido)
	}
	return nil
}
