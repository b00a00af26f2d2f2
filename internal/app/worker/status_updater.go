package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

// StatusUpdater grava na coluna status o valor derivado do relógio.
// Leitores não dependem dela; a coluna existe para listagens e relatórios.
type StatusUpdater struct {
	eleicoes domain.EleicaoRepository
	clock    domain.Clock
}

func NewStatusUpdater(eleicoes domain.EleicaoRepository, clock domain.Clock) *StatusUpdater {
	return &StatusUpdater{eleicoes: eleicoes, clock: clock}
}

// Executar devolve quantas eleições mudaram de status nesta rodada.
func (u *StatusUpdater) Executar(ctx context.Context) (int, error) {
	eleicoes, err := u.eleicoes.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("worker: listar eleicoes: %w", err)
	}

	agora := u.clock.Agora()
	alteradas := 0
	for _, e := range eleicoes {
		novo := e.StatusEm(agora)
		if novo == e.Status {
			continue
		}
		if err := u.eleicoes.AtualizarStatus(ctx, e.ID, novo); err != nil {
			return alteradas, fmt.Errorf("worker: atualizar status %s: %w", e.ID, err)
		}
		alteradas++
		metrics.IncStatusTransition(string(novo))
		logger.Info("status de eleicao atualizado", "eleicao", e.ID, "de", e.Status, "para", novo)
	}
	return alteradas, nil
}

// Rodar executa uma rodada imediata e depois uma a cada intervalo, até o contexto terminar.
func (u *StatusUpdater) Rodar(ctx context.Context, intervalo time.Duration) error {
	ticker := time.NewTicker(intervalo)
	defer ticker.Stop()

	for {
		if _, err := u.Executar(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("erro ao atualizar status das eleicoes", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
