// Pacote worker contém o processamento assíncrono dos eventos de voto e a rotina de status das eleições.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/app/voting"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

// ErrEventoInvalido marca eventos sem as chaves necessárias para atualizar os contadores.
var ErrEventoInvalido = errors.New("evento de voto invalido")

// VoteProcessor mantém os contadores ao vivo e avisa o painel em tempo real.
// O voto já está gravado quando o evento chega; aqui nada é persistido no banco.
type VoteProcessor struct {
	contador    domain.Contador
	notificador domain.Notificador
	clock       domain.Clock
}

func NewVoteProcessor(contador domain.Contador, notificador domain.Notificador, clock domain.Clock) *VoteProcessor {
	return &VoteProcessor{
		contador:    contador,
		notificador: notificador,
		clock:       clock,
	}
}

func (p *VoteProcessor) Process(ctx context.Context, evento domain.EventoVoto) error {
	start := time.Now()

	if evento.EleicaoID == "" || evento.CargoID == "" || evento.CandidatoID == "" {
		return fmt.Errorf("%w: %+v", ErrEventoInvalido, evento)
	}

	totalCargo, err := p.contador.Incrementar(ctx, voting.CounterKeyTotalCargo(evento.EleicaoID, evento.CargoID), 1)
	if err != nil {
		return fmt.Errorf("worker: incrementar contador cargo %s/%s: %w", evento.EleicaoID, evento.CargoID, err)
	}

	totalCandidato, err := p.contador.Incrementar(ctx, voting.CounterKeyCandidato(evento.EleicaoID, evento.CandidatoID), 1)
	if err != nil {
		return fmt.Errorf("worker: incrementar contador candidato %s/%s: %w", evento.EleicaoID, evento.CandidatoID, err)
	}

	if p.notificador != nil {
		notificacao := domain.Notificacao{
			Tipo:           "voto",
			EleicaoID:      evento.EleicaoID,
			CargoID:        evento.CargoID,
			CandidatoID:    evento.CandidatoID,
			VotosCandidato: totalCandidato,
			VotosCargo:     totalCargo,
			Instante:       p.clock.Agora(),
		}
		// Painel perde uma atualização, mas os contadores seguem corretos.
		if err := p.notificador.Publicar(ctx, notificacao); err != nil {
			logger.Warn("falha ao notificar painel", "eleicao", evento.EleicaoID, "error", err)
		}
	}

	metrics.IncVoteProcessed()
	metrics.ObserveProcessingDuration(time.Since(start).Seconds())

	return nil
}
