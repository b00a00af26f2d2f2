package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

const esperaPadrao = 5 * time.Second

// Fila usa uma lista Redis para entregar eventos de voto anônimos ao worker.
type Fila struct {
	client *redis.Client
	key    string
	espera time.Duration
}

func NewFila(client *redis.Client, key string) *Fila {
	return &Fila{
		client: client,
		key:    key,
		espera: esperaPadrao,
	}
}

func (f *Fila) PublicarVoto(ctx context.Context, evento domain.EventoVoto) error {
	payload, err := json.Marshal(evento)
	if err != nil {
		return fmt.Errorf("redis fila: serializar evento: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: enfileirar evento: %w", err)
	}
	return nil
}

// ConsumirVotos bloqueia até o contexto terminar ou o handler devolver erro.
func (f *Fila) ConsumirVotos(ctx context.Context, handler func(context.Context, domain.EventoVoto) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := f.client.BRPop(ctx, f.espera, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("redis fila: consumir evento: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var evento domain.EventoVoto
		if err := json.Unmarshal([]byte(res[1]), &evento); err != nil {
			return fmt.Errorf("redis fila: payload invalido: %w", err)
		}

		if err := handler(ctx, evento); err != nil {
			return err
		}
	}
}

var _ domain.Fila = (*Fila)(nil)
