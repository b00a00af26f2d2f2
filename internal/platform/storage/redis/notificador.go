package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
)

// Notificador publica parciais no canal pub/sub lido pelo painel em tempo real.
type Notificador struct {
	client *redis.Client
	canal  string
}

func NewNotificador(client *redis.Client, canal string) *Notificador {
	return &Notificador{client: client, canal: canal}
}

func (n *Notificador) Publicar(ctx context.Context, notificacao domain.Notificacao) error {
	payload, err := json.Marshal(notificacao)
	if err != nil {
		return fmt.Errorf("redis notificador: serializar: %w", err)
	}
	if err := n.client.Publish(ctx, n.canal, payload).Err(); err != nil {
		return fmt.Errorf("redis notificador: publicar: %w", err)
	}
	return nil
}

// Assinar entrega cada notificação recebida ao handler até o contexto ser cancelado.
// Mensagens malformadas são descartadas com log.
func (n *Notificador) Assinar(ctx context.Context, handler func(domain.Notificacao)) error {
	sub := n.client.Subscribe(ctx, n.canal)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis notificador: assinar %s: %w", n.canal, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var notificacao domain.Notificacao
			if err := json.Unmarshal([]byte(msg.Payload), &notificacao); err != nil {
				logger.Warn("notificacao descartada", "canal", n.canal, "error", err)
				continue
			}
			handler(notificacao)
		}
	}
}

var _ domain.Notificador = (*Notificador)(nil)
