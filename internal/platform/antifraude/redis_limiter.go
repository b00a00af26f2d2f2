// Pacote antifraude limita a frequência de emissão de sessões e de cédulas por chave de origem.
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

var ErrRateLimitExceeded = domain.ErrLimiteExcedido

// RedisRateLimiter conta requisições por chave em janelas fixas.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

// Validar incrementa o contador da chave e falha com ErrRateLimitExceeded acima do limite.
func (r *RedisRateLimiter) Validar(ctx context.Context, chave string) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	key := r.buildKey(chave)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("antifraude: incrementar chave: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("antifraude: definir expiracao: %w", err)
		}
	}

	if count > int64(r.limit) {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(chave string) string {
	// A chave carrega eleitor e origem; guardamos só o hash.
	hash := sha1.Sum([]byte(chave))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.Antifraude = (*RedisRateLimiter)(nil)
