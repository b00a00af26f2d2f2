// Pacote health expõe o readiness que checa banco e Redis.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const timeoutPadrao = 2 * time.Second

type Checker struct {
	db      *sql.DB
	redis   *redis.Client
	timeout time.Duration
}

func NewChecker(db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{db: db, redis: redis, timeout: timeoutPadrao}
}

// Check devolve o nome da dependência indisponível, ou vazio quando tudo responde.
func (c *Checker) Check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			return "database", err
		}
	}

	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return "redis", err
		}
	}

	return "", nil
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dep, err := c.Check(r.Context()); err != nil {
			http.Error(w, dep+" unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
