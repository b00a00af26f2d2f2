// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/eleicao-estudantil/internal/app/contas"
	"github.com/marcelojr/eleicao-estudantil/internal/app/eleicoes"
	"github.com/marcelojr/eleicao-estudantil/internal/app/httpapi"
	"github.com/marcelojr/eleicao-estudantil/internal/app/realtime"
	"github.com/marcelojr/eleicao-estudantil/internal/app/voting"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/antifraude"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/auth"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/clock"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/config"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/health"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/migrations"
	postgresstorage "github.com/marcelojr/eleicao-estudantil/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/eleicao-estudantil/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.OpenDriver(ctx, cfg.DBDriver, cfg.PostgresDSN(), cfg.SQLitePath)
	if err != nil {
		logger.Fatal("falha ao conectar no banco", "driver", cfg.DBDriver, "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis centraliza fila, contadores, antifraude e o canal do painel.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	perfis := postgresstorage.NewPerfilRepository(db)
	eleicoesRepo := postgresstorage.NewEleicaoRepository(db)
	auditoria := postgresstorage.NewAuditoriaRepository(db)
	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	notificador := redisstorage.NewNotificador(redisClient, cfg.CanalNotificacoes)

	var antifraudeSvc domain.Antifraude = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		antifraudeSvc = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow(), cfg.RateLimitKeyPrefix)
	}

	votacao := voting.NewService(voting.Dependencias{
		Perfis:     perfis,
		Eleicoes:   eleicoesRepo,
		Sessoes:    postgresstorage.NewSessaoRepository(db),
		Urna:       postgresstorage.NewUrna(db),
		Apuracao:   postgresstorage.NewApuracaoRepository(db),
		Contador:   contador,
		Fila:       fila,
		Antifraude: antifraudeSvc,
		Clock:      clockSystem,
		IDs:        idGen,
		SessaoTTL:  cfg.SessaoTTL,
	})

	emissor := auth.NewEmissor(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, clockSystem)
	contasSvc := contas.NewService(perfis, auditoria, auth.NewSenhas(cfg.BcryptCost), emissor, idGen)
	catalogo := eleicoes.NewService(
		eleicoesRepo,
		postgresstorage.NewCandidatoRepository(db),
		postgresstorage.NewAcaoRepository(db),
		auditoria,
		clockSystem,
		idGen,
	)

	// O hub recebe as parciais publicadas pelo worker e repassa aos painéis conectados.
	hub := realtime.NewHub()
	go hub.Rodar(ctx)
	go func() {
		if err := hub.Escutar(ctx, notificador); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("assinatura do painel encerrada", "err", err)
		}
	}()

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	api := httpapi.New(httpapi.Dependencias{
		Votacao:  votacao,
		Contas:   contasSvc,
		Eleicoes: catalogo,
		Tokens:   emissor,
		Painel:   hub,
		Logger:   logger.L(),
	})
	api.Register(mux)
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "driver", cfg.DBDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}

	logger.Info("api finalizada")
}
