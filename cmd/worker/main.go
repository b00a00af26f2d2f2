// Worker assíncrono: consome eventos de voto da fila, mantém contadores e notificações e atualiza o status das eleições.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/eleicao-estudantil/internal/app/worker"
	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/clock"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/config"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/health"
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

	// Worker usa a mesma conexão GORM da API para compartilhar migrations e modelos.
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
		// Evitamos divergência de schema rodando a mesma migração condicional da API.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis é obrigatório aqui porque fila, contador e pub/sub vivem sobre a mesma instância.
	redisClient, err := redisstorage.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	contador := redisstorage.NewContador(redisClient, cfg.ContadorKeyPrefix)
	fila := redisstorage.NewFila(redisClient, cfg.FilaKey)
	notificador := redisstorage.NewNotificador(redisClient, cfg.CanalNotificacoes)
	clockSystem := clock.NewSystemClock()
	checker := health.NewChecker(sqlDB, redisClient)

	if cfg.WorkerMetricsAddress != "" {
		go func() {
			// Metrics expõe observabilidade enquanto a goroutine principal consome a fila.
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/readyz", checker.ReadyHandler())
			logger.Info("worker metrics ouvindo", "addr", cfg.WorkerMetricsAddress)
			if err := http.ListenAndServe(cfg.WorkerMetricsAddress, mux); err != nil {
				logger.Error("erro no servidor de metrics do worker", "err", err)
			}
		}()
	}

	updater := worker.NewStatusUpdater(postgresstorage.NewEleicaoRepository(db), clockSystem)
	go func() {
		if err := updater.Rodar(ctx, cfg.StatusInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("atualizador de status encerrado", "err", err)
		}
	}()

	processor := worker.NewVoteProcessor(contador, notificador, clockSystem)

	logger.Info("worker iniciado, aguardando votos")
	err = fila.ConsumirVotos(ctx, func(ctx context.Context, evento domain.EventoVoto) error {
		// Um evento com falha não interrompe a fila; o voto já está no banco e a apuração não depende dele.
		if err := processor.Process(ctx, evento); err != nil {
			logger.Error("erro ao processar evento de voto", "eleicao", evento.EleicaoID, "cargo", evento.CargoID, "err", err)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Fatal("worker finalizado com erro", "err", err)
	}

	logger.Info("worker finalizado")
}
