package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_session_requests_total",
		Help: "Total de pedidos de sessao de votacao por resultado",
	}, []string{"status"})

	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_vote_requests_total",
		Help: "Total de cedulas recebidas por resultado",
	}, []string{"status"})

	voteEventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eleicao_vote_events_processed_total",
		Help: "Total de eventos de voto processados pelo worker",
	})

	voteProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eleicao_vote_event_processing_duration_seconds",
		Help:    "Tempo para processar um evento de voto no worker",
		Buckets: prometheus.DefBuckets,
	})

	tallyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eleicao_tally_duration_seconds",
		Help:    "Tempo de uma apuracao completa",
		Buckets: prometheus.DefBuckets,
	})

	statusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eleicao_status_transitions_total",
		Help: "Transicoes de status aplicadas pelo atualizador",
	}, []string{"status"})

	realtimeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eleicao_realtime_clients",
		Help: "Clientes websocket conectados ao painel em tempo real",
	})
)

func ObserveSessionRequest(status string) {
	sessionRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncVoteProcessed() {
	voteEventsProcessedTotal.Inc()
}

func ObserveProcessingDuration(seconds float64) {
	voteProcessingDuration.Observe(seconds)
}

func ObserveTallyDuration(seconds float64) {
	tallyDuration.Observe(seconds)
}

func IncStatusTransition(status string) {
	statusTransitionsTotal.WithLabelValues(status).Inc()
}

func AddRealtimeClients(delta float64) {
	realtimeClients.Add(delta)
}
