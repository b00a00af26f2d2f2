// Pacote realtime entrega as parciais de votação aos painéis da equipe via websocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/logger"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	bufferCliente  = 64
)

// Assinante é a origem das notificações; em produção é o pub/sub do Redis.
type Assinante interface {
	Assinar(ctx context.Context, handler func(domain.Notificacao)) error
}

type cliente struct {
	hub       *Hub
	conn      *websocket.Conn
	envio     chan []byte
	eleicaoID domain.EleicaoID
}

// Hub agrupa os clientes por eleição. Só a goroutine de Rodar altera o mapa.
type Hub struct {
	mu        sync.RWMutex
	clientes  map[domain.EleicaoID]map[*cliente]struct{}
	registrar chan *cliente
	remover   chan *cliente
	difundir  chan domain.Notificacao
	encerrado chan struct{}
	upgrader  websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clientes:  make(map[domain.EleicaoID]map[*cliente]struct{}),
		registrar: make(chan *cliente),
		remover:   make(chan *cliente),
		difundir:  make(chan domain.Notificacao, 256),
		encerrado: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Rodar processa registros e difusões até o contexto terminar, fechando todas as conexões na saída.
func (h *Hub) Rodar(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.encerrado)
			h.mu.Lock()
			for eleicao, clientes := range h.clientes {
				for c := range clientes {
					close(c.envio)
					metrics.AddRealtimeClients(-1)
				}
				delete(h.clientes, eleicao)
			}
			h.mu.Unlock()
			return

		case c := <-h.registrar:
			h.mu.Lock()
			if h.clientes[c.eleicaoID] == nil {
				h.clientes[c.eleicaoID] = make(map[*cliente]struct{})
			}
			h.clientes[c.eleicaoID][c] = struct{}{}
			h.mu.Unlock()
			metrics.AddRealtimeClients(1)

		case c := <-h.remover:
			h.desconectar(c)

		case n := <-h.difundir:
			payload, err := json.Marshal(n)
			if err != nil {
				logger.Warn("realtime: serializar notificacao", "error", err)
				continue
			}

			h.mu.RLock()
			var lentos []*cliente
			for c := range h.clientes[n.EleicaoID] {
				select {
				case c.envio <- payload:
				default:
					lentos = append(lentos, c)
				}
			}
			h.mu.RUnlock()

			// Cliente que não acompanha o ritmo é desconectado.
			for _, c := range lentos {
				h.desconectar(c)
			}
		}
	}
}

func (h *Hub) desconectar(c *cliente) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientes, ok := h.clientes[c.eleicaoID]
	if !ok {
		return
	}
	if _, ok := clientes[c]; !ok {
		return
	}
	delete(clientes, c)
	close(c.envio)
	if len(clientes) == 0 {
		delete(h.clientes, c.eleicaoID)
	}
	metrics.AddRealtimeClients(-1)
}

// Difundir enfileira a notificação para os clientes da eleição; descarta se o hub estiver saturado.
func (h *Hub) Difundir(n domain.Notificacao) {
	select {
	case h.difundir <- n:
	default:
		logger.Warn("realtime: hub saturado, notificacao descartada", "eleicao", n.EleicaoID)
	}
}

// Escutar repassa ao hub tudo o que o assinante receber.
func (h *Hub) Escutar(ctx context.Context, assinante Assinante) error {
	return assinante.Assinar(ctx, h.Difundir)
}

func (h *Hub) Conectados(eleicaoID domain.EleicaoID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientes[eleicaoID])
}

// Atender faz o upgrade da requisição e registra o cliente na eleição. A autorização é do chamador.
func (h *Hub) Atender(w http.ResponseWriter, r *http.Request, eleicaoID domain.EleicaoID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &cliente{
		hub:       h,
		conn:      conn,
		envio:     make(chan []byte, bufferCliente),
		eleicaoID: eleicaoID,
	}

	select {
	case h.registrar <- c:
	case <-h.encerrado:
		conn.Close()
		return context.Canceled
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	}

	go c.escrever()
	go c.ler()
	return nil
}

// ler só existe para tratar pong e fechamento; o painel não envia comandos.
func (c *cliente) ler() {
	defer func() {
		select {
		case c.hub.remover <- c:
		case <-c.hub.encerrado:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("realtime: conexao encerrada", "eleicao", c.eleicaoID, "error", err)
			}
			return
		}
	}
}

func (c *cliente) escrever() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.envio:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
