// Pacote clock fornece o relógio do sistema e um relógio controlável para testes e simulações.
package clock

import (
	"sync"
	"time"
)

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Agora() time.Time {
	return time.Now().UTC()
}

// Manual devolve sempre o instante configurado até ser avançado explicitamente.
type Manual struct {
	mu    sync.Mutex
	agora time.Time
}

func NewManual(inicio time.Time) *Manual {
	return &Manual{agora: inicio.UTC()}
}

func (m *Manual) Agora() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agora
}

func (m *Manual) Avancar(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agora = m.agora.Add(d)
}

func (m *Manual) Definir(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agora = t.UTC()
}
