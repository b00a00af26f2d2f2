package voting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/metrics"
)

// Resultados devolve a apuração visível para o chamador. Papéis privilegiados enxergam
// tudo; eleitores só veem eleições encerradas com resultados publicados.
func (s *Service) Resultados(ctx context.Context, privilegiado bool) ([]domain.Resultado, error) {
	inicio := time.Now()
	defer func() { metrics.ObserveTallyDuration(time.Since(inicio).Seconds()) }()

	linhas, err := s.apuracao.Apurar(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApuracao, err)
	}

	agora := s.clock.Agora()
	visiveis := linhas[:0:0]
	for _, l := range linhas {
		if privilegiado || visivelParaEleitor(l, agora) {
			visiveis = append(visiveis, l)
		}
	}

	return montarResultados(visiveis, agora), nil
}

// ResultadosEleicao aplica a mesma apuração a uma única eleição.
func (s *Service) ResultadosEleicao(ctx context.Context, eleicaoID domain.EleicaoID, privilegiado bool) ([]domain.Resultado, error) {
	if _, err := s.eleicoes.FindByID(ctx, eleicaoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrEleicaoNaoEncontrada
		}
		return nil, fmt.Errorf("%w: %w", ErrApuracao, err)
	}

	todos, err := s.Resultados(ctx, privilegiado)
	if err != nil {
		return nil, err
	}

	resultado := make([]domain.Resultado, 0)
	for _, r := range todos {
		if r.EleicaoID == eleicaoID {
			resultado = append(resultado, r)
		}
	}
	return resultado, nil
}

// Parcial lê os contadores ao vivo mantidos pelo worker. Sem Redis, usa a apuração do banco.
func (s *Service) Parcial(ctx context.Context, eleicaoID domain.EleicaoID) ([]domain.Parcial, error) {
	eleicao, err := s.eleicoes.Detalhar(ctx, eleicaoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrEleicaoNaoEncontrada
		}
		return nil, fmt.Errorf("%w: %w", ErrApuracao, err)
	}

	if s.contador == nil {
		return s.parcialDoBanco(ctx, eleicaoID)
	}

	var chaves []string
	for _, cargo := range eleicao.Cargos {
		chaves = append(chaves, CounterKeyTotalCargo(eleicao.ID, cargo.ID))
		for _, cand := range cargo.Candidatos {
			chaves = append(chaves, CounterKeyCandidato(eleicao.ID, cand.ID))
		}
	}

	valores, err := s.contador.ObterTodos(ctx, chaves)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApuracao, err)
	}

	parciais := make([]domain.Parcial, 0, len(chaves))
	for _, cargo := range eleicao.Cargos {
		totalCargo := valores[CounterKeyTotalCargo(eleicao.ID, cargo.ID)]
		for _, cand := range cargo.Candidatos {
			parciais = append(parciais, domain.Parcial{
				EleicaoID:   eleicao.ID,
				CargoID:     cargo.ID,
				CandidatoID: cand.ID,
				Total:       valores[CounterKeyCandidato(eleicao.ID, cand.ID)],
				TotalCargo:  totalCargo,
			})
		}
	}
	return parciais, nil
}

// Participacao calcula o comparecimento de uma eleição: percentual de elegíveis que concluíram a cédula.
func (s *Service) Participacao(ctx context.Context, eleicaoID domain.EleicaoID) (domain.Participacao, error) {
	p, err := s.apuracao.Participacao(ctx, eleicaoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Participacao{}, ErrEleicaoNaoEncontrada
		}
		return domain.Participacao{}, fmt.Errorf("%w: %w", ErrApuracao, err)
	}
	p.Percentual = percentual(p.Votantes, p.TotalElegiveis)
	return p, nil
}

func (s *Service) parcialDoBanco(ctx context.Context, eleicaoID domain.EleicaoID) ([]domain.Parcial, error) {
	linhas, err := s.apuracao.Apurar(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApuracao, err)
	}

	parciais := make([]domain.Parcial, 0)
	for _, r := range montarResultados(linhas, s.clock.Agora()) {
		if r.EleicaoID != eleicaoID {
			continue
		}
		parciais = append(parciais, domain.Parcial{
			EleicaoID:   r.EleicaoID,
			CargoID:     r.CargoID,
			CandidatoID: r.CandidatoID,
			Total:       r.Votos,
			TotalCargo:  r.TotalVotosCargo,
		})
	}
	return parciais, nil
}

func visivelParaEleitor(l domain.LinhaApuracao, agora time.Time) bool {
	return l.MostrarResultados && domain.StatusNoInstante(agora, l.Inicio, l.Fim) == domain.EleicaoEncerrada
}

// montarResultados espera as linhas agrupadas por eleição e cargo, na ordem da consulta.
func montarResultados(linhas []domain.LinhaApuracao, agora time.Time) []domain.Resultado {
	resultados := make([]domain.Resultado, 0, len(linhas))

	for inicio := 0; inicio < len(linhas); {
		fim := inicio + 1
		for fim < len(linhas) && mesmoCargo(linhas[inicio], linhas[fim]) {
			fim++
		}
		resultados = append(resultados, apurarCargo(linhas[inicio:fim], agora)...)
		inicio = fim
	}

	return resultados
}

func mesmoCargo(a, b domain.LinhaApuracao) bool {
	return a.EleicaoID == b.EleicaoID && a.CargoID == b.CargoID
}

func apurarCargo(grupo []domain.LinhaApuracao, agora time.Time) []domain.Resultado {
	var total, maximo int64
	for _, l := range grupo {
		total += l.Votos
		if l.Votos > maximo {
			maximo = l.Votos
		}
	}

	lideres := 0
	if maximo > 0 {
		for _, l := range grupo {
			if l.Votos == maximo {
				lideres++
			}
		}
	}

	out := make([]domain.Resultado, len(grupo))
	for i, l := range grupo {
		lider := maximo > 0 && l.Votos == maximo
		out[i] = domain.Resultado{
			EleicaoID:          l.EleicaoID,
			EleicaoTitulo:      l.EleicaoTitulo,
			EleicaoStatus:      domain.StatusNoInstante(agora, l.Inicio, l.Fim),
			EleitoresElegiveis: l.EleitoresElegiveis,
			MostrarResultados:  l.MostrarResultados,
			CargoID:            l.CargoID,
			CargoTitulo:        l.CargoTitulo,
			CandidatoID:        l.CandidatoID,
			CandidatoNome:      l.CandidatoNome,
			Votos:              l.Votos,
			TotalVotosCargo:    total,
			TotalElegiveis:     l.TotalElegiveis,
			Percentual:         percentual(l.Votos, total),
			Lider:              lider,
			Empate:             lider && lideres > 1,
		}
	}
	return out
}

func percentual(votos, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votos) / float64(total) * 100)
}
