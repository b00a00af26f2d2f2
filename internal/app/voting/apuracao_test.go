package voting

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func indexarPorCandidato(resultados []domain.Resultado) map[domain.CandidatoID]domain.Resultado {
	out := make(map[domain.CandidatoID]domain.Resultado, len(resultados))
	for _, r := range resultados {
		out[r.CandidatoID] = r
	}
	return out
}

func TestResultados_DeveCalcularPercentuaisEElegiveis(t *testing.T) {
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva("CS", []string{"C1", "C2"})
	cargo := e.Cargos[0]
	c1, c2 := cargo.Candidatos[0], cargo.Candidatos[1]
	ctx := context.Background()

	eleitores := make([]domain.PerfilID, 10)
	for i := range eleitores {
		eleitores[i] = amb.eleitor("CS")
	}
	// Fora do predicado: outro curso, cadastro pendente e papel da equipe.
	amb.eleitor("IT")
	amb.perfil(domain.PapelEleitor, domain.CadastroPendente, "CS")
	amb.perfil(domain.PapelStaff, domain.CadastroAprovado, "CS")

	escolhas := []domain.Candidato{c1, c1, c1, c2}
	for i, cand := range escolhas {
		s, err := amb.service.CriarSessao(ctx, eleitores[i], e.ID)
		require.NoError(t, err)
		require.NoError(t, amb.votar(s.Token, e, cargo, cand))
	}

	// Act
	resultados, err := amb.service.Resultados(ctx, true)

	// Assert
	require.NoError(t, err)
	require.Len(t, resultados, 2)
	porCandidato := indexarPorCandidato(resultados)

	assert.Equal(t, int64(3), porCandidato[c1.ID].Votos)
	assert.Equal(t, float64(75), porCandidato[c1.ID].Percentual)
	assert.Equal(t, int64(1), porCandidato[c2.ID].Votos)
	assert.Equal(t, float64(25), porCandidato[c2.ID].Percentual)
	for _, r := range resultados {
		assert.Equal(t, int64(4), r.TotalVotosCargo)
		assert.Equal(t, int64(10), r.TotalElegiveis)
		assert.Equal(t, domain.EleicaoAtiva, r.EleicaoStatus)
	}
	assert.True(t, porCandidato[c1.ID].Lider)
	assert.False(t, porCandidato[c2.ID].Lider)
	assert.False(t, porCandidato[c1.ID].Empate)
	// ordenado por votos dentro do cargo
	assert.Equal(t, c1.ID, resultados[0].CandidatoID)
}

func TestResultados_SomaDosVotosDeveIgualarTotalDoCargo(t *testing.T) {
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva(domain.TodosOsCursos, []string{"A", "B", "C"}, []string{"D", "E"})
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 17; i++ {
		s, err := amb.service.CriarSessao(ctx, amb.eleitor("Qualquer"), e.ID)
		require.NoError(t, err)
		for _, cargo := range e.Cargos {
			// parte dos eleitores deixa a cédula incompleta
			if rnd.Intn(4) == 0 {
				continue
			}
			cand := cargo.Candidatos[rnd.Intn(len(cargo.Candidatos))]
			require.NoError(t, amb.votar(s.Token, e, cargo, cand))
		}
	}

	resultados, err := amb.service.Resultados(ctx, true)
	require.NoError(t, err)
	require.Len(t, resultados, 5)

	somas := map[domain.CargoID]int64{}
	totais := map[domain.CargoID]int64{}
	for _, r := range resultados {
		somas[r.CargoID] += r.Votos
		totais[r.CargoID] = r.TotalVotosCargo

		esperado := 0.0
		if r.TotalVotosCargo > 0 {
			esperado = math.Round(float64(r.Votos) / float64(r.TotalVotosCargo) * 100)
		}
		assert.Equal(t, esperado, r.Percentual)
		assert.Equal(t, int64(17), r.TotalElegiveis)
	}
	for cargo, soma := range somas {
		assert.Equal(t, totais[cargo], soma)
		assert.Equal(t, amb.contarVotos("cargo_id = ?", cargo), soma)
	}
}

func TestResultados_VisibilidadeParaEleitor(t *testing.T) {
	amb := novoAmbiente(t)
	passado := baseTime.Add(-48 * time.Hour)

	ativa := amb.eleicaoAtiva("CS", []string{"A"})
	encerradaOculta := amb.eleicao("CS", passado, passado.Add(time.Hour), []string{"B"})
	encerradaPublica := amb.eleicao("CS", passado, passado.Add(time.Hour), []string{"C"})
	agendadaPublica := amb.eleicao("CS", baseTime.Add(time.Hour), baseTime.Add(2*time.Hour), []string{"D"})
	for _, id := range []domain.EleicaoID{encerradaPublica.ID, agendadaPublica.ID} {
		require.NoError(t, amb.db.Model(&domain.Eleicao{}).Where("id = ?", id).Update("mostrar_resultados", true).Error)
	}
	// status gravado desatualizado não deve influenciar a leitura
	require.NoError(t, amb.db.Model(&domain.Eleicao{}).Where("id = ?", encerradaPublica.ID).Update("status", domain.EleicaoAtiva).Error)

	eleitor, err := amb.service.Resultados(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, eleitor, 1)
	assert.Equal(t, encerradaPublica.ID, eleitor[0].EleicaoID)
	assert.Equal(t, domain.EleicaoEncerrada, eleitor[0].EleicaoStatus)

	privilegiado, err := amb.service.Resultados(context.Background(), true)
	require.NoError(t, err)
	vistas := map[domain.EleicaoID]bool{}
	for _, r := range privilegiado {
		vistas[r.EleicaoID] = true
	}
	assert.Equal(t, map[domain.EleicaoID]bool{
		ativa.ID:            true,
		encerradaOculta.ID:  true,
		encerradaPublica.ID: true,
		agendadaPublica.ID:  true,
	}, vistas)
}

func TestResultados_QuandoEmpateOuSemVotos_DeveMarcarLideres(t *testing.T) {
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva("CS", []string{"Ana", "Bia", "Caio"}, []string{"Davi", "Eva"})
	ctx := context.Background()
	empate := e.Cargos[0]

	for _, cand := range empate.Candidatos[:2] {
		s, err := amb.service.CriarSessao(ctx, amb.eleitor("CS"), e.ID)
		require.NoError(t, err)
		require.NoError(t, amb.votar(s.Token, e, empate, cand))
	}

	resultados, err := amb.service.Resultados(ctx, true)
	require.NoError(t, err)
	porCandidato := indexarPorCandidato(resultados)

	for _, cand := range empate.Candidatos[:2] {
		assert.True(t, porCandidato[cand.ID].Lider)
		assert.True(t, porCandidato[cand.ID].Empate)
		assert.Equal(t, float64(50), porCandidato[cand.ID].Percentual)
	}
	assert.False(t, porCandidato[empate.Candidatos[2].ID].Lider)
	assert.False(t, porCandidato[empate.Candidatos[2].ID].Empate)

	for _, cand := range e.Cargos[1].Candidatos {
		r := porCandidato[cand.ID]
		assert.False(t, r.Lider, "candidato sem votos nao lidera")
		assert.Zero(t, r.Percentual)
		assert.Zero(t, r.TotalVotosCargo)
	}
}

func TestResultados_QuandoLeituraFalha_DeveRetornarErroDeApuracao(t *testing.T) {
	amb := novoAmbiente(t)
	amb.service.apuracao = apuracaoFalha{}

	resultados, err := amb.service.Resultados(context.Background(), true)

	assert.Nil(t, resultados)
	assert.ErrorIs(t, err, ErrApuracao)
	assert.ErrorContains(t, err, "conexao recusada")
	assert.Equal(t, ClasseApuracao, Classificar(err))
}

func TestResultadosEleicao_DeveFiltrarPelaEleicao(t *testing.T) {
	amb := novoAmbiente(t)
	a := amb.eleicaoAtiva("CS", []string{"A1", "A2"})
	amb.eleicaoAtiva("CS", []string{"B1"})

	resultados, err := amb.service.ResultadosEleicao(context.Background(), a.ID, true)
	require.NoError(t, err)
	assert.Len(t, resultados, 2)
	for _, r := range resultados {
		assert.Equal(t, a.ID, r.EleicaoID)
	}

	ocultos, err := amb.service.ResultadosEleicao(context.Background(), a.ID, false)
	require.NoError(t, err)
	assert.Empty(t, ocultos)

	_, err = amb.service.ResultadosEleicao(context.Background(), "nao-existe", true)
	assert.ErrorIs(t, err, ErrEleicaoNaoEncontrada)
}

func TestParcial_QuandoContadorConfigurado_DeveLerContadores(t *testing.T) {
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva("CS", []string{"A", "B"})
	cargo := e.Cargos[0]
	contador := &contadorMemoria{}
	amb.service.contador = contador
	ctx := context.Background()

	_, _ = contador.Incrementar(ctx, CounterKeyTotalCargo(e.ID, cargo.ID), 5)
	_, _ = contador.Incrementar(ctx, CounterKeyCandidato(e.ID, cargo.Candidatos[0].ID), 3)
	_, _ = contador.Incrementar(ctx, CounterKeyCandidato(e.ID, cargo.Candidatos[1].ID), 2)

	parciais, err := amb.service.Parcial(ctx, e.ID)

	require.NoError(t, err)
	require.Len(t, parciais, 2)
	totais := map[domain.CandidatoID]int64{}
	for _, p := range parciais {
		assert.Equal(t, int64(5), p.TotalCargo)
		totais[p.CandidatoID] = p.Total
	}
	assert.Equal(t, int64(3), totais[cargo.Candidatos[0].ID])
	assert.Equal(t, int64(2), totais[cargo.Candidatos[1].ID])
}

func TestParcial_QuandoSemContador_DeveUsarBanco(t *testing.T) {
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva("CS", []string{"A", "B"})
	cargo := e.Cargos[0]
	s, err := amb.service.CriarSessao(context.Background(), amb.eleitor("CS"), e.ID)
	require.NoError(t, err)
	require.NoError(t, amb.votar(s.Token, e, cargo, cargo.Candidatos[1]))

	parciais, err := amb.service.Parcial(context.Background(), e.ID)

	require.NoError(t, err)
	require.Len(t, parciais, 2)
	assert.Equal(t, cargo.Candidatos[1].ID, parciais[0].CandidatoID)
	assert.Equal(t, int64(1), parciais[0].Total)
	assert.Equal(t, int64(1), parciais[0].TotalCargo)
}

func TestParcial_QuandoEleicaoNaoExiste_DeveRetornarNaoEncontrada(t *testing.T) {
	amb := novoAmbiente(t)

	_, err := amb.service.Parcial(context.Background(), "nao-existe")

	assert.ErrorIs(t, err, ErrEleicaoNaoEncontrada)
}

func TestParticipacao_DeveCalcularComparecimentoDosElegiveis(t *testing.T) {
	// Arrange
	amb := novoAmbiente(t)
	e := amb.eleicaoAtiva("CS", []string{"P1"}, []string{"V1"})
	ctx := context.Background()
	completo, parcial := amb.eleitor("CS"), amb.eleitor("CS")
	amb.eleitor("CS")
	amb.eleitor("Math")

	s, err := amb.service.CriarSessao(ctx, completo, e.ID)
	require.NoError(t, err)
	require.NoError(t, amb.votar(s.Token, e, e.Cargos[0], e.Cargos[0].Candidatos[0]))
	require.NoError(t, amb.votar(s.Token, e, e.Cargos[1], e.Cargos[1].Candidatos[0]))

	s, err = amb.service.CriarSessao(ctx, parcial, e.ID)
	require.NoError(t, err)
	require.NoError(t, amb.votar(s.Token, e, e.Cargos[0], e.Cargos[0].Candidatos[0]))

	// Act
	p, err := amb.service.Participacao(ctx, e.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, e.ID, p.EleicaoID)
	assert.Equal(t, int64(3), p.TotalVotos)
	assert.Equal(t, int64(1), p.Votantes, "cedula parcial nao conta como comparecimento")
	assert.Equal(t, int64(3), p.TotalElegiveis)
	assert.Equal(t, float64(33), p.Percentual)
}

func TestParticipacao_QuandoFalhaOuInexistente(t *testing.T) {
	amb := novoAmbiente(t)

	_, err := amb.service.Participacao(context.Background(), "nao-existe")
	assert.ErrorIs(t, err, ErrEleicaoNaoEncontrada)

	amb.service.apuracao = apuracaoFalha{}
	_, err = amb.service.Participacao(context.Background(), "qualquer")
	assert.ErrorIs(t, err, ErrApuracao)
}
