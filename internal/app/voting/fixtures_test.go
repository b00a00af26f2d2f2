package voting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/clock"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/migrations"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/storage/postgres"
)

var baseTime = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

// ambiente monta o serviço sobre um SQLite em memória com as mesmas migrações de produção.
type ambiente struct {
	t       *testing.T
	db      *gorm.DB
	clock   *clock.Manual
	fila    *filaMemoria
	gen     *ids.Generator
	service *Service
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ids.NewULID())
	db, err := postgres.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	a := &ambiente{
		t:     t,
		db:    db,
		clock: clock.NewManual(baseTime),
		fila:  &filaMemoria{},
		gen:   ids.NewGenerator(),
	}
	a.service = NewService(Dependencias{
		Perfis:    postgres.NewPerfilRepository(db),
		Eleicoes:  postgres.NewEleicaoRepository(db),
		Sessoes:   postgres.NewSessaoRepository(db),
		Urna:      postgres.NewUrna(db),
		Apuracao:  postgres.NewApuracaoRepository(db),
		Fila:      a.fila,
		Clock:     a.clock,
		IDs:       a.gen,
		SessaoTTL: 30 * time.Minute,
	})
	return a
}

func (a *ambiente) perfil(papel domain.Papel, status domain.StatusCadastro, curso string) domain.PerfilID {
	a.t.Helper()
	id := domain.PerfilID(a.gen.New())
	require.NoError(a.t, a.db.Create(&domain.Perfil{
		ID:             id,
		Email:          string(id) + "@universidade.edu",
		SenhaHash:      "hash",
		NomeCompleto:   "Estudante " + string(id),
		Matricula:      string(id),
		Curso:          curso,
		Papel:          papel,
		StatusCadastro: status,
	}).Error)
	return id
}

func (a *ambiente) eleitor(curso string) domain.PerfilID {
	return a.perfil(domain.PapelEleitor, domain.CadastroAprovado, curso)
}

// eleicao cria uma eleição com um cargo por entrada em cargos; cada entrada lista os nomes dos candidatos.
func (a *ambiente) eleicao(elegiveis string, inicio, fim time.Time, cargos ...[]string) domain.Eleicao {
	a.t.Helper()
	e := domain.Eleicao{
		ID:                 domain.EleicaoID(a.gen.New()),
		Titulo:             "Conselho Estudantil",
		Inicio:             inicio,
		Fim:                fim,
		Status:             domain.StatusNoInstante(a.clock.Agora(), inicio, fim),
		EleitoresElegiveis: elegiveis,
	}
	require.NoError(a.t, a.db.Omit("Cargos").Create(&e).Error)

	for i, nomes := range cargos {
		cargo := domain.Cargo{
			ID:            domain.CargoID(a.gen.New()),
			EleicaoID:     e.ID,
			Titulo:        fmt.Sprintf("Cargo %d", i+1),
			MaxCandidatos: len(nomes),
			CriadoEm:      baseTime.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(a.t, a.db.Omit("Candidatos").Create(&cargo).Error)

		for _, nome := range nomes {
			cand := domain.Candidato{
				ID:           domain.CandidatoID(a.gen.New()),
				EleicaoID:    e.ID,
				CargoID:      cargo.ID,
				NomeCompleto: nome,
			}
			require.NoError(a.t, a.db.Create(&cand).Error)
			cargo.Candidatos = append(cargo.Candidatos, cand)
		}
		e.Cargos = append(e.Cargos, cargo)
	}
	return e
}

// eleicaoAtiva abre a janela uma hora antes do relógio e fecha duas horas depois.
func (a *ambiente) eleicaoAtiva(elegiveis string, cargos ...[]string) domain.Eleicao {
	return a.eleicao(elegiveis, baseTime.Add(-time.Hour), baseTime.Add(2*time.Hour), cargos...)
}

func (a *ambiente) votar(token string, e domain.Eleicao, cargo domain.Cargo, cand domain.Candidato) error {
	return a.service.RegistrarVoto(context.Background(), domain.Cedula{
		Token:       token,
		EleicaoID:   e.ID,
		CargoID:     cargo.ID,
		CandidatoID: cand.ID,
	})
}

func (a *ambiente) contarVotos(where string, args ...any) int64 {
	a.t.Helper()
	var total int64
	require.NoError(a.t, a.db.Model(&domain.Voto{}).Where(where, args...).Count(&total).Error)
	return total
}

func (a *ambiente) sessao(id domain.SessaoID) domain.SessaoVotacao {
	a.t.Helper()
	var s domain.SessaoVotacao
	require.NoError(a.t, a.db.First(&s, "id = ?", id).Error)
	return s
}

type filaMemoria struct {
	mu      sync.Mutex
	eventos []domain.EventoVoto
	falha   error
}

func (f *filaMemoria) PublicarVoto(_ context.Context, evento domain.EventoVoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.falha != nil {
		return f.falha
	}
	f.eventos = append(f.eventos, evento)
	return nil
}

func (f *filaMemoria) ConsumirVotos(ctx context.Context, handler func(context.Context, domain.EventoVoto) error) error {
	f.mu.Lock()
	eventos := append([]domain.EventoVoto(nil), f.eventos...)
	f.eventos = nil
	f.mu.Unlock()

	for _, ev := range eventos {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (f *filaMemoria) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.eventos)
}

type contadorMemoria struct {
	mu      sync.Mutex
	valores map[string]int64
}

func (c *contadorMemoria) Incrementar(_ context.Context, chave string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valores == nil {
		c.valores = make(map[string]int64)
	}
	c.valores[chave] += delta
	return c.valores[chave], nil
}

func (c *contadorMemoria) Obter(_ context.Context, chave string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valores[chave], nil
}

func (c *contadorMemoria) ObterTodos(_ context.Context, chaves []string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(chaves))
	for _, ch := range chaves {
		out[ch] = c.valores[ch]
	}
	return out, nil
}

type apuracaoFalha struct{}

func (apuracaoFalha) Apurar(context.Context) ([]domain.LinhaApuracao, error) {
	return nil, errors.New("conexao recusada")
}

func (apuracaoFalha) Participacao(context.Context, domain.EleicaoID) (domain.Participacao, error) {
	return domain.Participacao{}, errors.New("conexao recusada")
}

type antifraudeBloqueio struct{}

func (antifraudeBloqueio) Validar(context.Context, string) error {
	return domain.ErrLimiteExcedido
}
