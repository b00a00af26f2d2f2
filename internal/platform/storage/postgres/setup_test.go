package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/migrations"
)

var baseTime = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

// setupPostgres sobe um SQLite em memória isolado por teste com as migrações de produção.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", ids.NewULID()))
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func novoPerfil(gen *ids.Generator, curso string, papel domain.Papel, status domain.StatusCadastro) domain.Perfil {
	id := gen.New()
	return domain.Perfil{
		ID:             domain.PerfilID(id),
		Email:          id + "@universidade.edu",
		SenhaHash:      "hash",
		NomeCompleto:   "Estudante " + id,
		Matricula:      id,
		Curso:          curso,
		Papel:          papel,
		StatusCadastro: status,
	}
}

// criarEleicao grava uma eleição com os cargos informados, cada um com os candidatos listados.
func criarEleicao(t *testing.T, db *gorm.DB, gen *ids.Generator, inicio time.Time, elegiveis string, cargos ...[]string) domain.Eleicao {
	t.Helper()

	e := domain.Eleicao{
		ID:                 domain.EleicaoID(gen.New()),
		Titulo:             "Eleicao",
		Inicio:             inicio,
		Fim:                inicio.Add(24 * time.Hour),
		EleitoresElegiveis: elegiveis,
	}
	require.NoError(t, db.Create(&e).Error)

	for i, nomes := range cargos {
		cargo := domain.Cargo{
			ID:            domain.CargoID(gen.New()),
			EleicaoID:     e.ID,
			Titulo:        fmt.Sprintf("Cargo %d", i+1),
			MaxCandidatos: len(nomes),
			CriadoEm:      baseTime.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Omit("Candidatos").Create(&cargo).Error)

		for _, nome := range nomes {
			cand := domain.Candidato{
				ID:           domain.CandidatoID(gen.New()),
				EleicaoID:    e.ID,
				CargoID:      cargo.ID,
				NomeCompleto: nome,
			}
			require.NoError(t, db.Create(&cand).Error)
			cargo.Candidatos = append(cargo.Candidatos, cand)
		}
		e.Cargos = append(e.Cargos, cargo)
	}
	return e
}
