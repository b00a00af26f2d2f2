package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
	"github.com/marcelojr/eleicao-estudantil/internal/platform/ids"
)

func TestAcaoRepository_Revisar_QuandoJaRevisada_DeveRetornarNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAcaoRepository(db)
	ctx := context.Background()
	gen := ids.NewGenerator()

	// Arrange
	acao := domain.AcaoPendente{
		ID:            domain.AcaoID(gen.New()),
		Tipo:          domain.AcaoPublicarResultados,
		Dados:         domain.JSONTexto(`{"eleicao_id":"e1"}`),
		Status:        domain.AcaoPendenteStatus,
		SolicitadoPor: "staff-1",
		SolicitadoEm:  baseTime,
	}
	require.NoError(t, repo.Create(ctx, acao))

	// Act
	errPrimeira := repo.Revisar(ctx, acao.ID, domain.AcaoAprovada, "admin-1", "ok", baseTime.Add(time.Minute))
	errSegunda := repo.Revisar(ctx, acao.ID, domain.AcaoRejeitada, "admin-2", "", baseTime.Add(2*time.Minute))

	// Assert
	require.NoError(t, errPrimeira)
	assert.ErrorIs(t, errSegunda, domain.ErrNotFound)

	gravada, err := repo.FindByID(ctx, acao.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AcaoAprovada, gravada.Status)
	assert.Equal(t, domain.PerfilID("admin-1"), gravada.RevisadoPor)
	assert.JSONEq(t, `{"eleicao_id":"e1"}`, string(gravada.Dados))
	require.NotNil(t, gravada.RevisadoEm)

	pendentes, err := repo.ListPendentes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pendentes)
}

func TestAuditoriaRepository_Registrar_DeveGuardarDetalhes(t *testing.T) {
	db := setupPostgres(t)
	repo := NewAuditoriaRepository(db)
	gen := ids.NewGenerator()

	reg := domain.RegistroAuditoria{
		ID:          domain.AuditoriaID(gen.New()),
		AtorID:      "admin-1",
		AtorPapel:   domain.PapelAdministrador,
		Acao:        "publicar_resultados",
		TipoRecurso: "eleicao",
		RecursoID:   "e1",
		Detalhes:    domain.JSONTexto(`{"motivo":"fim"}`),
	}

	require.NoError(t, repo.Registrar(context.Background(), reg))

	var gravado domain.RegistroAuditoria
	require.NoError(t, db.First(&gravado, "id = ?", reg.ID).Error)
	assert.Equal(t, "publicar_resultados", gravado.Acao)
	assert.JSONEq(t, `{"motivo":"fim"}`, string(gravado.Detalhes))
}
