package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// A contagem de eleitores elegíveis acompanha AceitaCurso: curso vazio ou "All Courses" libera todos.
const subconsultaElegiveis = `(
		SELECT COUNT(*) FROM perfis p
		WHERE p.papel = @papel
		  AND p.status_cadastro = @status
		  AND (
			TRIM(e.eleitores_elegiveis) = ''
			OR LOWER(TRIM(e.eleitores_elegiveis)) = LOWER(@todos)
			OR LOWER(TRIM(p.curso)) = LOWER(TRIM(e.eleitores_elegiveis))
		  )
	)`

const consultaApuracao = `
SELECT
	e.id                  AS eleicao_id,
	e.titulo              AS eleicao_titulo,
	e.inicio              AS inicio,
	e.fim                 AS fim,
	e.eleitores_elegiveis AS eleitores_elegiveis,
	e.mostrar_resultados  AS mostrar_resultados,
	c.id                  AS cargo_id,
	c.titulo              AS cargo_titulo,
	c.criado_em           AS cargo_criado_em,
	k.id                  AS candidato_id,
	k.nome_completo       AS candidato_nome,
	COUNT(v.id)           AS votos,
	` + subconsultaElegiveis + ` AS total_elegiveis
FROM eleicoes e
JOIN cargos c ON c.eleicao_id = e.id
JOIN candidatos k ON k.cargo_id = c.id
LEFT JOIN votos v ON v.candidato_id = k.id AND v.cargo_id = c.id
GROUP BY e.id, e.titulo, e.inicio, e.fim, e.eleitores_elegiveis, e.mostrar_resultados,
	c.id, c.titulo, c.criado_em, k.id, k.nome_completo
ORDER BY e.inicio DESC, c.criado_em ASC, c.id ASC, votos DESC, k.nome_completo ASC`

const consultaParticipacao = `
SELECT
	e.id AS eleicao_id,
	(SELECT COUNT(*) FROM votos v WHERE v.eleicao_id = e.id) AS total_votos,
	(SELECT COUNT(*) FROM sessoes_votacao s WHERE s.eleicao_id = e.id AND s.votou = @votou) AS votantes,
	` + subconsultaElegiveis + ` AS total_elegiveis
FROM eleicoes e
WHERE e.id = @eleicao`

// ApuracaoRepository lê a apuração completa em uma única consulta.
type ApuracaoRepository struct {
	db *gorm.DB
}

func NewApuracaoRepository(db *gorm.DB) *ApuracaoRepository {
	return &ApuracaoRepository{db: db}
}

func (r *ApuracaoRepository) Apurar(ctx context.Context) ([]domain.LinhaApuracao, error) {
	var linhas []domain.LinhaApuracao
	if err := r.db.WithContext(ctx).Raw(consultaApuracao, parametrosElegiveis()).
		Scan(&linhas).Error; err != nil {
		return nil, fmt.Errorf("gorm apuracao: consultar: %w", err)
	}
	return linhas, nil
}

func (r *ApuracaoRepository) Participacao(ctx context.Context, eleicaoID domain.EleicaoID) (domain.Participacao, error) {
	params := parametrosElegiveis()
	params["eleicao"] = eleicaoID
	params["votou"] = true

	var p domain.Participacao
	res := r.db.WithContext(ctx).Raw(consultaParticipacao, params).Scan(&p)
	if res.Error != nil {
		return domain.Participacao{}, fmt.Errorf("gorm apuracao: participacao: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Participacao{}, domain.ErrNotFound
	}
	return p, nil
}

func parametrosElegiveis() map[string]any {
	return map[string]any{
		"papel":  domain.PapelEleitor,
		"status": domain.CadastroAprovado,
		"todos":  domain.TodosOsCursos,
	}
}

var _ domain.ApuracaoRepository = (*ApuracaoRepository)(nil)
