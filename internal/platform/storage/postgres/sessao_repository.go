package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// SessaoRepository grava as sessões de votação emitidas para cada par (eleitor, eleição).
type SessaoRepository struct {
	db *gorm.DB
}

func NewSessaoRepository(db *gorm.DB) *SessaoRepository {
	return &SessaoRepository{db: db}
}

func (r *SessaoRepository) FindByEleitor(ctx context.Context, eleitorID domain.PerfilID, eleicaoID domain.EleicaoID) (domain.SessaoVotacao, error) {
	var s domain.SessaoVotacao
	if err := r.db.WithContext(ctx).
		First(&s, "eleitor_id = ? AND eleicao_id = ?", eleitorID, eleicaoID).Error; err != nil {
		return domain.SessaoVotacao{}, fmt.Errorf("gorm sessao: buscar por eleitor: %w", traduzir(err))
	}
	return s, nil
}

// CriarSeAusente delega ao índice único (eleitor_id, eleicao_id) a decisão entre requisições concorrentes.
func (r *SessaoRepository) CriarSeAusente(ctx context.Context, s domain.SessaoVotacao) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "eleitor_id"}, {Name: "eleicao_id"}},
			DoNothing: true,
		}).
		Create(&s)
	if res.Error != nil {
		return false, fmt.Errorf("gorm sessao: inserir: %w", traduzir(res.Error))
	}
	return res.RowsAffected == 1, nil
}

// Rotacionar troca o token apenas se ele ainda for o que o chamador leu.
func (r *SessaoRepository) Rotacionar(ctx context.Context, id domain.SessaoID, tokenAnterior, novoToken string, expiraEm time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.SessaoVotacao{}).
		Where("id = ? AND token = ?", id, tokenAnterior).
		Updates(map[string]any{
			"token":     novoToken,
			"expira_em": expiraEm,
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm sessao: rotacionar token: %w", traduzir(res.Error))
	}
	return res.RowsAffected == 1, nil
}

func (r *SessaoRepository) ContarVotos(ctx context.Context, id domain.SessaoID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Voto{}).
		Where("sessao_id = ?", id).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm sessao: contar votos: %w", err)
	}
	return total, nil
}

var _ domain.SessaoRepository = (*SessaoRepository)(nil)
