package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// AcaoRepository guarda os pedidos da equipe que aguardam revisão de um administrador.
type AcaoRepository struct {
	db *gorm.DB
}

func NewAcaoRepository(db *gorm.DB) *AcaoRepository {
	return &AcaoRepository{db: db}
}

func (r *AcaoRepository) Create(ctx context.Context, a domain.AcaoPendente) error {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return fmt.Errorf("gorm acao: inserir: %w", traduzir(err))
	}
	return nil
}

func (r *AcaoRepository) FindByID(ctx context.Context, id domain.AcaoID) (domain.AcaoPendente, error) {
	var a domain.AcaoPendente
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return domain.AcaoPendente{}, fmt.Errorf("gorm acao: buscar id: %w", traduzir(err))
	}
	return a, nil
}

func (r *AcaoRepository) ListPendentes(ctx context.Context) ([]domain.AcaoPendente, error) {
	var acoes []domain.AcaoPendente
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.AcaoPendenteStatus).
		Order("solicitado_em ASC").
		Find(&acoes).Error; err != nil {
		return nil, fmt.Errorf("gorm acao: listar pendentes: %w", err)
	}
	return acoes, nil
}

// Revisar só altera ações ainda pendentes; uma segunda revisão devolve ErrNotFound.
func (r *AcaoRepository) Revisar(ctx context.Context, id domain.AcaoID, status domain.StatusAcao, revisor domain.PerfilID, observacoes string, quando time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.AcaoPendente{}).
		Where("id = ? AND status = ?", id, domain.AcaoPendenteStatus).
		Updates(map[string]any{
			"status":            status,
			"revisado_por":      revisor,
			"observacoes_admin": observacoes,
			"revisado_em":       quando,
		})
	if res.Error != nil {
		return fmt.Errorf("gorm acao: revisar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.AcaoRepository = (*AcaoRepository)(nil)
