package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

type AuditoriaRepository struct {
	db *gorm.DB
}

func NewAuditoriaRepository(db *gorm.DB) *AuditoriaRepository {
	return &AuditoriaRepository{db: db}
}

func (r *AuditoriaRepository) Registrar(ctx context.Context, reg domain.RegistroAuditoria) error {
	if err := r.db.WithContext(ctx).Create(&reg).Error; err != nil {
		return fmt.Errorf("gorm auditoria: inserir: %w", err)
	}
	return nil
}

var _ domain.AuditoriaRepository = (*AuditoriaRepository)(nil)
