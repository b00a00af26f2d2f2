package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

type CandidatoRepository struct {
	db *gorm.DB
}

func NewCandidatoRepository(db *gorm.DB) *CandidatoRepository {
	return &CandidatoRepository{db: db}
}

func (r *CandidatoRepository) FindCargo(ctx context.Context, id domain.CargoID) (domain.Cargo, error) {
	var c domain.Cargo
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return domain.Cargo{}, fmt.Errorf("gorm candidato: buscar cargo: %w", traduzir(err))
	}
	return c, nil
}

func (r *CandidatoRepository) ContarPorCargo(ctx context.Context, cargoID domain.CargoID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Candidato{}).
		Where("cargo_id = ?", cargoID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm candidato: contar por cargo: %w", err)
	}
	return total, nil
}

func (r *CandidatoRepository) Create(ctx context.Context, c domain.Candidato) error {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return fmt.Errorf("gorm candidato: inserir: %w", traduzir(err))
	}
	return nil
}

func (r *CandidatoRepository) FindByID(ctx context.Context, id domain.CandidatoID) (domain.Candidato, error) {
	var c domain.Candidato
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return domain.Candidato{}, fmt.Errorf("gorm candidato: buscar id: %w", traduzir(err))
	}
	return c, nil
}

func (r *CandidatoRepository) Delete(ctx context.Context, id domain.CandidatoID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Candidato{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("gorm candidato: remover: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.CandidatoRepository = (*CandidatoRepository)(nil)
