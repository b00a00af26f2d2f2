package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// EleicaoRepository persiste eleições junto com seus cargos.
type EleicaoRepository struct {
	db *gorm.DB
}

func NewEleicaoRepository(db *gorm.DB) *EleicaoRepository {
	return &EleicaoRepository{db: db}
}

// CreateComCargos grava a eleição e os cargos na mesma transação.
func (r *EleicaoRepository) CreateComCargos(ctx context.Context, e domain.Eleicao, cargos []domain.Cargo) error {
	e.Cargos = nil
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&e).Error; err != nil {
			return fmt.Errorf("gorm eleicao: inserir: %w", traduzir(err))
		}
		if len(cargos) == 0 {
			return nil
		}
		for i := range cargos {
			cargos[i].EleicaoID = e.ID
		}
		if err := tx.Omit("Candidatos").Create(&cargos).Error; err != nil {
			return fmt.Errorf("gorm eleicao: inserir cargos: %w", traduzir(err))
		}
		return nil
	})
}

func (r *EleicaoRepository) FindByID(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	var e domain.Eleicao
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return domain.Eleicao{}, fmt.Errorf("gorm eleicao: buscar id: %w", traduzir(err))
	}
	return e, nil
}

// Detalhar carrega cargos e candidatos na ordem de exibição da cédula.
func (r *EleicaoRepository) Detalhar(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	var e domain.Eleicao
	if err := r.db.WithContext(ctx).
		Preload("Cargos", func(db *gorm.DB) *gorm.DB {
			return db.Order("criado_em ASC, id ASC")
		}).
		Preload("Cargos.Candidatos", func(db *gorm.DB) *gorm.DB {
			return db.Order("nome_completo ASC")
		}).
		First(&e, "id = ?", id).Error; err != nil {
		return domain.Eleicao{}, fmt.Errorf("gorm eleicao: detalhar: %w", traduzir(err))
	}
	return e, nil
}

func (r *EleicaoRepository) List(ctx context.Context) ([]domain.Eleicao, error) {
	var eleicoes []domain.Eleicao
	if err := r.db.WithContext(ctx).Order("inicio DESC").Find(&eleicoes).Error; err != nil {
		return nil, fmt.Errorf("gorm eleicao: listar: %w", err)
	}
	return eleicoes, nil
}

func (r *EleicaoRepository) AtualizarStatus(ctx context.Context, id domain.EleicaoID, status domain.StatusEleicao) error {
	// O filtro pelo status atual torna a escrita idempotente entre workers.
	res := r.db.WithContext(ctx).Model(&domain.Eleicao{}).
		Where("id = ? AND status <> ?", id, status).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm eleicao: atualizar status: %w", res.Error)
	}
	return nil
}

func (r *EleicaoRepository) PublicarResultados(ctx context.Context, id domain.EleicaoID) error {
	res := r.db.WithContext(ctx).Model(&domain.Eleicao{}).
		Where("id = ?", id).
		Update("mostrar_resultados", true)
	if res.Error != nil {
		return fmt.Errorf("gorm eleicao: publicar resultados: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.EleicaoRepository = (*EleicaoRepository)(nil)
