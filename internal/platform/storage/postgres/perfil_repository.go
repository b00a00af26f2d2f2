package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

type PerfilRepository struct {
	db *gorm.DB
}

func NewPerfilRepository(db *gorm.DB) *PerfilRepository {
	return &PerfilRepository{db: db}
}

func (r *PerfilRepository) Create(ctx context.Context, p domain.Perfil) error {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return fmt.Errorf("gorm perfil: inserir: %w", traduzir(err))
	}
	return nil
}

func (r *PerfilRepository) FindByID(ctx context.Context, id domain.PerfilID) (domain.Perfil, error) {
	var p domain.Perfil
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return domain.Perfil{}, fmt.Errorf("gorm perfil: buscar id: %w", traduzir(err))
	}
	return p, nil
}

func (r *PerfilRepository) FindByEmail(ctx context.Context, email string) (domain.Perfil, error) {
	var p domain.Perfil
	if err := r.db.WithContext(ctx).First(&p, "email = ?", email).Error; err != nil {
		return domain.Perfil{}, fmt.Errorf("gorm perfil: buscar email: %w", traduzir(err))
	}
	return p, nil
}

func (r *PerfilRepository) ExisteDuplicado(ctx context.Context, email, matricula string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Perfil{}).
		Where("email = ? OR matricula = ?", email, matricula).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("gorm perfil: checar duplicidade: %w", err)
	}
	return total > 0, nil
}

func (r *PerfilRepository) ExisteDuplicadoDeOutro(ctx context.Context, id domain.PerfilID, email, matricula string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Perfil{}).
		Where("id <> ?", id).
		Where("email = ? OR matricula = ?", email, matricula).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("gorm perfil: checar duplicidade: %w", err)
	}
	return total > 0, nil
}

func (r *PerfilRepository) ListPorStatus(ctx context.Context, status domain.StatusCadastro) ([]domain.Perfil, error) {
	var perfis []domain.Perfil
	if err := r.db.WithContext(ctx).
		Where("status_cadastro = ?", status).
		Order("criado_em ASC").
		Find(&perfis).Error; err != nil {
		return nil, fmt.Errorf("gorm perfil: listar por status: %w", err)
	}
	return perfis, nil
}

func (r *PerfilRepository) AtualizarCadastro(ctx context.Context, id domain.PerfilID, status domain.StatusCadastro, observacoes string) error {
	return r.atualizar(ctx, id, map[string]any{
		"status_cadastro":   status,
		"observacoes_admin": observacoes,
	})
}

func (r *PerfilRepository) AtualizarPapel(ctx context.Context, id domain.PerfilID, papel domain.Papel) error {
	return r.atualizar(ctx, id, map[string]any{"papel": papel})
}

// AtualizarDados grava apenas os campos editáveis pelo dono do perfil.
func (r *PerfilRepository) AtualizarDados(ctx context.Context, p domain.Perfil) error {
	return r.atualizar(ctx, p.ID, map[string]any{
		"nome_completo": p.NomeCompleto,
		"email":         p.Email,
		"matricula":     p.Matricula,
		"curso":         p.Curso,
		"ano":           p.Ano,
		"genero":        p.Genero,
	})
}

func (r *PerfilRepository) atualizar(ctx context.Context, id domain.PerfilID, campos map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Perfil{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return fmt.Errorf("gorm perfil: atualizar: %w", traduzir(res.Error))
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.PerfilRepository = (*PerfilRepository)(nil)
