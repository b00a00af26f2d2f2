package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

// Urna abre uma transação por cédula. Toda leitura e escrita da cédula passa pelo mesmo tx.
type Urna struct {
	db *gorm.DB
}

func NewUrna(db *gorm.DB) *Urna {
	return &Urna{db: db}
}

func (u *Urna) Transacao(ctx context.Context, fn func(ctx context.Context, tx domain.UrnaTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &urnaTx{tx: tx})
	})
}

type urnaTx struct {
	tx *gorm.DB
}

func (u *urnaTx) SessaoPorToken(ctx context.Context, token string) (domain.SessaoVotacao, error) {
	var s domain.SessaoVotacao
	// FOR UPDATE serializa cédulas da mesma sessão; o SQLite ignora a cláusula.
	if err := u.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "token = ?", token).Error; err != nil {
		return domain.SessaoVotacao{}, fmt.Errorf("gorm urna: sessao por token: %w", traduzir(err))
	}
	return s, nil
}

func (u *urnaTx) Eleicao(ctx context.Context, id domain.EleicaoID) (domain.Eleicao, error) {
	var e domain.Eleicao
	if err := u.tx.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return domain.Eleicao{}, fmt.Errorf("gorm urna: eleicao: %w", traduzir(err))
	}
	return e, nil
}

func (u *urnaTx) Cargo(ctx context.Context, id domain.CargoID) (domain.Cargo, error) {
	var c domain.Cargo
	if err := u.tx.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return domain.Cargo{}, fmt.Errorf("gorm urna: cargo: %w", traduzir(err))
	}
	return c, nil
}

func (u *urnaTx) Candidato(ctx context.Context, id domain.CandidatoID) (domain.Candidato, error) {
	var c domain.Candidato
	if err := u.tx.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return domain.Candidato{}, fmt.Errorf("gorm urna: candidato: %w", traduzir(err))
	}
	return c, nil
}

func (u *urnaTx) VotoExiste(ctx context.Context, sessaoID domain.SessaoID, cargoID domain.CargoID) (bool, error) {
	var total int64
	if err := u.tx.WithContext(ctx).Model(&domain.Voto{}).
		Where("sessao_id = ? AND cargo_id = ?", sessaoID, cargoID).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("gorm urna: checar voto: %w", err)
	}
	return total > 0, nil
}

func (u *urnaTx) InserirVoto(ctx context.Context, v domain.Voto) error {
	if err := u.tx.WithContext(ctx).Create(&v).Error; err != nil {
		return fmt.Errorf("gorm urna: inserir voto: %w", traduzir(err))
	}
	return nil
}

func (u *urnaTx) ContarVotosSessao(ctx context.Context, sessaoID domain.SessaoID) (int64, error) {
	var total int64
	if err := u.tx.WithContext(ctx).Model(&domain.Voto{}).
		Where("sessao_id = ?", sessaoID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm urna: contar votos da sessao: %w", err)
	}
	return total, nil
}

func (u *urnaTx) ContarCargosVotaveis(ctx context.Context, eleicaoID domain.EleicaoID) (int64, error) {
	var total int64
	if err := u.tx.WithContext(ctx).Model(&domain.Cargo{}).
		Where("eleicao_id = ?", eleicaoID).
		Where("EXISTS (SELECT 1 FROM candidatos WHERE candidatos.cargo_id = cargos.id)").
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm urna: contar cargos: %w", err)
	}
	return total, nil
}

func (u *urnaTx) MarcarVotou(ctx context.Context, sessaoID domain.SessaoID) error {
	if err := u.tx.WithContext(ctx).Model(&domain.SessaoVotacao{}).
		Where("id = ?", sessaoID).
		Update("votou", true).Error; err != nil {
		return fmt.Errorf("gorm urna: marcar sessao: %w", err)
	}
	return nil
}

var (
	_ domain.Urna   = (*Urna)(nil)
	_ domain.UrnaTx = (*urnaTx)(nil)
)
