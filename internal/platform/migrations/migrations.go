// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/eleicao-estudantil/internal/domain"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202509010001_perfis",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Perfil{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("perfis")
			},
		},
		{
			ID: "202509010002_catalogo",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Eleicao{}, &domain.Cargo{}, &domain.Candidato{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("candidatos", "cargos", "eleicoes")
			},
		},
		{
			// Os índices únicos de sessoes_votacao e votos sustentam as garantias de voto único.
			ID: "202509010003_votacao",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.SessaoVotacao{}, &domain.Voto{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votos", "sessoes_votacao")
			},
		},
		{
			ID: "202509010004_acoes_auditoria",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.AcaoPendente{}, &domain.RegistroAuditoria{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("auditoria", "acoes_pendentes")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}
