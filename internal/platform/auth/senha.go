// Pacote auth cuida das credenciais: hash de senha com bcrypt e tokens JWT de acesso.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const custoPadrao = 12

type Senhas struct {
	custo int
}

func NewSenhas(custo int) *Senhas {
	if custo < bcrypt.MinCost || custo > bcrypt.MaxCost {
		custo = custoPadrao
	}
	return &Senhas{custo: custo}
}

func (s *Senhas) Hash(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), s.custo)
	if err != nil {
		return "", fmt.Errorf("auth: gerar hash: %w", err)
	}
	return string(hash), nil
}

// Conferir devolve false tanto para senha errada quanto para hash malformado.
func (s *Senhas) Conferir(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
