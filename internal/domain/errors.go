package domain

import "errors"

var (
	// ErrNotFound é devolvido pelos repositórios quando o registro não existe.
	ErrNotFound = errors.New("registro nao encontrado")
	// ErrDuplicado sinaliza violação de restrição de unicidade.
	ErrDuplicado = errors.New("registro duplicado")
	// ErrLimiteExcedido é devolvido pelas implementações de Antifraude.
	ErrLimiteExcedido = errors.New("limite de requisicoes atingido")
	// ErrSemPermissao indica que o papel do ator não autoriza a operação.
	ErrSemPermissao = errors.New("operacao nao permitida para o papel")
)
