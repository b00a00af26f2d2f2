package domain

// Ator identifica quem executa uma operação administrativa; vem das claims do token de acesso.
type Ator struct {
	ID    PerfilID
	Papel Papel
}

func (a Ator) Privilegiado() bool {
	return a.Papel.Privilegiado()
}

func (a Ator) Administrador() bool {
	return a.Papel == PapelAdministrador
}
