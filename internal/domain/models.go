package domain

import (
	"strings"
	"time"
)

type (
	PerfilID       string
	EleicaoID      string
	CargoID        string
	CandidatoID    string
	SessaoID       string
	VotoID         string
	AcaoID         string
	AuditoriaID    string
	Papel          string
	StatusCadastro string
	StatusEleicao  string
	TipoAcao       string
	StatusAcao     string
)

const (
	PapelEleitor       Papel = "Voter"
	PapelStaff         Papel = "Staff"
	PapelAdministrador Papel = "Administrator"
)

const (
	CadastroPendente  StatusCadastro = "Pending"
	CadastroAprovado  StatusCadastro = "Approved"
	CadastroRejeitado StatusCadastro = "Rejected"
)

const (
	EleicaoAgendada  StatusEleicao = "Upcoming"
	EleicaoAtiva     StatusEleicao = "Active"
	EleicaoEncerrada StatusEleicao = "Completed"
)

const (
	AcaoCriarEleicao       TipoAcao = "create_election"
	AcaoAdicionarCandidato TipoAcao = "add_candidate"
	AcaoPublicarResultados TipoAcao = "publish_results"
	AcaoRemoverCandidato   TipoAcao = "remove_candidate"
)

const (
	AcaoPendenteStatus StatusAcao = "Pending"
	AcaoAprovada       StatusAcao = "Approved"
	AcaoRejeitada      StatusAcao = "Rejected"
)

// TodosOsCursos libera a eleição para qualquer eleitor aprovado.
const TodosOsCursos = "All Courses"

type Perfil struct {
	ID               PerfilID       `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	Email            string         `gorm:"column:email;type:text;not null;uniqueIndex:idx_perfis_email" json:"email"`
	SenhaHash        string         `gorm:"column:senha_hash;type:text;not null" json:"-"`
	NomeCompleto     string         `gorm:"column:nome_completo;type:text;not null" json:"nome_completo"`
	Matricula        string         `gorm:"column:matricula;type:text;not null;uniqueIndex:idx_perfis_matricula" json:"matricula"`
	Curso            string         `gorm:"column:curso;type:text;index:idx_perfis_elegibilidade,priority:3" json:"curso"`
	Ano              string         `gorm:"column:ano;type:text" json:"ano"`
	Genero           string         `gorm:"column:genero;type:text" json:"genero"`
	URLDocumento     string         `gorm:"column:url_documento;type:text" json:"url_documento,omitempty"`
	Papel            Papel          `gorm:"column:papel;type:text;not null;default:Voter;index:idx_perfis_elegibilidade,priority:1" json:"papel"`
	StatusCadastro   StatusCadastro `gorm:"column:status_cadastro;type:text;not null;default:Pending;index:idx_perfis_elegibilidade,priority:2" json:"status_cadastro"`
	ObservacoesAdmin string         `gorm:"column:observacoes_admin;type:text" json:"observacoes_admin,omitempty"`
	CriadoEm         time.Time      `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm     time.Time      `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

// PodeVotar indica se o perfil atende aos requisitos de identidade para receber uma sessão.
func (p Perfil) PodeVotar() bool {
	return p.Papel == PapelEleitor && p.StatusCadastro == CadastroAprovado
}

// Privilegiado indica papéis que enxergam resultados a qualquer momento.
func (p Papel) Privilegiado() bool {
	return p == PapelStaff || p == PapelAdministrador
}

func (p Papel) Valido() bool {
	switch p {
	case PapelEleitor, PapelStaff, PapelAdministrador:
		return true
	}
	return false
}

type Eleicao struct {
	ID                 EleicaoID     `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	Titulo             string        `gorm:"column:titulo;type:text;not null" json:"titulo"`
	Descricao          string        `gorm:"column:descricao;type:text" json:"descricao"`
	URLCapa            string        `gorm:"column:url_capa;type:text" json:"url_capa,omitempty"`
	Inicio             time.Time     `gorm:"column:inicio;not null" json:"inicio"`
	Fim                time.Time     `gorm:"column:fim;not null" json:"fim"`
	Status             StatusEleicao `gorm:"column:status;type:text;not null;default:Upcoming" json:"status"`
	EleitoresElegiveis string        `gorm:"column:eleitores_elegiveis;type:text;not null;default:'All Courses'" json:"eleitores_elegiveis"`
	MostrarResultados  bool          `gorm:"column:mostrar_resultados;not null;default:false" json:"mostrar_resultados"`
	Cargos             []Cargo       `gorm:"foreignKey:EleicaoID;constraint:OnDelete:CASCADE" json:"cargos,omitempty"`
	CriadoEm           time.Time     `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
	AtualizadoEm       time.Time     `gorm:"column:atualizado_em;autoUpdateTime" json:"atualizado_em"`
}

// StatusNoInstante deriva o status da janela semiaberta [inicio, fim).
func StatusNoInstante(agora, inicio, fim time.Time) StatusEleicao {
	switch {
	case agora.Before(inicio):
		return EleicaoAgendada
	case agora.Before(fim):
		return EleicaoAtiva
	default:
		return EleicaoEncerrada
	}
}

func (e Eleicao) StatusEm(agora time.Time) StatusEleicao {
	return StatusNoInstante(agora, e.Inicio, e.Fim)
}

// AceitaCurso avalia o predicado de elegibilidade por curso.
func (e Eleicao) AceitaCurso(curso string) bool {
	alvo := normalizarCurso(e.EleitoresElegiveis)
	if alvo == "" || alvo == normalizarCurso(TodosOsCursos) {
		return true
	}
	return alvo == normalizarCurso(curso)
}

type Cargo struct {
	ID            CargoID     `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	EleicaoID     EleicaoID   `gorm:"column:eleicao_id;type:varchar(26);not null;index" json:"eleicao_id"`
	Titulo        string      `gorm:"column:titulo;type:text;not null" json:"titulo"`
	Descricao     string      `gorm:"column:descricao;type:text" json:"descricao"`
	MaxCandidatos int         `gorm:"column:max_candidatos;not null;default:1" json:"max_candidatos"`
	Candidatos    []Candidato `gorm:"foreignKey:CargoID;constraint:OnDelete:CASCADE" json:"candidatos,omitempty"`
	CriadoEm      time.Time   `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

type Candidato struct {
	ID                CandidatoID `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	EleicaoID         EleicaoID   `gorm:"column:eleicao_id;type:varchar(26);not null;index" json:"eleicao_id"`
	CargoID           CargoID     `gorm:"column:cargo_id;type:varchar(26);not null;index" json:"cargo_id"`
	NomeCompleto      string      `gorm:"column:nome_completo;type:text;not null" json:"nome_completo"`
	Bio               string      `gorm:"column:bio;type:text" json:"bio,omitempty"`
	Partido           string      `gorm:"column:partido;type:text" json:"partido,omitempty"`
	URLFoto           string      `gorm:"column:url_foto;type:text" json:"url_foto,omitempty"`
	EscolaFundamental string      `gorm:"column:escola_fundamental;type:text" json:"escola_fundamental,omitempty"`
	AnoFundamental    int         `gorm:"column:ano_fundamental" json:"ano_fundamental,omitempty"`
	EscolaMedio       string      `gorm:"column:escola_medio;type:text" json:"escola_medio,omitempty"`
	AnoMedio          int         `gorm:"column:ano_medio" json:"ano_medio,omitempty"`
	Proposta          string      `gorm:"column:proposta;type:text" json:"proposta,omitempty"`
	CriadoEm          time.Time   `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

// SessaoVotacao existe uma única vez por (eleitor, eleição); reemissões rotacionam o token na mesma linha.
type SessaoVotacao struct {
	ID        SessaoID  `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	EleicaoID EleicaoID `gorm:"column:eleicao_id;type:varchar(26);not null;uniqueIndex:idx_sessoes_eleitor_eleicao,priority:2" json:"eleicao_id"`
	EleitorID PerfilID  `gorm:"column:eleitor_id;type:varchar(26);not null;uniqueIndex:idx_sessoes_eleitor_eleicao,priority:1" json:"-"`
	Token     string    `gorm:"column:token;type:text;not null;uniqueIndex:idx_sessoes_token" json:"token_sessao"`
	Votou     bool      `gorm:"column:votou;not null;default:false" json:"votou"`
	ExpiraEm  time.Time `gorm:"column:expira_em;not null" json:"expira_em"`
	CriadoEm  time.Time `gorm:"column:criado_em;autoCreateTime" json:"criado_em"`
}

func (s SessaoVotacao) Expirada(agora time.Time) bool {
	return !agora.Before(s.ExpiraEm)
}

// Voto não carrega o eleitor: a ligação com a identidade fica restrita à sessão.
type Voto struct {
	ID          VotoID      `gorm:"column:id;type:varchar(26);primaryKey"`
	EleicaoID   EleicaoID   `gorm:"column:eleicao_id;type:varchar(26);not null;index:idx_votos_eleicao"`
	CargoID     CargoID     `gorm:"column:cargo_id;type:varchar(26);not null;uniqueIndex:idx_votos_sessao_cargo,priority:2"`
	CandidatoID CandidatoID `gorm:"column:candidato_id;type:varchar(26);not null;index:idx_votos_candidato"`
	SessaoID    SessaoID    `gorm:"column:sessao_id;type:varchar(26);not null;uniqueIndex:idx_votos_sessao_cargo,priority:1"`
	CriadoEm    time.Time   `gorm:"column:criado_em;autoCreateTime"`
}

// Cedula é o pedido de voto em um cargo, autenticado apenas pelo token da sessão.
type Cedula struct {
	Token       string
	EleicaoID   EleicaoID
	CargoID     CargoID
	CandidatoID CandidatoID
}

// EventoVoto é a versão anônima do voto publicada na fila após o commit.
type EventoVoto struct {
	EleicaoID   EleicaoID   `json:"eleicao_id"`
	CargoID     CargoID     `json:"cargo_id"`
	CandidatoID CandidatoID `json:"candidato_id"`
	CriadoEm    time.Time   `json:"criado_em"`
}

// Notificacao trafega no pub/sub para os painéis em tempo real.
type Notificacao struct {
	Tipo           string      `json:"tipo"`
	EleicaoID      EleicaoID   `json:"eleicao_id"`
	CargoID        CargoID     `json:"cargo_id"`
	CandidatoID    CandidatoID `json:"candidato_id"`
	VotosCandidato int64       `json:"votos_candidato"`
	VotosCargo     int64       `json:"votos_cargo"`
	Instante       time.Time   `json:"instante"`
}

// LinhaApuracao é a leitura bruta agregada por candidato, antes das regras de visibilidade.
type LinhaApuracao struct {
	EleicaoID          EleicaoID
	EleicaoTitulo      string
	Inicio             time.Time
	Fim                time.Time
	EleitoresElegiveis string
	MostrarResultados  bool
	CargoID            CargoID
	CargoTitulo        string
	CargoCriadoEm      time.Time
	CandidatoID        CandidatoID
	CandidatoNome      string
	Votos              int64
	TotalElegiveis     int64
}

type Resultado struct {
	EleicaoID          EleicaoID     `json:"eleicao_id"`
	EleicaoTitulo      string        `json:"eleicao_titulo"`
	EleicaoStatus      StatusEleicao `json:"eleicao_status"`
	EleitoresElegiveis string        `json:"eleitores_elegiveis"`
	MostrarResultados  bool          `json:"mostrar_resultados"`
	CargoID            CargoID       `json:"cargo_id"`
	CargoTitulo        string        `json:"cargo_titulo"`
	CandidatoID        CandidatoID   `json:"candidato_id"`
	CandidatoNome      string        `json:"candidato_nome"`
	Votos              int64         `json:"votos"`
	TotalVotosCargo    int64         `json:"total_votos_cargo"`
	TotalElegiveis     int64         `json:"total_elegiveis"`
	Percentual         float64       `json:"percentual"`
	Lider              bool          `json:"lider"`
	Empate             bool          `json:"empate"`
}

type Parcial struct {
	EleicaoID   EleicaoID   `json:"eleicao_id"`
	CargoID     CargoID     `json:"cargo_id"`
	CandidatoID CandidatoID `json:"candidato_id"`
	Total       int64       `json:"total"`
	TotalCargo  int64       `json:"total_cargo"`
}

// SituacaoEleitor diz ao próprio eleitor em que ponto está a sua cédula, sem expor o token.
type SituacaoEleitor struct {
	EleicaoID     EleicaoID `json:"eleicao_id"`
	PossuiSessao  bool      `json:"possui_sessao"`
	Votou         bool      `json:"votou"`
	CargosVotados int64     `json:"cargos_votados"`
}

// Participacao é o comparecimento de uma eleição: votos gravados, eleitores que concluíram a
// cédula e o universo de elegíveis.
type Participacao struct {
	EleicaoID      EleicaoID `json:"eleicao_id"`
	TotalVotos     int64     `json:"total_votos"`
	Votantes       int64     `json:"votantes"`
	TotalElegiveis int64     `json:"total_elegiveis"`
	Percentual     float64   `gorm:"-" json:"percentual"`
}

type AcaoPendente struct {
	ID               AcaoID     `gorm:"column:id;type:varchar(26);primaryKey" json:"id"`
	Tipo             TipoAcao   `gorm:"column:tipo;type:text;not null" json:"tipo"`
	Dados            JSONTexto  `gorm:"column:dados;type:text;not null" json:"dados"`
	Status           StatusAcao `gorm:"column:status;type:text;not null;default:Pending;index" json:"status"`
	SolicitadoPor    PerfilID   `gorm:"column:solicitado_por;type:varchar(26);not null" json:"solicitado_por"`
	RevisadoPor      PerfilID   `gorm:"column:revisado_por;type:varchar(26)" json:"revisado_por,omitempty"`
	ObservacoesAdmin string     `gorm:"column:observacoes_admin;type:text" json:"observacoes_admin,omitempty"`
	SolicitadoEm     time.Time  `gorm:"column:solicitado_em;not null" json:"solicitado_em"`
	RevisadoEm       *time.Time `gorm:"column:revisado_em" json:"revisado_em,omitempty"`
}

type RegistroAuditoria struct {
	ID          AuditoriaID `gorm:"column:id;type:varchar(26);primaryKey"`
	AtorID      PerfilID    `gorm:"column:ator_id;type:varchar(26);index"`
	AtorPapel   Papel       `gorm:"column:ator_papel;type:text"`
	Acao        string      `gorm:"column:acao;type:text;not null"`
	TipoRecurso string      `gorm:"column:tipo_recurso;type:text"`
	RecursoID   string      `gorm:"column:recurso_id;type:text"`
	Detalhes    JSONTexto   `gorm:"column:detalhes;type:text"`
	CriadoEm    time.Time   `gorm:"column:criado_em;autoCreateTime"`
}

func normalizarCurso(curso string) string {
	return strings.ToLower(strings.TrimSpace(curso))
}

func (Perfil) TableName() string { return "perfis" }

func (Eleicao) TableName() string { return "eleicoes" }

func (Cargo) TableName() string { return "cargos" }

func (Candidato) TableName() string { return "candidatos" }

func (SessaoVotacao) TableName() string { return "sessoes_votacao" }

func (Voto) TableName() string { return "votos" }

func (AcaoPendente) TableName() string { return "acoes_pendentes" }

func (RegistroAuditoria) TableName() string { return "auditoria" }
