package domain

import "time"

// StatusChamado enumerates lifecycle states for chamados.
type StatusChamado string

const (
	StatusAberto            StatusChamado = "ABERTO"
	StatusTriagem           StatusChamado = "TRIAGEM"
	StatusEmAtendimento     StatusChamado = "EM_ATENDIMENTO"
	StatusAguardandoCliente StatusChamado = "AGUARDANDO_CLIENTE"
	StatusAguardandoPeca    StatusChamado = "AGUARDANDO_PECA"
	StatusResolvido         StatusChamado = "RESOLVIDO"
	StatusConcluido         StatusChamado = "CONCLUIDO"
	StatusReaberto          StatusChamado = "REABERTO"
)

// Prioridade enumerates urgency levels.
type Prioridade string

const (
	PrioridadeBaixa   Prioridade = "BAIXA"
	PrioridadeMedia   Prioridade = "MEDIA"
	PrioridadeAlta    Prioridade = "ALTA"
	PrioridadeCritica Prioridade = "CRITICA"
)

// Chamado is the aggregate for support requests. O protocolo é imutável
// após a criação; o chamado nunca é removido fisicamente.
type Chamado struct {
	ID                   int64
	Protocolo            string
	SolicitanteID        int64
	EmpresaID            *int64
	TecnicoResponsavelID *int64
	Titulo               string
	Descricao            string
	Categoria            string
	Status               StatusChamado
	Prioridade           Prioridade
	AvaliacaoNota        *int
	AvaliacaoComentario  *string
	CriadoEm             time.Time
	AtualizadoEm         time.Time
	ConcluidoEm          *time.Time
}

// TemResponsavel reports whether a technician currently owns the chamado.
func (c *Chamado) TemResponsavel() bool {
	return c != nil && c.TecnicoResponsavelID != nil
}

// ResponsavelE reports whether the given technician owns the chamado.
func (c *Chamado) ResponsavelE(tecnicoID int64) bool {
	return c.TemResponsavel() && *c.TecnicoResponsavelID == tecnicoID
}
