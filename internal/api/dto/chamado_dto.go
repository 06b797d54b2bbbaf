package dto

import (
	"time"

	"github.com/suporteti/chamado-service/internal/domain"
)

// AbrirChamadoRequest payload.
type AbrirChamadoRequest struct {
	Titulo     string            `json:"titulo"`
	Descricao  string            `json:"descricao"`
	Categoria  string            `json:"categoria"`
	Prioridade domain.Prioridade `json:"prioridade"`
}

// EditarChamadoRequest payload. Campos ausentes não são alterados.
type EditarChamadoRequest struct {
	Titulo     *string            `json:"titulo"`
	Descricao  *string            `json:"descricao"`
	Categoria  *string            `json:"categoria"`
	Prioridade *domain.Prioridade `json:"prioridade"`
}

// AlterarStatusRequest payload.
type AlterarStatusRequest struct {
	Status         domain.StatusChamado `json:"status"`
	Observacao     string               `json:"observacao"`
	VisivelCliente bool                 `json:"visivelCliente"`
}

// ReabrirChamadoRequest payload.
type ReabrirChamadoRequest struct {
	Motivo string `json:"motivo"`
}

// AvaliarChamadoRequest payload.
type AvaliarChamadoRequest struct {
	Nota       int    `json:"nota"`
	Comentario string `json:"comentario"`
}

// EnviarMensagemRequest payload.
type EnviarMensagemRequest struct {
	Conteudo       string `json:"conteudo"`
	VisivelCliente *bool  `json:"visivelCliente"`
}

// ChamadoResponse is the full chamado representation.
type ChamadoResponse struct {
	ID                   int64             `json:"id"`
	Protocolo            string            `json:"protocolo"`
	SolicitanteID        int64             `json:"solicitanteId"`
	EmpresaID            *int64            `json:"empresaId,omitempty"`
	TecnicoResponsavelID *int64            `json:"tecnicoResponsavelId,omitempty"`
	Titulo               string            `json:"titulo"`
	Descricao            string            `json:"descricao"`
	Categoria            string            `json:"categoria,omitempty"`
	Status               string            `json:"status"`
	StatusRotulo         string            `json:"statusRotulo"`
	Prioridade           domain.Prioridade `json:"prioridade"`
	PrioridadeRotulo     string            `json:"prioridadeRotulo"`
	AvaliacaoNota        *int              `json:"avaliacaoNota,omitempty"`
	AvaliacaoComentario  *string           `json:"avaliacaoComentario,omitempty"`
	CriadoEm             time.Time         `json:"criadoEm"`
	AtualizadoEm         time.Time         `json:"atualizadoEm"`
	ConcluidoEm          *time.Time        `json:"concluidoEm,omitempty"`
}

// MensagemResponse is one chat message.
type MensagemResponse struct {
	ID              int64         `json:"id"`
	ChamadoID       int64         `json:"chamadoId"`
	RemetenteID     int64         `json:"remetenteId"`
	RemetenteNome   string        `json:"remetenteNome"`
	RemetentePerfil domain.Perfil `json:"remetentePerfil"`
	Conteudo        string        `json:"conteudo"`
	VisivelCliente  bool          `json:"visivelCliente"`
	EnviadoEm       time.Time     `json:"enviadoEm"`
}

// HistoricoResponse is one timeline entry.
type HistoricoResponse struct {
	ID       int64          `json:"id"`
	AtorID   *int64         `json:"atorId,omitempty"`
	Tipo     string         `json:"tipo"`
	Detalhes map[string]any `json:"detalhes,omitempty"`
	CriadoEm time.Time      `json:"criadoEm"`
}
