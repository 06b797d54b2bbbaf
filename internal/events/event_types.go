package events

import (
	"time"

	"github.com/suporteti/chamado-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventChamadoAberto           EventType = "chamado_aberto"
	EventStatusAlterado          EventType = "chamado_status_alterado"
	EventChamadoReaberto         EventType = "chamado_reaberto"
	EventChamadoAvaliado         EventType = "chamado_avaliado"
	EventMensagemEnviada         EventType = "chamado_mensagem_enviada"
	EventTransferenciaSolicitada EventType = "transferencia_solicitada"
	EventTransferenciaRespondida EventType = "transferencia_respondida"
	EventTransferenciaCancelada  EventType = "transferencia_cancelada"
)

// Ator encapsulates actor metadata for an event.
type Ator struct {
	UsuarioID int64         `json:"usuario_id"`
	Perfil    domain.Perfil `json:"perfil"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChamadoID int64       `json:"chamado_id"`
	Protocolo string      `json:"protocolo"`
	Ator      Ator        `json:"ator"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ChamadoAbertoPayload payload.
type ChamadoAbertoPayload struct {
	Titulo     string            `json:"titulo"`
	Prioridade domain.Prioridade `json:"prioridade"`
}

// StatusAlteradoPayload payload. SolicitanteID identifica o destinatário
// da notificação em mudanças conduzidas pelo técnico.
type StatusAlteradoPayload struct {
	De             domain.StatusChamado `json:"de"`
	Para           domain.StatusChamado `json:"para"`
	Observacao     string               `json:"observacao,omitempty"`
	VisivelCliente bool                 `json:"visivel_cliente"`
	SolicitanteID  int64                `json:"solicitante_id"`
}

// ChamadoReabertoPayload payload.
type ChamadoReabertoPayload struct {
	Motivo               string `json:"motivo"`
	TecnicoResponsavelID int64  `json:"tecnico_responsavel_id"`
}

// ChamadoAvaliadoPayload payload.
type ChamadoAvaliadoPayload struct {
	Nota       int    `json:"nota"`
	Comentario string `json:"comentario,omitempty"`
}

// MensagemEnviadaPayload payload. DestinatarioID aponta para a outra
// parte da conversa; zero quando não há contraparte definida.
type MensagemEnviadaPayload struct {
	MensagemID     int64 `json:"mensagem_id"`
	RemetenteID    int64 `json:"remetente_id"`
	DestinatarioID int64 `json:"destinatario_id"`
	VisivelCliente bool  `json:"visivel_cliente"`
}

// TransferenciaSolicitadaPayload payload.
type TransferenciaSolicitadaPayload struct {
	TransferenciaID  int64  `json:"transferencia_id"`
	TecnicoOrigemID  int64  `json:"tecnico_origem_id"`
	TecnicoDestinoID int64  `json:"tecnico_destino_id"`
	Motivo           string `json:"motivo"`
}

// TransferenciaRespondidaPayload payload.
type TransferenciaRespondidaPayload struct {
	TransferenciaID  int64   `json:"transferencia_id"`
	Aceita           bool    `json:"aceita"`
	TecnicoOrigemID  int64   `json:"tecnico_origem_id"`
	TecnicoDestinoID int64   `json:"tecnico_destino_id"`
	MotivoRecusa     *string `json:"motivo_recusa,omitempty"`
}

// TransferenciaCanceladaPayload payload.
type TransferenciaCanceladaPayload struct {
	TransferenciaID  int64 `json:"transferencia_id"`
	TecnicoOrigemID  int64 `json:"tecnico_origem_id"`
	TecnicoDestinoID int64 `json:"tecnico_destino_id"`
}
