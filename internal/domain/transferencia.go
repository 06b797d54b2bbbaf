package domain

import "time"

// StatusTransferencia enumerates the states of a transfer request.
// PENDENTE é o único estado não terminal: uma solicitação resolvida
// nunca muda de status novamente.
type StatusTransferencia string

const (
	TransferenciaPendente  StatusTransferencia = "PENDENTE"
	TransferenciaAceita    StatusTransferencia = "ACEITA"
	TransferenciaRecusada  StatusTransferencia = "RECUSADA"
	TransferenciaCancelada StatusTransferencia = "CANCELADA"
)

// Transferencia is a request to move a chamado from its current
// responsible technician (origem) to another technician (destino).
type Transferencia struct {
	ID               int64
	ChamadoID        int64
	TecnicoOrigemID  int64
	TecnicoDestinoID int64
	Motivo           string
	Status           StatusTransferencia
	MotivoRecusa     *string
	DataSolicitacao  time.Time
	DataResposta     *time.Time
}

// Pendente reports whether the request is still awaiting a response.
func (t *Transferencia) Pendente() bool {
	return t != nil && t.Status == TransferenciaPendente
}
