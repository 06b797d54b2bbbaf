package dto

import (
	"time"

	"github.com/suporteti/chamado-service/internal/domain"
)

// SolicitarTransferenciaRequest payload.
type SolicitarTransferenciaRequest struct {
	TecnicoDestinoID int64  `json:"tecnicoDestinoId"`
	Motivo           string `json:"motivo"`
}

// ResponderTransferenciaRequest payload.
type ResponderTransferenciaRequest struct {
	Aceito       bool    `json:"aceito"`
	MotivoRecusa *string `json:"motivoRecusa"`
}

// TransferenciaResponse representation.
type TransferenciaResponse struct {
	ID               int64                      `json:"id"`
	ChamadoID        int64                      `json:"chamadoId"`
	TecnicoOrigemID  int64                      `json:"tecnicoOrigemId"`
	TecnicoDestinoID int64                      `json:"tecnicoDestinoId"`
	Motivo           string                     `json:"motivo"`
	Status           domain.StatusTransferencia `json:"status"`
	MotivoRecusa     *string                    `json:"motivoRecusa,omitempty"`
	DataSolicitacao  time.Time                  `json:"dataSolicitacao"`
	DataResposta     *time.Time                 `json:"dataResposta,omitempty"`
}
