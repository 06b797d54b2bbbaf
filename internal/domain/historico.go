package domain

import "time"

// TipoHistorico captures what changed in a timeline entry.
type TipoHistorico string

const (
	HistoricoStatus        TipoHistorico = "MUDANCA_STATUS"
	HistoricoResponsavel   TipoHistorico = "MUDANCA_RESPONSAVEL"
	HistoricoTransferencia TipoHistorico = "TRANSFERENCIA"
	HistoricoReabertura    TipoHistorico = "REABERTURA"
	HistoricoAvaliacao     TipoHistorico = "AVALIACAO"
	HistoricoEdicao        TipoHistorico = "EDICAO"
)

// HistoricoEvento is an immutable audit trail entry for a chamado.
type HistoricoEvento struct {
	ID        int64
	ChamadoID int64
	AtorID    *int64
	Tipo      TipoHistorico
	Detalhes  map[string]any
	CriadoEm  time.Time
}
