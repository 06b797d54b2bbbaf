package domain

import "time"

// TipoNotificacao enumerates notification kinds delivered to users.
type TipoNotificacao string

const (
	NotificacaoNovaMensagem  TipoNotificacao = "NOVA_MENSAGEM"
	NotificacaoMudancaStatus TipoNotificacao = "MUDANCA_STATUS"
	NotificacaoResolucao     TipoNotificacao = "RESOLUCAO"
	NotificacaoTransferencia TipoNotificacao = "TRANSFERENCIA"
	NotificacaoReabertura    TipoNotificacao = "REABERTURA"
)

// Notificacao is created as a side effect of a lifecycle transition and
// mutated only by the recipient marking it read.
type Notificacao struct {
	ID               int64
	UsuarioID        int64
	ChamadoID        int64
	ChamadoProtocolo string
	Tipo             TipoNotificacao
	Titulo           string
	Mensagem         string
	Lida             bool
	CriadoEm         time.Time
}
