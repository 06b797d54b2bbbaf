// Package notify maps lifecycle events to notification recipients. The
// mapping is pure: it decides who is told what, and the notification
// service persists the result. Each event yields exactly one Destino per
// affected user, never duplicates.
package notify

import (
	"fmt"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
)

// Destino is one (recipient, notification) pair derived from an event.
type Destino struct {
	UsuarioID int64
	Tipo      domain.TipoNotificacao
	Titulo    string
	Mensagem  string
}

// ParaEvento resolves the recipients of an event. Events that affect no
// other user (avaliação, abertura, nota interna) yield an empty slice.
func ParaEvento(evento events.Event) []Destino {
	switch payload := evento.Payload.(type) {
	case events.StatusAlteradoPayload:
		if payload.Para == domain.StatusResolvido {
			return []Destino{{
				UsuarioID: payload.SolicitanteID,
				Tipo:      domain.NotificacaoResolucao,
				Titulo:    "Chamado resolvido",
				Mensagem:  fmt.Sprintf("O chamado %s foi resolvido. Avalie o atendimento ou reabra se necessário.", evento.Protocolo),
			}}
		}
		return []Destino{{
			UsuarioID: payload.SolicitanteID,
			Tipo:      domain.NotificacaoMudancaStatus,
			Titulo:    "Status atualizado",
			Mensagem: fmt.Sprintf("O chamado %s mudou de %s para %s.",
				evento.Protocolo, domain.RotuloStatus(payload.De), domain.RotuloStatus(payload.Para)),
		}}

	case events.ChamadoReabertoPayload:
		// reaberturas de chamados que nunca tiveram técnico não têm quem avisar
		if payload.TecnicoResponsavelID == 0 {
			return nil
		}
		return []Destino{{
			UsuarioID: payload.TecnicoResponsavelID,
			Tipo:      domain.NotificacaoReabertura,
			Titulo:    "Chamado reaberto",
			Mensagem:  fmt.Sprintf("O chamado %s foi reaberto pelo solicitante.", evento.Protocolo),
		}}

	case events.MensagemEnviadaPayload:
		// notas internas e mensagens sem contraparte não notificam
		if !payload.VisivelCliente || payload.DestinatarioID == 0 {
			return nil
		}
		return []Destino{{
			UsuarioID: payload.DestinatarioID,
			Tipo:      domain.NotificacaoNovaMensagem,
			Titulo:    "Nova mensagem",
			Mensagem:  fmt.Sprintf("Nova mensagem no chamado %s.", evento.Protocolo),
		}}

	case events.TransferenciaSolicitadaPayload:
		return []Destino{{
			UsuarioID: payload.TecnicoDestinoID,
			Tipo:      domain.NotificacaoTransferencia,
			Titulo:    "Transferência recebida",
			Mensagem:  fmt.Sprintf("Você recebeu uma solicitação de transferência do chamado %s.", evento.Protocolo),
		}}

	case events.TransferenciaRespondidaPayload:
		titulo := "Transferência recusada"
		mensagem := fmt.Sprintf("A transferência do chamado %s foi recusada.", evento.Protocolo)
		if payload.Aceita {
			titulo = "Transferência aceita"
			mensagem = fmt.Sprintf("A transferência do chamado %s foi aceita.", evento.Protocolo)
		}
		return []Destino{{
			UsuarioID: payload.TecnicoOrigemID,
			Tipo:      domain.NotificacaoTransferencia,
			Titulo:    titulo,
			Mensagem:  mensagem,
		}}

	case events.TransferenciaCanceladaPayload:
		return []Destino{{
			UsuarioID: payload.TecnicoDestinoID,
			Tipo:      domain.NotificacaoTransferencia,
			Titulo:    "Transferência cancelada",
			Mensagem:  fmt.Sprintf("A solicitação de transferência do chamado %s foi cancelada.", evento.Protocolo),
		}}
	}
	return nil
}
