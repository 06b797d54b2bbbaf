package notify

import (
	"testing"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
)

func evento(tipo events.EventType, payload any) events.Event {
	return events.Event{
		Type:      tipo,
		ChamadoID: 1,
		Protocolo: "CH-2026-000001",
		Payload:   payload,
	}
}

func unico(t *testing.T, destinos []Destino) Destino {
	t.Helper()
	if len(destinos) != 1 {
		t.Fatalf("got %d destinos, want exatamente 1", len(destinos))
	}
	return destinos[0]
}

func TestStatusAlteradoNotificaSolicitante(t *testing.T) {
	d := unico(t, ParaEvento(evento(events.EventStatusAlterado, events.StatusAlteradoPayload{
		De:            domain.StatusTriagem,
		Para:          domain.StatusEmAtendimento,
		SolicitanteID: 5,
	})))
	if d.UsuarioID != 5 || d.Tipo != domain.NotificacaoMudancaStatus {
		t.Fatalf("got %+v, want MUDANCA_STATUS para usuário 5", d)
	}
}

func TestResolucaoTemTipoProprio(t *testing.T) {
	d := unico(t, ParaEvento(evento(events.EventStatusAlterado, events.StatusAlteradoPayload{
		De:            domain.StatusEmAtendimento,
		Para:          domain.StatusResolvido,
		SolicitanteID: 5,
	})))
	if d.Tipo != domain.NotificacaoResolucao {
		t.Fatalf("got tipo %s, want RESOLUCAO", d.Tipo)
	}
}

func TestReaberturaNotificaTecnico(t *testing.T) {
	d := unico(t, ParaEvento(evento(events.EventChamadoReaberto, events.ChamadoReabertoPayload{
		TecnicoResponsavelID: 10,
	})))
	if d.UsuarioID != 10 || d.Tipo != domain.NotificacaoReabertura {
		t.Fatalf("got %+v, want REABERTURA para técnico 10", d)
	}
}

func TestReaberturaSemResponsavelNaoNotifica(t *testing.T) {
	destinos := ParaEvento(evento(events.EventChamadoReaberto, events.ChamadoReabertoPayload{
		TecnicoResponsavelID: 0,
	}))
	if len(destinos) != 0 {
		t.Fatalf("reabertura sem responsável gerou %d notificações", len(destinos))
	}
}

func TestMensagemNotificaContraparte(t *testing.T) {
	d := unico(t, ParaEvento(evento(events.EventMensagemEnviada, events.MensagemEnviadaPayload{
		RemetenteID:    5,
		DestinatarioID: 10,
		VisivelCliente: true,
	})))
	if d.UsuarioID != 10 || d.Tipo != domain.NotificacaoNovaMensagem {
		t.Fatalf("got %+v, want NOVA_MENSAGEM para usuário 10", d)
	}
}

func TestNotaInternaNaoNotifica(t *testing.T) {
	destinos := ParaEvento(evento(events.EventMensagemEnviada, events.MensagemEnviadaPayload{
		RemetenteID:    10,
		DestinatarioID: 5,
		VisivelCliente: false,
	}))
	if len(destinos) != 0 {
		t.Fatalf("nota interna gerou %d notificações", len(destinos))
	}
}

func TestMensagemSemContraparteNaoNotifica(t *testing.T) {
	destinos := ParaEvento(evento(events.EventMensagemEnviada, events.MensagemEnviadaPayload{
		RemetenteID:    10,
		VisivelCliente: true,
	}))
	if len(destinos) != 0 {
		t.Fatalf("mensagem sem destinatário gerou %d notificações", len(destinos))
	}
}

func TestFluxoDeTransferencia(t *testing.T) {
	recusa := "sem capacidade"
	tests := []struct {
		name      string
		ev        events.Event
		usuarioID int64
	}{
		{"solicitada notifica destino", evento(events.EventTransferenciaSolicitada, events.TransferenciaSolicitadaPayload{
			TecnicoOrigemID: 10, TecnicoDestinoID: 11,
		}), 11},
		{"aceita notifica origem", evento(events.EventTransferenciaRespondida, events.TransferenciaRespondidaPayload{
			Aceita: true, TecnicoOrigemID: 10, TecnicoDestinoID: 11,
		}), 10},
		{"recusada notifica origem", evento(events.EventTransferenciaRespondida, events.TransferenciaRespondidaPayload{
			Aceita: false, MotivoRecusa: &recusa, TecnicoOrigemID: 10, TecnicoDestinoID: 11,
		}), 10},
		{"cancelada notifica destino", evento(events.EventTransferenciaCancelada, events.TransferenciaCanceladaPayload{
			TecnicoOrigemID: 10, TecnicoDestinoID: 11,
		}), 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := unico(t, ParaEvento(tt.ev))
			if d.UsuarioID != tt.usuarioID {
				t.Errorf("destinatário = %d, want %d", d.UsuarioID, tt.usuarioID)
			}
			if d.Tipo != domain.NotificacaoTransferencia {
				t.Errorf("tipo = %s, want TRANSFERENCIA", d.Tipo)
			}
		})
	}
}

func TestEventosSemDestinatario(t *testing.T) {
	for _, ev := range []events.Event{
		evento(events.EventChamadoAberto, events.ChamadoAbertoPayload{Titulo: "x"}),
		evento(events.EventChamadoAvaliado, events.ChamadoAvaliadoPayload{Nota: 5}),
	} {
		if destinos := ParaEvento(ev); len(destinos) != 0 {
			t.Errorf("%s gerou %d notificações, want 0", ev.Type, len(destinos))
		}
	}
}
