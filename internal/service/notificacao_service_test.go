package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
)

func montarNotificacoes() (*NotificacaoService, *fakeNotificacaoRepo, events.Dispatcher) {
	repo := &fakeNotificacaoRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificacaoService(NotificacaoDependencies{
		NotificacaoRepo: repo,
		Dispatcher:      dispatcher,
	})
	svc.RegisterHandlers()
	return svc, repo, dispatcher
}

func publicar(t *testing.T, dispatcher events.Dispatcher, tipo events.EventType, payload interface{}) {
	t.Helper()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      tipo,
		ChamadoID: 1,
		Protocolo: "CH-2026-TESTE1",
		Ator:      events.Ator{UsuarioID: 1, Perfil: domain.PerfilTecnicoTI},
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		t.Fatalf("publicar: %v", err)
	}
}

func TestNotificacaoPorEvento(t *testing.T) {
	casos := []struct {
		nome         string
		tipo         events.EventType
		payload      interface{}
		destinatario int64
		tipoEsperado domain.TipoNotificacao
	}{
		{
			nome: "mudança de status notifica o solicitante",
			tipo: events.EventStatusAlterado,
			payload: events.StatusAlteradoPayload{
				De: domain.StatusTriagem, Para: domain.StatusEmAtendimento, SolicitanteID: 100,
			},
			destinatario: 100,
			tipoEsperado: domain.NotificacaoMudancaStatus,
		},
		{
			nome: "resolução vira notificação própria",
			tipo: events.EventStatusAlterado,
			payload: events.StatusAlteradoPayload{
				De: domain.StatusEmAtendimento, Para: domain.StatusResolvido, SolicitanteID: 100,
			},
			destinatario: 100,
			tipoEsperado: domain.NotificacaoResolucao,
		},
		{
			nome:         "reabertura notifica o técnico",
			tipo:         events.EventChamadoReaberto,
			payload:      events.ChamadoReabertoPayload{Motivo: "voltou", TecnicoResponsavelID: 5},
			destinatario: 5,
			tipoEsperado: domain.NotificacaoReabertura,
		},
		{
			nome:         "mensagem pública notifica a contraparte",
			tipo:         events.EventMensagemEnviada,
			payload:      events.MensagemEnviadaPayload{MensagemID: 9, RemetenteID: 5, DestinatarioID: 100, VisivelCliente: true},
			destinatario: 100,
			tipoEsperado: domain.NotificacaoNovaMensagem,
		},
		{
			nome:         "transferência solicitada notifica o destino",
			tipo:         events.EventTransferenciaSolicitada,
			payload:      events.TransferenciaSolicitadaPayload{TransferenciaID: 3, TecnicoOrigemID: 5, TecnicoDestinoID: 6},
			destinatario: 6,
			tipoEsperado: domain.NotificacaoTransferencia,
		},
		{
			nome:         "resposta notifica a origem",
			tipo:         events.EventTransferenciaRespondida,
			payload:      events.TransferenciaRespondidaPayload{TransferenciaID: 3, Aceita: true, TecnicoOrigemID: 5, TecnicoDestinoID: 6},
			destinatario: 5,
			tipoEsperado: domain.NotificacaoTransferencia,
		},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			_, repo, dispatcher := montarNotificacoes()
			publicar(t, dispatcher, caso.tipo, caso.payload)

			if len(repo.itens) != 1 {
				t.Fatalf("notificações gravadas = %d, esperava exatamente 1", len(repo.itens))
			}
			n := repo.itens[0]
			if n.UsuarioID != caso.destinatario {
				t.Fatalf("destinatário = %d, esperava %d", n.UsuarioID, caso.destinatario)
			}
			if n.Tipo != caso.tipoEsperado {
				t.Fatalf("tipo = %s, esperava %s", n.Tipo, caso.tipoEsperado)
			}
			if n.Lida {
				t.Fatal("notificação nasce não lida")
			}
		})
	}
}

func TestNotaInternaNaoNotifica(t *testing.T) {
	_, repo, dispatcher := montarNotificacoes()
	publicar(t, dispatcher, events.EventMensagemEnviada, events.MensagemEnviadaPayload{
		MensagemID: 9, RemetenteID: 5, DestinatarioID: 100, VisivelCliente: false,
	})
	if len(repo.itens) != 0 {
		t.Fatalf("nota interna gerou %d notificações", len(repo.itens))
	}
}

func TestReaberturaSemResponsavelNaoNotifica(t *testing.T) {
	_, repo, dispatcher := montarNotificacoes()
	publicar(t, dispatcher, events.EventChamadoReaberto, events.ChamadoReabertoPayload{
		Motivo: "voltou", TecnicoResponsavelID: 0,
	})
	if len(repo.itens) != 0 {
		t.Fatalf("reabertura sem técnico gerou %d notificações", len(repo.itens))
	}
}

func TestInboxDoUsuario(t *testing.T) {
	ctx := context.Background()
	svc, _, dispatcher := montarNotificacoes()

	publicar(t, dispatcher, events.EventStatusAlterado, events.StatusAlteradoPayload{
		De: domain.StatusAberto, Para: domain.StatusTriagem, SolicitanteID: 100,
	})
	publicar(t, dispatcher, events.EventStatusAlterado, events.StatusAlteradoPayload{
		De: domain.StatusTriagem, Para: domain.StatusEmAtendimento, SolicitanteID: 100,
	})

	lista, total, err := svc.Listar(ctx, 100, 0, 20)
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if total != 2 || len(lista) != 2 {
		t.Fatalf("inbox = %d (total %d), esperava 2", len(lista), total)
	}

	count, err := svc.ContarNaoLidas(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("não lidas = %d, esperava 2", count)
	}

	if err := svc.MarcarLida(ctx, 100, lista[0].ID); err != nil {
		t.Fatalf("marcar lida: %v", err)
	}
	count, _ = svc.ContarNaoLidas(ctx, 100)
	if count != 1 {
		t.Fatalf("não lidas = %d após marcar uma, esperava 1", count)
	}

	// outro usuário não marca notificação alheia
	err = svc.MarcarLida(ctx, 200, lista[1].ID)
	if got := codigoDe(t, err); got != "NOT_FOUND" {
		t.Fatalf("code = %s, esperava NOT_FOUND", got)
	}

	afetadas, err := svc.MarcarTodasLidas(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if afetadas != 1 {
		t.Fatalf("afetadas = %d, esperava 1", afetadas)
	}
	count, _ = svc.ContarNaoLidas(ctx, 100)
	if count != 0 {
		t.Fatalf("não lidas = %d após marcar todas, esperava 0", count)
	}
}
