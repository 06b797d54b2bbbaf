package service

import (
	"context"
	"sync"
	"testing"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
)

type ambiente struct {
	chamados       *fakeChamadoRepo
	transferencias *fakeTransferenciaRepo
	usuarios       *fakeUsuarioRepo
	historico      *fakeHistoricoRepo
	dispatcher     events.Dispatcher
	publicados     *eventosGravados
	svc            *TransferenciaService
}

type eventosGravados struct {
	mu    sync.Mutex
	itens []events.Event
}

func (g *eventosGravados) registrar(dispatcher events.Dispatcher) {
	handler := func(_ context.Context, e events.Event) error {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.itens = append(g.itens, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTransferenciaSolicitada, handler)
	dispatcher.Subscribe(events.EventTransferenciaRespondida, handler)
	dispatcher.Subscribe(events.EventTransferenciaCancelada, handler)
}

func (g *eventosGravados) doTipo(tipo events.EventType) []events.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []events.Event
	for _, e := range g.itens {
		if e.Type == tipo {
			out = append(out, e)
		}
	}
	return out
}

func novoAmbiente(usuarios ...*domain.Usuario) *ambiente {
	chamados := newFakeChamadoRepo()
	transferencias := newFakeTransferenciaRepo(chamados)
	repoUsuarios := newFakeUsuarioRepo(usuarios...)
	historico := &fakeHistoricoRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	publicados := &eventosGravados{}
	publicados.registrar(dispatcher)

	svc := NewTransferenciaService(TransferenciaDependencies{
		TransferenciaRepo: transferencias,
		ChamadoRepo:       chamados,
		UsuarioRepo:       repoUsuarios,
		HistoricoRepo:     historico,
		Dispatcher:        dispatcher,
	})
	return &ambiente{
		chamados:       chamados,
		transferencias: transferencias,
		usuarios:       repoUsuarios,
		historico:      historico,
		dispatcher:     dispatcher,
		publicados:     publicados,
		svc:            svc,
	}
}

func (a *ambiente) novoChamado(t *testing.T, status domain.StatusChamado, responsavelID *int64) *domain.Chamado {
	t.Helper()
	chamado := &domain.Chamado{
		Protocolo:            "CH-2026-ABC123",
		SolicitanteID:        100,
		Titulo:               "Impressora parada",
		Descricao:            "Fila de impressão travada",
		Status:               status,
		Prioridade:           domain.PrioridadeMedia,
		TecnicoResponsavelID: responsavelID,
	}
	if err := a.chamados.Create(context.Background(), chamado); err != nil {
		t.Fatalf("criar chamado: %v", err)
	}
	return chamado
}

func TestSolicitarTransferencia(t *testing.T) {
	ctx := context.Background()
	origem := tecnico(1)
	destino := tecnico(2)

	t.Run("sem responsável é estado inválido", func(t *testing.T) {
		amb := novoAmbiente(origem, destino)
		chamado := amb.novoChamado(t, domain.StatusAberto, nil)

		_, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "sem tempo")
		if got := codigoDe(t, err); got != "INVALID_STATE" {
			t.Fatalf("code = %s, esperava INVALID_STATE", got)
		}
	})

	t.Run("fora de ABERTO é estado inválido", func(t *testing.T) {
		amb := novoAmbiente(origem, destino)
		chamado := amb.novoChamado(t, domain.StatusTriagem, &origem.ID)

		_, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "outro setor")
		if got := codigoDe(t, err); got != "INVALID_STATE" {
			t.Fatalf("code = %s, esperava INVALID_STATE", got)
		}
	})

	t.Run("não responsável é proibido", func(t *testing.T) {
		outro := tecnico(3)
		amb := novoAmbiente(origem, destino, outro)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

		_, err := amb.svc.Solicitar(ctx, outro, chamado.ID, destino.ID, "quero pegar")
		if got := codigoDe(t, err); got != "FORBIDDEN" {
			t.Fatalf("code = %s, esperava FORBIDDEN", got)
		}
	})

	t.Run("usuário comum é proibido", func(t *testing.T) {
		usuario := solicitante(100)
		amb := novoAmbiente(origem, destino, usuario)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

		_, err := amb.svc.Solicitar(ctx, usuario, chamado.ID, destino.ID, "tenta")
		if got := codigoDe(t, err); got != "FORBIDDEN" {
			t.Fatalf("code = %s, esperava FORBIDDEN", got)
		}
	})

	t.Run("pendente duplicada é estado inválido", func(t *testing.T) {
		outro := tecnico(3)
		amb := novoAmbiente(origem, destino, outro)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

		if _, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "primeira"); err != nil {
			t.Fatalf("primeira solicitação: %v", err)
		}
		_, err := amb.svc.Solicitar(ctx, origem, chamado.ID, outro.ID, "segunda")
		if got := codigoDe(t, err); got != "INVALID_STATE" {
			t.Fatalf("code = %s, esperava INVALID_STATE", got)
		}
	})

	t.Run("sucesso notifica o destino", func(t *testing.T) {
		amb := novoAmbiente(origem, destino)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

		transferencia, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "especialidade de rede")
		if err != nil {
			t.Fatalf("solicitar: %v", err)
		}
		if transferencia.Status != domain.TransferenciaPendente {
			t.Fatalf("status = %s, esperava PENDENTE", transferencia.Status)
		}
		publicados := amb.publicados.doTipo(events.EventTransferenciaSolicitada)
		if len(publicados) != 1 {
			t.Fatalf("eventos publicados = %d, esperava 1", len(publicados))
		}
	})
}

func TestSolicitarTransferenciaConcorrente(t *testing.T) {
	ctx := context.Background()
	origem := tecnico(1)
	amb := novoAmbiente(origem)
	for i := int64(2); i <= 9; i++ {
		if err := amb.usuarios.Create(ctx, tecnico(i)); err != nil {
			t.Fatal(err)
		}
	}
	chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

	var wg sync.WaitGroup
	sucessos := make(chan int64, 8)
	for destino := int64(2); destino <= 9; destino++ {
		wg.Add(1)
		go func(destinoID int64) {
			defer wg.Done()
			if _, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destinoID, "corrida"); err == nil {
				sucessos <- destinoID
			}
		}(destino)
	}
	wg.Wait()
	close(sucessos)

	var total int
	for range sucessos {
		total++
	}
	if total != 1 {
		t.Fatalf("solicitações aceitas = %d, esperava exatamente 1", total)
	}
}

func TestResponderTransferencia(t *testing.T) {
	ctx := context.Background()
	origem := tecnico(1)
	destino := tecnico(2)

	preparar := func(t *testing.T) (*ambiente, *domain.Chamado, *domain.Transferencia) {
		amb := novoAmbiente(origem, destino)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)
		transferencia, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "troca de plantão")
		if err != nil {
			t.Fatalf("solicitar: %v", err)
		}
		return amb, chamado, transferencia
	}

	t.Run("aceite troca o responsável e notifica a origem", func(t *testing.T) {
		amb, chamado, transferencia := preparar(t)

		resolvida, err := amb.svc.Responder(ctx, destino, transferencia.ID, true, nil)
		if err != nil {
			t.Fatalf("responder: %v", err)
		}
		if resolvida.Status != domain.TransferenciaAceita {
			t.Fatalf("status = %s, esperava ACEITA", resolvida.Status)
		}
		atual, err := amb.chamados.GetByID(ctx, chamado.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !atual.ResponsavelE(destino.ID) {
			t.Fatalf("responsável = %v, esperava %d", atual.TecnicoResponsavelID, destino.ID)
		}
		publicados := amb.publicados.doTipo(events.EventTransferenciaRespondida)
		if len(publicados) != 1 {
			t.Fatalf("eventos publicados = %d, esperava 1", len(publicados))
		}
	})

	t.Run("recusa guarda o motivo e mantém o responsável", func(t *testing.T) {
		amb, chamado, transferencia := preparar(t)

		motivo := "sem capacidade esta semana"
		resolvida, err := amb.svc.Responder(ctx, destino, transferencia.ID, false, &motivo)
		if err != nil {
			t.Fatalf("responder: %v", err)
		}
		if resolvida.Status != domain.TransferenciaRecusada {
			t.Fatalf("status = %s, esperava RECUSADA", resolvida.Status)
		}
		if resolvida.MotivoRecusa == nil || *resolvida.MotivoRecusa != motivo {
			t.Fatalf("motivo recusa = %v, esperava %q", resolvida.MotivoRecusa, motivo)
		}
		atual, err := amb.chamados.GetByID(ctx, chamado.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !atual.ResponsavelE(origem.ID) {
			t.Fatalf("responsável mudou para %v após recusa", atual.TecnicoResponsavelID)
		}
	})

	t.Run("somente o destino responde", func(t *testing.T) {
		amb, _, transferencia := preparar(t)

		_, err := amb.svc.Responder(ctx, origem, transferencia.ID, true, nil)
		if got := codigoDe(t, err); got != "FORBIDDEN" {
			t.Fatalf("code = %s, esperava FORBIDDEN", got)
		}
	})

	t.Run("resolvida se comporta como inexistente", func(t *testing.T) {
		amb, _, transferencia := preparar(t)

		if _, err := amb.svc.Responder(ctx, destino, transferencia.ID, false, nil); err != nil {
			t.Fatalf("primeira resposta: %v", err)
		}
		_, err := amb.svc.Responder(ctx, destino, transferencia.ID, true, nil)
		if got := codigoDe(t, err); got != "NOT_FOUND" {
			t.Fatalf("code = %s, esperava NOT_FOUND", got)
		}
	})
}

func TestCancelarTransferencia(t *testing.T) {
	ctx := context.Background()
	origem := tecnico(1)
	destino := tecnico(2)

	preparar := func(t *testing.T) (*ambiente, *domain.Transferencia) {
		amb := novoAmbiente(origem, destino)
		chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)
		transferencia, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "mudança de fila")
		if err != nil {
			t.Fatalf("solicitar: %v", err)
		}
		return amb, transferencia
	}

	t.Run("origem cancela pendente", func(t *testing.T) {
		amb, transferencia := preparar(t)

		resolvida, err := amb.svc.Cancelar(ctx, origem, transferencia.ID)
		if err != nil {
			t.Fatalf("cancelar: %v", err)
		}
		if resolvida.Status != domain.TransferenciaCancelada {
			t.Fatalf("status = %s, esperava CANCELADA", resolvida.Status)
		}
		publicados := amb.publicados.doTipo(events.EventTransferenciaCancelada)
		if len(publicados) != 1 {
			t.Fatalf("eventos publicados = %d, esperava 1", len(publicados))
		}
	})

	t.Run("somente a origem cancela", func(t *testing.T) {
		amb, transferencia := preparar(t)

		_, err := amb.svc.Cancelar(ctx, destino, transferencia.ID)
		if got := codigoDe(t, err); got != "FORBIDDEN" {
			t.Fatalf("code = %s, esperava FORBIDDEN", got)
		}
	})

	t.Run("respondida não cancela", func(t *testing.T) {
		amb, transferencia := preparar(t)

		if _, err := amb.svc.Responder(ctx, destino, transferencia.ID, true, nil); err != nil {
			t.Fatalf("responder: %v", err)
		}
		_, err := amb.svc.Cancelar(ctx, origem, transferencia.ID)
		if got := codigoDe(t, err); got != "INVALID_STATE" {
			t.Fatalf("code = %s, esperava INVALID_STATE", got)
		}
	})
}

func TestMinhasPendenciasEEnviadas(t *testing.T) {
	ctx := context.Background()
	origem := tecnico(1)
	destino := tecnico(2)
	amb := novoAmbiente(origem, destino)
	chamado := amb.novoChamado(t, domain.StatusAberto, &origem.ID)

	transferencia, err := amb.svc.Solicitar(ctx, origem, chamado.ID, destino.ID, "backlog alto")
	if err != nil {
		t.Fatalf("solicitar: %v", err)
	}

	pendencias, err := amb.svc.MinhasPendencias(ctx, destino)
	if err != nil {
		t.Fatalf("pendências: %v", err)
	}
	if len(pendencias) != 1 || pendencias[0].ID != transferencia.ID {
		t.Fatalf("pendências = %+v, esperava apenas a transferência %d", pendencias, transferencia.ID)
	}

	enviadas, total, err := amb.svc.Enviadas(ctx, origem, 0, 20)
	if err != nil {
		t.Fatalf("enviadas: %v", err)
	}
	if total != 1 || len(enviadas) != 1 {
		t.Fatalf("enviadas = %d (total %d), esperava 1", len(enviadas), total)
	}

	if _, err := amb.svc.MinhasPendencias(ctx, solicitante(100)); err == nil {
		t.Fatal("usuário comum não deveria listar pendências")
	}
}
