package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
	"github.com/suporteti/chamado-service/internal/lifecycle"
	"github.com/suporteti/chamado-service/internal/policy"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// TransferenciaService runs the transfer negotiation between técnicos.
type TransferenciaService struct {
	transferencias repository.TransferenciaRepository
	chamados       repository.ChamadoRepository
	usuarios       repository.UsuarioRepository
	historico      repository.HistoricoRepository
	dispatcher     events.Dispatcher
}

// TransferenciaDependencies bundles repositories for the service.
type TransferenciaDependencies struct {
	TransferenciaRepo repository.TransferenciaRepository
	ChamadoRepo       repository.ChamadoRepository
	UsuarioRepo       repository.UsuarioRepository
	HistoricoRepo     repository.HistoricoRepository
	Dispatcher        events.Dispatcher
}

// NewTransferenciaService constructs the service.
func NewTransferenciaService(deps TransferenciaDependencies) *TransferenciaService {
	return &TransferenciaService{
		transferencias: deps.TransferenciaRepo,
		chamados:       deps.ChamadoRepo,
		usuarios:       deps.UsuarioRepo,
		historico:      deps.HistoricoRepo,
		dispatcher:     deps.Dispatcher,
	}
}

// Solicitar creates a PENDENTE request from the owning técnico to
// destino. The repository re-checks state under lock, so a concurrent
// duplicate comes back as ErrPendenteExistente.
func (s *TransferenciaService) Solicitar(ctx context.Context, ator *domain.Usuario, chamadoID, destinoID int64, motivo string) (*domain.Transferencia, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoSolicitarTransferencia) {
		return nil, apperrors.NewForbidden("apenas técnicos solicitam transferências")
	}
	if strings.TrimSpace(motivo) == "" {
		return nil, apperrors.NewValidationError("motivo da transferência é obrigatório", nil)
	}
	if destinoID == ator.ID {
		return nil, apperrors.NewValidationError("não é possível transferir para si mesmo", nil)
	}

	chamado, err := s.chamados.GetByID(ctx, chamadoID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chamado", map[string]any{"id": chamadoID})
		}
		return nil, apperrors.MapError(err)
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoSolicitarTransferencia, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}

	destino, err := s.usuarios.GetByID(ctx, destinoID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("técnico de destino", map[string]any{"id": destinoID})
		}
		return nil, apperrors.MapError(err)
	}
	if destino.Perfil != domain.PerfilTecnicoTI || !destino.Ativo {
		return nil, apperrors.NewValidationError("destino não é um técnico ativo",
			map[string]any{"id": destinoID})
	}

	transferencia := &domain.Transferencia{
		ChamadoID:        chamadoID,
		TecnicoOrigemID:  ator.ID,
		TecnicoDestinoID: destinoID,
		Motivo:           motivo,
	}
	if err := s.transferencias.CriarPendente(ctx, transferencia); err != nil {
		switch {
		case errors.Is(err, repository.ErrPendenteExistente):
			return nil, apperrors.NewInvalidState("já existe uma transferência pendente para este chamado", nil)
		case errors.Is(err, repository.ErrEstadoInvalido):
			return nil, apperrors.NewInvalidState("chamado não está mais em estado transferível", nil)
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.registrarHistorico(ctx, chamadoID, &ator.ID, map[string]any{
		"acao":    "SOLICITADA",
		"destino": destinoID,
	})
	s.publicar(ctx, events.EventTransferenciaSolicitada, chamado, ator, events.TransferenciaSolicitadaPayload{
		TransferenciaID:  transferencia.ID,
		TecnicoOrigemID:  ator.ID,
		TecnicoDestinoID: destinoID,
		Motivo:           motivo,
	})
	return transferencia, nil
}

// Responder accepts or refuses a PENDENTE request. Only the destino
// técnico responds; acceptance swaps the chamado's responsible in the
// same transaction. A request that is no longer pending behaves as if
// it does not exist.
func (s *TransferenciaService) Responder(ctx context.Context, ator *domain.Usuario, transferenciaID int64, aceitar bool, motivoRecusa *string) (*domain.Transferencia, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoResponderTransferencia) {
		return nil, apperrors.NewForbidden("apenas técnicos respondem transferências")
	}

	transferencia, err := s.transferencias.GetByID(ctx, transferenciaID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("transferência", map[string]any{"id": transferenciaID})
		}
		return nil, apperrors.MapError(err)
	}
	if transferencia.TecnicoDestinoID != ator.ID {
		return nil, apperrors.NewForbidden("apenas o técnico de destino responde a solicitação")
	}
	if !transferencia.Pendente() {
		return nil, apperrors.NewNotFound("transferência pendente", map[string]any{"id": transferenciaID})
	}

	resolucao := repository.Resolucao{Status: domain.TransferenciaRecusada, MotivoRecusa: motivoRecusa}
	if aceitar {
		resolucao = repository.Resolucao{Status: domain.TransferenciaAceita, NovoResponsavelID: &ator.ID}
	}

	resolvida, err := s.transferencias.Resolver(ctx, transferenciaID, resolucao)
	if err != nil {
		if errors.Is(err, repository.ErrNaoPendente) {
			return nil, apperrors.NewNotFound("transferência pendente", map[string]any{"id": transferenciaID})
		}
		return nil, apperrors.MapError(err)
	}

	chamado, err := s.chamados.GetByID(ctx, resolvida.ChamadoID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if aceitar {
		s.registrarHistorico(ctx, chamado.ID, &ator.ID, map[string]any{
			"acao":   "ACEITA",
			"origem": resolvida.TecnicoOrigemID,
		})
	} else {
		s.registrarHistorico(ctx, chamado.ID, &ator.ID, map[string]any{
			"acao": "RECUSADA",
		})
	}
	s.publicar(ctx, events.EventTransferenciaRespondida, chamado, ator, events.TransferenciaRespondidaPayload{
		TransferenciaID:  resolvida.ID,
		Aceita:           aceitar,
		TecnicoOrigemID:  resolvida.TecnicoOrigemID,
		TecnicoDestinoID: resolvida.TecnicoDestinoID,
		MotivoRecusa:     resolvida.MotivoRecusa,
	})
	return resolvida, nil
}

// Cancelar withdraws a PENDENTE request. Only the origem técnico
// cancels, and only while the request is still pending.
func (s *TransferenciaService) Cancelar(ctx context.Context, ator *domain.Usuario, transferenciaID int64) (*domain.Transferencia, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoCancelarTransferencia) {
		return nil, apperrors.NewForbidden("apenas técnicos cancelam transferências")
	}

	transferencia, err := s.transferencias.GetByID(ctx, transferenciaID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("transferência", map[string]any{"id": transferenciaID})
		}
		return nil, apperrors.MapError(err)
	}
	if transferencia.TecnicoOrigemID != ator.ID {
		return nil, apperrors.NewForbidden("apenas o técnico solicitante cancela a solicitação")
	}
	if !transferencia.Pendente() {
		return nil, apperrors.NewInvalidState("transferência já foi respondida ou cancelada", nil)
	}

	resolvida, err := s.transferencias.Resolver(ctx, transferenciaID, repository.Resolucao{
		Status: domain.TransferenciaCancelada,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNaoPendente) {
			return nil, apperrors.NewInvalidState("transferência já foi respondida ou cancelada", nil)
		}
		return nil, apperrors.MapError(err)
	}

	chamado, err := s.chamados.GetByID(ctx, resolvida.ChamadoID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.registrarHistorico(ctx, chamado.ID, &ator.ID, map[string]any{"acao": "CANCELADA"})
	s.publicar(ctx, events.EventTransferenciaCancelada, chamado, ator, events.TransferenciaCanceladaPayload{
		TransferenciaID:  resolvida.ID,
		TecnicoOrigemID:  resolvida.TecnicoOrigemID,
		TecnicoDestinoID: resolvida.TecnicoDestinoID,
	})
	return resolvida, nil
}

// MinhasPendencias lists PENDENTE requests addressed to the técnico.
func (s *TransferenciaService) MinhasPendencias(ctx context.Context, ator *domain.Usuario) ([]domain.Transferencia, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoResponderTransferencia) {
		return nil, apperrors.NewForbidden("apenas técnicos possuem pendências de transferência")
	}
	lista, err := s.transferencias.ListPendentesParaTecnico(ctx, ator.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lista, nil
}

// Enviadas lists every request the técnico originated, newest first.
func (s *TransferenciaService) Enviadas(ctx context.Context, ator *domain.Usuario, page, size int) ([]domain.Transferencia, int64, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoSolicitarTransferencia) {
		return nil, 0, apperrors.NewForbidden("apenas técnicos consultam transferências enviadas")
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	lista, total, err := s.transferencias.ListEnviadasPorTecnico(ctx, ator.ID, size, page*size)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lista, total, nil
}

func (s *TransferenciaService) registrarHistorico(ctx context.Context, chamadoID int64, atorID *int64, detalhes map[string]any) {
	_ = s.historico.Create(ctx, &domain.HistoricoEvento{
		ChamadoID: chamadoID,
		AtorID:    atorID,
		Tipo:      domain.HistoricoTransferencia,
		Detalhes:  detalhes,
	})
}

func (s *TransferenciaService) publicar(ctx context.Context, tipo events.EventType, chamado *domain.Chamado, ator *domain.Usuario, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      tipo,
		ChamadoID: chamado.ID,
		Protocolo: chamado.Protocolo,
		Ator:      events.Ator{UsuarioID: ator.ID, Perfil: ator.Perfil},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
