package service

import (
	"context"
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

// ChatService handles the conversation thread of a chamado.
type ChatService struct {
	mensagens  repository.ChatRepository
	chamados   repository.ChamadoRepository
	dispatcher events.Dispatcher
}

// ChatDependencies bundles repositories for the chat service.
type ChatDependencies struct {
	ChatRepo    repository.ChatRepository
	ChamadoRepo repository.ChamadoRepository
	Dispatcher  events.Dispatcher
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		mensagens:  deps.ChatRepo,
		chamados:   deps.ChamadoRepo,
		dispatcher: deps.Dispatcher,
	}
}

// EnviarInput describes one outgoing message. VisivelCliente=false marks
// a technician internal note; requester messages are always visible.
type EnviarInput struct {
	Conteudo       string
	VisivelCliente bool
}

// Enviar appends a message while the chat window is open.
func (s *ChatService) Enviar(ctx context.Context, ator *domain.Usuario, chamadoID int64, input EnviarInput) (*domain.ChatMensagem, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoEnviarMensagem) {
		return nil, apperrors.NewForbidden("perfil sem permissão para enviar mensagens")
	}
	if strings.TrimSpace(input.Conteudo) == "" {
		return nil, apperrors.NewValidationError("conteúdo da mensagem é obrigatório", nil)
	}

	chamado, err := s.chamados.GetByID(ctx, chamadoID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chamado", map[string]any{"id": chamadoID})
		}
		return nil, apperrors.MapError(err)
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoEnviarMensagem, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}

	visivel := input.VisivelCliente
	if ator.Perfil == domain.PerfilUsuario || ator.Perfil == domain.PerfilAdminEmpresa {
		// requester messages never become internal notes
		visivel = true
	}

	mensagem := &domain.ChatMensagem{
		ChamadoID:       chamadoID,
		RemetenteID:     ator.ID,
		RemetenteNome:   ator.Nome,
		RemetentePerfil: ator.Perfil,
		Conteudo:        input.Conteudo,
		VisivelCliente:  visivel,
	}
	if err := s.mensagens.Create(ctx, mensagem); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publicar(ctx, chamado, ator, events.MensagemEnviadaPayload{
		MensagemID:     mensagem.ID,
		RemetenteID:    ator.ID,
		DestinatarioID: s.destinatario(chamado, ator),
		VisivelCliente: visivel,
	})
	return mensagem, nil
}

// Listar returns the thread visible to the actor. Requesters never see
// internal notes.
func (s *ChatService) Listar(ctx context.Context, ator *domain.Usuario, chamadoID int64) ([]domain.ChatMensagem, error) {
	chamado, err := s.chamados.GetByID(ctx, chamadoID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chamado", map[string]any{"id": chamadoID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.PodeVerChamado(ator, chamado) {
		return nil, apperrors.NewForbidden("sem acesso a este chamado")
	}

	incluirPrivadas := ator.Perfil == domain.PerfilTecnicoTI || ator.Perfil == domain.PerfilAdmin
	lista, err := s.mensagens.ListByChamado(ctx, chamadoID, incluirPrivadas)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lista, nil
}

// destinatario resolves the conversation counterpart: requester messages
// go to the responsible técnico, técnico messages go to the requester.
func (s *ChatService) destinatario(chamado *domain.Chamado, ator *domain.Usuario) int64 {
	switch ator.Perfil {
	case domain.PerfilUsuario, domain.PerfilAdminEmpresa:
		if chamado.TecnicoResponsavelID != nil {
			return *chamado.TecnicoResponsavelID
		}
		return 0
	default:
		return chamado.SolicitanteID
	}
}

func (s *ChatService) publicar(ctx context.Context, chamado *domain.Chamado, ator *domain.Usuario, payload events.MensagemEnviadaPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMensagemEnviada,
		ChamadoID: chamado.ID,
		Protocolo: chamado.Protocolo,
		Ator:      events.Ator{UsuarioID: ator.ID, Perfil: ator.Perfil},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
