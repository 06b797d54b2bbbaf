package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
	"github.com/suporteti/chamado-service/internal/notify"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// NotificacaoService persists notifications derived from domain events
// and serves the recipient-facing inbox. The unread counter is cached
// in Redis and invalidated on every write; the service degrades to
// counting in Postgres when Redis is unavailable.
type NotificacaoService struct {
	notificacoes repository.NotificacaoRepository
	dispatcher   events.Dispatcher
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NotificacaoDependencies bundles collaborators for the service.
type NotificacaoDependencies struct {
	NotificacaoRepo repository.NotificacaoRepository
	Dispatcher      events.Dispatcher
	Cache           *redis.Client
	CacheTTL        time.Duration
	Logger          *zap.Logger
}

// NewNotificacaoService constructs the service.
func NewNotificacaoService(deps NotificacaoDependencies) *NotificacaoService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &NotificacaoService{
		notificacoes: deps.NotificacaoRepo,
		dispatcher:   deps.Dispatcher,
		cache:        deps.Cache,
		cacheTTL:     ttl,
		logger:       logger,
	}
}

// RegisterHandlers subscribes to every event that can produce a
// notification.
func (n *NotificacaoService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, tipo := range []events.EventType{
		events.EventStatusAlterado,
		events.EventChamadoReaberto,
		events.EventMensagemEnviada,
		events.EventTransferenciaSolicitada,
		events.EventTransferenciaRespondida,
		events.EventTransferenciaCancelada,
	} {
		n.dispatcher.Subscribe(tipo, n.handleEvento)
	}
}

// handleEvento materializes one notification per resolved recipient.
func (n *NotificacaoService) handleEvento(ctx context.Context, evento events.Event) error {
	for _, destino := range notify.ParaEvento(evento) {
		notificacao := &domain.Notificacao{
			UsuarioID:        destino.UsuarioID,
			ChamadoID:        evento.ChamadoID,
			ChamadoProtocolo: evento.Protocolo,
			Tipo:             destino.Tipo,
			Titulo:           destino.Titulo,
			Mensagem:         destino.Mensagem,
		}
		if err := n.notificacoes.Create(ctx, notificacao); err != nil {
			n.logger.Error("falha ao gravar notificação",
				zap.Int64("usuario_id", destino.UsuarioID),
				zap.String("event_type", string(evento.Type)),
				zap.Error(err))
			return err
		}
		n.invalidarContador(ctx, destino.UsuarioID)
	}
	return nil
}

// Listar returns the recipient's inbox, newest first.
func (n *NotificacaoService) Listar(ctx context.Context, usuarioID int64, page, size int) ([]domain.Notificacao, int64, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	lista, total, err := n.notificacoes.ListByUsuario(ctx, usuarioID, size, page*size)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lista, total, nil
}

// ContarNaoLidas serves the badge counter, preferring the Redis cache.
func (n *NotificacaoService) ContarNaoLidas(ctx context.Context, usuarioID int64) (int64, error) {
	chave := chaveContador(usuarioID)
	if n.cache != nil {
		if valor, err := n.cache.Get(ctx, chave).Result(); err == nil {
			if count, err := strconv.ParseInt(valor, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := n.notificacoes.CountNaoLidas(ctx, usuarioID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if n.cache != nil {
		if err := n.cache.Set(ctx, chave, count, n.cacheTTL).Err(); err != nil {
			n.logger.Debug("falha ao cachear contador", zap.Error(err))
		}
	}
	return count, nil
}

// MarcarLida flips one notification owned by the recipient.
func (n *NotificacaoService) MarcarLida(ctx context.Context, usuarioID, notificacaoID int64) error {
	if err := n.notificacoes.MarcarLida(ctx, notificacaoID, usuarioID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("notificação", map[string]any{"id": notificacaoID})
		}
		return apperrors.MapError(err)
	}
	n.invalidarContador(ctx, usuarioID)
	return nil
}

// MarcarTodasLidas clears the recipient's unread backlog.
func (n *NotificacaoService) MarcarTodasLidas(ctx context.Context, usuarioID int64) (int64, error) {
	afetadas, err := n.notificacoes.MarcarTodasLidas(ctx, usuarioID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	n.invalidarContador(ctx, usuarioID)
	return afetadas, nil
}

func (n *NotificacaoService) invalidarContador(ctx context.Context, usuarioID int64) {
	if n.cache == nil {
		return
	}
	if err := n.cache.Del(ctx, chaveContador(usuarioID)).Err(); err != nil {
		n.logger.Debug("falha ao invalidar contador", zap.Error(err))
	}
}

func chaveContador(usuarioID int64) string {
	return fmt.Sprintf("notificacoes:nao_lidas:%d", usuarioID)
}
