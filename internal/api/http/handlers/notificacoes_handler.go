package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/suporteti/chamado-service/internal/api/dto"
	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/service"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// NotificacoesHandler exposes the recipient inbox endpoints.
type NotificacoesHandler struct {
	notificacoes *service.NotificacaoService
}

// NewNotificacoesHandler constructs handler.
func NewNotificacoesHandler(notificacaoService *service.NotificacaoService) *NotificacoesHandler {
	return &NotificacoesHandler{notificacoes: notificacaoService}
}

// Listar handles GET /notificacao/lista.
func (h *NotificacoesHandler) Listar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	lista, total, err := h.notificacoes.Listar(c.Context(), principal.Usuario.ID, page, size)
	if err != nil {
		return err
	}
	items := make([]dto.NotificacaoResponse, 0, len(lista))
	for i := range lista {
		items = append(items, notificacaoResponse(&lista[i]))
	}
	return c.JSON(dto.NewPage(items, page, size, total))
}

// ContarNaoLidas handles GET /notificacao/nao-lidas/count.
func (h *NotificacoesHandler) ContarNaoLidas(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	count, err := h.notificacoes.ContarNaoLidas(c.Context(), principal.Usuario.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ContadorNaoLidasResponse{Count: count}})
}

// MarcarLida handles PATCH /notificacao/:id/ler.
func (h *NotificacoesHandler) MarcarLida(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("identificador inválido", nil)
	}

	if err := h.notificacoes.MarcarLida(c.Context(), principal.Usuario.ID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarcarTodasLidas handles POST /notificacao/ler-todas.
func (h *NotificacoesHandler) MarcarTodasLidas(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	afetadas, err := h.notificacoes.MarcarTodasLidas(c.Context(), principal.Usuario.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"marcadas": afetadas}})
}

func notificacaoResponse(notificacao *domain.Notificacao) dto.NotificacaoResponse {
	return dto.NotificacaoResponse{
		ID:               notificacao.ID,
		ChamadoID:        notificacao.ChamadoID,
		ChamadoProtocolo: notificacao.ChamadoProtocolo,
		Tipo:             notificacao.Tipo,
		Titulo:           notificacao.Titulo,
		Mensagem:         notificacao.Mensagem,
		Lida:             notificacao.Lida,
		CriadoEm:         notificacao.CriadoEm,
	}
}
