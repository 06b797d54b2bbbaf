package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/suporteti/chamado-service/internal/api/dto"
	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/service"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// TransferenciasHandler exposes the transfer negotiation endpoints.
type TransferenciasHandler struct {
	transferencias *service.TransferenciaService
}

// NewTransferenciasHandler constructs handler.
func NewTransferenciasHandler(transferenciaService *service.TransferenciaService) *TransferenciasHandler {
	return &TransferenciasHandler{transferencias: transferenciaService}
}

// Solicitar handles POST /chamado/:id/solicitar-transferencia.
func (h *TransferenciasHandler) Solicitar(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.SolicitarTransferenciaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.TecnicoDestinoID <= 0 {
		return apperrors.NewValidationError("tecnicoDestinoId é obrigatório", nil)
	}

	transferencia, err := h.transferencias.Solicitar(c.Context(), principal.Usuario, chamadoID, req.TecnicoDestinoID, req.Motivo)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transferenciaResponse(transferencia)})
}

// Responder handles POST /transferencia/:id/responder.
func (h *TransferenciasHandler) Responder(c *fiber.Ctx) error {
	principal, transferenciaID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.ResponderTransferenciaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	transferencia, err := h.transferencias.Responder(c.Context(), principal.Usuario, transferenciaID, req.Aceito, req.MotivoRecusa)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transferenciaResponse(transferencia)})
}

// Cancelar handles POST /transferencia/:id/cancelar.
func (h *TransferenciasHandler) Cancelar(c *fiber.Ctx) error {
	principal, transferenciaID, err := principalEID(c)
	if err != nil {
		return err
	}
	transferencia, err := h.transferencias.Cancelar(c.Context(), principal.Usuario, transferenciaID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transferenciaResponse(transferencia)})
}

// MinhasPendencias handles GET /transferencia/minhas-pendencias.
func (h *TransferenciasHandler) MinhasPendencias(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	lista, err := h.transferencias.MinhasPendencias(c.Context(), principal.Usuario)
	if err != nil {
		return err
	}
	items := make([]dto.TransferenciaResponse, 0, len(lista))
	for i := range lista {
		items = append(items, transferenciaResponse(&lista[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Enviadas handles GET /transferencia/enviadas.
func (h *TransferenciasHandler) Enviadas(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	lista, total, err := h.transferencias.Enviadas(c.Context(), principal.Usuario, page, size)
	if err != nil {
		return err
	}
	items := make([]dto.TransferenciaResponse, 0, len(lista))
	for i := range lista {
		items = append(items, transferenciaResponse(&lista[i]))
	}
	return c.JSON(dto.NewPage(items, page, size, total))
}

func transferenciaResponse(transferencia *domain.Transferencia) dto.TransferenciaResponse {
	return dto.TransferenciaResponse{
		ID:               transferencia.ID,
		ChamadoID:        transferencia.ChamadoID,
		TecnicoOrigemID:  transferencia.TecnicoOrigemID,
		TecnicoDestinoID: transferencia.TecnicoDestinoID,
		Motivo:           transferencia.Motivo,
		Status:           transferencia.Status,
		MotivoRecusa:     transferencia.MotivoRecusa,
		DataSolicitacao:  transferencia.DataSolicitacao,
		DataResposta:     transferencia.DataResposta,
	}
}
