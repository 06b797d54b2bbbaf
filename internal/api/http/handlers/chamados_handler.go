package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/suporteti/chamado-service/internal/api/dto"
	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/service"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// ChamadosHandler exposes chamado lifecycle and conversation endpoints.
type ChamadosHandler struct {
	chamados *service.ChamadoService
	chat     *service.ChatService
}

// NewChamadosHandler constructs handler.
func NewChamadosHandler(chamadoService *service.ChamadoService, chatService *service.ChatService) *ChamadosHandler {
	return &ChamadosHandler{chamados: chamadoService, chat: chatService}
}

// Abrir handles POST /chamado.
func (h *ChamadosHandler) Abrir(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	var req dto.AbrirChamadoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	chamado, err := h.chamados.Abrir(c.Context(), principal.Usuario, service.AbrirInput{
		Titulo:     req.Titulo,
		Descricao:  req.Descricao,
		Categoria:  req.Categoria,
		Prioridade: req.Prioridade,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// Buscar handles GET /chamado/:id.
func (h *ChamadosHandler) Buscar(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	chamado, err := h.chamados.Buscar(c.Context(), principal.Usuario, chamadoID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// Editar handles PUT /chamado/:id.
func (h *ChamadosHandler) Editar(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.EditarChamadoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	chamado, err := h.chamados.Editar(c.Context(), principal.Usuario, chamadoID, service.EditarInput{
		Titulo:     req.Titulo,
		Descricao:  req.Descricao,
		Categoria:  req.Categoria,
		Prioridade: req.Prioridade,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// Listar handles GET /chamado/lista.
func (h *ChamadosHandler) Listar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	input := parseListarQuery(c)
	lista, total, err := h.chamados.Listar(c.Context(), principal.Usuario, input)
	if err != nil {
		return err
	}
	return c.JSON(paginaDeChamados(lista, input, total))
}

// ListarAtendimentos handles GET /chamado/tecnico.
func (h *ChamadosHandler) ListarAtendimentos(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	input := parseListarQuery(c)
	lista, total, err := h.chamados.ListarAtendimentos(c.Context(), principal.Usuario, input)
	if err != nil {
		return err
	}
	return c.JSON(paginaDeChamados(lista, input, total))
}

// AlterarStatus handles PATCH /chamado/:id/status.
func (h *ChamadosHandler) AlterarStatus(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.AlterarStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if !domain.StatusValido(req.Status) {
		return apperrors.NewValidationError("status inválido", map[string]any{"status": string(req.Status)})
	}

	chamado, err := h.chamados.AlterarStatus(c.Context(), principal.Usuario, chamadoID, service.AlterarStatusInput{
		Para:           req.Status,
		Observacao:     req.Observacao,
		VisivelCliente: req.VisivelCliente,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// ProximosStatus handles GET /chamado/:id/proximos-status.
func (h *ChamadosHandler) ProximosStatus(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	proximos, err := h.chamados.ProximosStatus(c.Context(), principal.Usuario, chamadoID)
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(proximos))
	for _, status := range proximos {
		items = append(items, fiber.Map{
			"status": status,
			"rotulo": domain.RotuloStatus(status),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Reabrir handles POST /chamado/:id/reabrir.
func (h *ChamadosHandler) Reabrir(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.ReabrirChamadoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	chamado, err := h.chamados.Reabrir(c.Context(), principal.Usuario, chamadoID, req.Motivo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// Avaliar handles POST /chamado/:id/avaliar.
func (h *ChamadosHandler) Avaliar(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.AvaliarChamadoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	chamado, err := h.chamados.Avaliar(c.Context(), principal.Usuario, chamadoID, req.Nota, req.Comentario)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": chamadoResponse(chamado)})
}

// Historico handles GET /chamado/:id/historico.
func (h *ChamadosHandler) Historico(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	eventos, err := h.chamados.Historico(c.Context(), principal.Usuario, chamadoID)
	if err != nil {
		return err
	}
	items := make([]dto.HistoricoResponse, 0, len(eventos))
	for _, evento := range eventos {
		items = append(items, dto.HistoricoResponse{
			ID:       evento.ID,
			AtorID:   evento.AtorID,
			Tipo:     string(evento.Tipo),
			Detalhes: evento.Detalhes,
			CriadoEm: evento.CriadoEm,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// EnviarMensagem handles POST /chamado/:id/mensagens.
func (h *ChamadosHandler) EnviarMensagem(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	var req dto.EnviarMensagemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	visivel := true
	if req.VisivelCliente != nil {
		visivel = *req.VisivelCliente
	}

	mensagem, err := h.chat.Enviar(c.Context(), principal.Usuario, chamadoID, service.EnviarInput{
		Conteudo:       req.Conteudo,
		VisivelCliente: visivel,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": mensagemResponse(mensagem)})
}

// ListarMensagens handles GET /chamado/:id/mensagens.
func (h *ChamadosHandler) ListarMensagens(c *fiber.Ctx) error {
	principal, chamadoID, err := principalEID(c)
	if err != nil {
		return err
	}
	lista, err := h.chat.Listar(c.Context(), principal.Usuario, chamadoID)
	if err != nil {
		return err
	}
	items := make([]dto.MensagemResponse, 0, len(lista))
	for i := range lista {
		items = append(items, mensagemResponse(&lista[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func principalEID(c *fiber.Ctx) (*auth.Principal, int64, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, 0, apperrors.NewUnauthorized("autenticação necessária")
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, 0, apperrors.NewValidationError("identificador inválido", nil)
	}
	return principal, id, nil
}

func parseListarQuery(c *fiber.Ctx) service.ListarInput {
	input := service.ListarInput{
		Page: c.QueryInt("page", 0),
		Size: c.QueryInt("size", 20),
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		status := domain.StatusChamado(strings.ToUpper(strings.TrimSpace(raw)))
		if domain.StatusValido(status) {
			input.Statuses = append(input.Statuses, status)
		}
	}
	for _, raw := range strings.Split(c.Query("prioridade"), ",") {
		prioridade := domain.Prioridade(strings.ToUpper(strings.TrimSpace(raw)))
		if domain.PrioridadeValida(prioridade) {
			input.Prioridades = append(input.Prioridades, prioridade)
		}
	}
	if termo := c.Query("search"); termo != "" {
		input.Search = &termo
	}
	return input
}

func paginaDeChamados(lista []domain.Chamado, input service.ListarInput, total int64) dto.Page[dto.ChamadoResponse] {
	items := make([]dto.ChamadoResponse, 0, len(lista))
	for i := range lista {
		items = append(items, chamadoResponse(&lista[i]))
	}
	size := input.Size
	if size <= 0 || size > 100 {
		size = 20
	}
	page := input.Page
	if page < 0 {
		page = 0
	}
	return dto.NewPage(items, page, size, total)
}

func chamadoResponse(chamado *domain.Chamado) dto.ChamadoResponse {
	return dto.ChamadoResponse{
		ID:                   chamado.ID,
		Protocolo:            chamado.Protocolo,
		SolicitanteID:        chamado.SolicitanteID,
		EmpresaID:            chamado.EmpresaID,
		TecnicoResponsavelID: chamado.TecnicoResponsavelID,
		Titulo:               chamado.Titulo,
		Descricao:            chamado.Descricao,
		Categoria:            chamado.Categoria,
		Status:               string(chamado.Status),
		StatusRotulo:         domain.RotuloStatus(chamado.Status),
		Prioridade:           chamado.Prioridade,
		PrioridadeRotulo:     domain.RotuloPrioridade(chamado.Prioridade),
		AvaliacaoNota:        chamado.AvaliacaoNota,
		AvaliacaoComentario:  chamado.AvaliacaoComentario,
		CriadoEm:             chamado.CriadoEm,
		AtualizadoEm:         chamado.AtualizadoEm,
		ConcluidoEm:          chamado.ConcluidoEm,
	}
}

func mensagemResponse(mensagem *domain.ChatMensagem) dto.MensagemResponse {
	return dto.MensagemResponse{
		ID:              mensagem.ID,
		ChamadoID:       mensagem.ChamadoID,
		RemetenteID:     mensagem.RemetenteID,
		RemetenteNome:   mensagem.RemetenteNome,
		RemetentePerfil: mensagem.RemetentePerfil,
		Conteudo:        mensagem.Conteudo,
		VisivelCliente:  mensagem.VisivelCliente,
		EnviadoEm:       mensagem.EnviadoEm,
	}
}
