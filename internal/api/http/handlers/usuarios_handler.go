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

// UsuariosHandler exposes authentication and user management endpoints.
type UsuariosHandler struct {
	usuarios *service.UsuarioService
}

// NewUsuariosHandler constructs handler.
func NewUsuariosHandler(usuarioService *service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{usuarios: usuarioService}
}

// Login handles POST /auth/login.
func (h *UsuariosHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}
	if req.Email == "" || req.Senha == "" {
		return apperrors.NewValidationError("email e senha são obrigatórios", nil)
	}

	resultado, err := h.usuarios.Login(c.Context(), req.Email, req.Senha)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     resultado.Token,
		ExpiresAt: resultado.ExpiresAt,
		Usuario:   usuarioResponse(resultado.Usuario),
	}})
}

// Registrar handles POST /usuario/registrar.
func (h *UsuariosHandler) Registrar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	var req dto.RegistrarUsuarioRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("payload inválido", nil)
	}

	criado, err := h.usuarios.Registrar(c.Context(), principal.Usuario, service.RegistrarInput{
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		Senha:     req.Senha,
		Perfil:    req.Perfil,
		EmpresaID: req.EmpresaID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": usuarioResponse(criado)})
}

// ListarTecnicos handles GET /usuario/tecnicos.
func (h *UsuariosHandler) ListarTecnicos(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	var search *string
	if termo := c.Query("search"); termo != "" {
		search = &termo
	}

	lista, err := h.usuarios.ListarTecnicos(c.Context(), principal.Usuario, search)
	if err != nil {
		return err
	}
	items := make([]dto.UsuarioResponse, 0, len(lista))
	for i := range lista {
		items = append(items, usuarioResponse(&lista[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Me handles GET /usuario/me.
func (h *UsuariosHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("autenticação necessária")
	}
	return c.JSON(fiber.Map{"data": usuarioResponse(principal.Usuario)})
}

func usuarioResponse(usuario *domain.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        usuario.ID,
		Nome:      usuario.Nome,
		Email:     usuario.Email,
		Telefone:  usuario.Telefone,
		Perfil:    usuario.Perfil,
		Ativo:     usuario.Ativo,
		EmpresaID: usuario.EmpresaID,
	}
}
