package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Usuario *domain.Usuario
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	usuarios repository.UsuarioRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, usuarios repository.UsuarioRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, usuarios: usuarios}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("cabeçalho de autorização ausente")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("cabeçalho de autorização inválido")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("token inválido")
	}

	usuarioID, err := claims.UsuarioID()
	if err != nil {
		return apperrors.NewUnauthorized("token inválido")
	}

	usuario, err := m.usuarios.GetByID(c.Context(), usuarioID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("usuário não encontrado")
		}
		return apperrors.MapError(err)
	}
	if !usuario.Ativo {
		return apperrors.NewUnauthorized("usuário desativado")
	}

	c.Locals(principalKey, &Principal{Usuario: usuario})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
