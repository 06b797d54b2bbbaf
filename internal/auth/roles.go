package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/policy"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// RequirePerfil ensures the principal holds one of the allowed profiles.
func RequirePerfil(allowed ...domain.Perfil) fiber.Handler {
	allowedSet := make(map[domain.Perfil]struct{}, len(allowed))
	for _, perfil := range allowed {
		allowedSet[perfil] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("autenticação necessária")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Usuario.Perfil]; !exists {
			return apperrors.NewForbidden("perfil sem permissão para esta operação")
		}
		return c.Next()
	}
}

// RequireAcao checks the route action against the access table.
func RequireAcao(acao policy.Acao) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("autenticação necessária")
		}
		if !policy.Autorizar(principal.Usuario.Perfil, acao) {
			return apperrors.NewForbidden("perfil sem permissão para esta operação")
		}
		return c.Next()
	}
}
