package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/policy"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// UsuarioService handles authentication and user management.
type UsuarioService struct {
	usuarios   repository.UsuarioRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// UsuarioDependencies bundles collaborators for the service.
type UsuarioDependencies struct {
	UsuarioRepo repository.UsuarioRepository
	Tokens      *auth.TokenManager
	BcryptCost  int
}

// NewUsuarioService constructs the service.
func NewUsuarioService(deps UsuarioDependencies) *UsuarioService {
	return &UsuarioService{
		usuarios:   deps.UsuarioRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
	}
}

// LoginResult carries the issued token and its subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Usuario   *domain.Usuario
}

// Login authenticates by email and password. Failures are deliberately
// indistinguishable between unknown email and wrong password.
func (s *UsuarioService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	usuario, err := s.usuarios.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("credenciais inválidas")
		}
		return nil, apperrors.MapError(err)
	}
	if !usuario.Ativo {
		return nil, apperrors.NewUnauthorized("credenciais inválidas")
	}
	if err := auth.VerificarSenha(usuario.SenhaHash, senha); err != nil {
		return nil, apperrors.NewUnauthorized("credenciais inválidas")
	}

	token, expiresAt, err := s.tokens.GenerateToken(usuario)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Usuario: usuario}, nil
}

// RegistrarInput describes user creation payload.
type RegistrarInput struct {
	Nome      string
	Email     string
	Telefone  string
	Senha     string
	Perfil    domain.Perfil
	EmpresaID *int64
}

// Registrar creates a user. ADMIN creates any profile; ADMIN_EMPRESA
// only creates USUARIO accounts inside its own company.
func (s *UsuarioService) Registrar(ctx context.Context, ator *domain.Usuario, input RegistrarInput) (*domain.Usuario, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoGerenciarUsuarios) {
		return nil, apperrors.NewForbidden("perfil sem permissão para gerenciar usuários")
	}
	if strings.TrimSpace(input.Nome) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.NewValidationError("nome e email são obrigatórios", nil)
	}
	if len(input.Senha) < 8 {
		return nil, apperrors.NewValidationError("senha deve ter ao menos 8 caracteres", nil)
	}
	if !domain.PerfilValido(input.Perfil) {
		return nil, apperrors.NewValidationError("perfil inválido",
			map[string]any{"perfil": string(input.Perfil)})
	}

	empresaID := input.EmpresaID
	if ator.Perfil == domain.PerfilAdminEmpresa {
		if input.Perfil != domain.PerfilUsuario {
			return nil, apperrors.NewForbidden("administrador de empresa só cria contas de usuário")
		}
		empresaID = ator.EmpresaID
	}

	if _, err := s.usuarios.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email já cadastrado", map[string]any{"email": input.Email})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashSenha(input.Senha, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	usuario := &domain.Usuario{
		Nome:      strings.TrimSpace(input.Nome),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Telefone:  input.Telefone,
		SenhaHash: hash,
		Perfil:    input.Perfil,
		Ativo:     true,
		EmpresaID: empresaID,
	}
	if err := s.usuarios.Create(ctx, usuario); err != nil {
		return nil, apperrors.MapError(err)
	}
	return usuario, nil
}

// ListarTecnicos serves the transfer-destination picker.
func (s *UsuarioService) ListarTecnicos(ctx context.Context, ator *domain.Usuario, search *string) ([]domain.Usuario, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoListarTecnicos) {
		return nil, apperrors.NewForbidden("perfil sem permissão para listar técnicos")
	}
	perfil := domain.PerfilTecnicoTI
	ativo := true
	lista, err := s.usuarios.List(ctx, repository.UsuarioFilter{
		Perfil: &perfil,
		Ativo:  &ativo,
		Search: search,
		Limit:  50,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lista, nil
}
