package dto

import (
	"time"

	"github.com/suporteti/chamado-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Usuario   UsuarioResponse `json:"usuario"`
}

// RegistrarUsuarioRequest payload.
type RegistrarUsuarioRequest struct {
	Nome      string        `json:"nome"`
	Email     string        `json:"email"`
	Telefone  string        `json:"telefone"`
	Senha     string        `json:"senha"`
	Perfil    domain.Perfil `json:"perfil"`
	EmpresaID *int64        `json:"empresaId"`
}

// UsuarioResponse never exposes the password hash.
type UsuarioResponse struct {
	ID        int64         `json:"id"`
	Nome      string        `json:"nome"`
	Email     string        `json:"email"`
	Telefone  string        `json:"telefone,omitempty"`
	Perfil    domain.Perfil `json:"perfil"`
	Ativo     bool          `json:"ativo"`
	EmpresaID *int64        `json:"empresaId,omitempty"`
}
