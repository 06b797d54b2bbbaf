package domain

import "time"

// Perfil enumerates access profiles. Perfil é imutável no escopo deste
// serviço; alterações de perfil são operação administrativa externa.
type Perfil string

const (
	PerfilAdmin        Perfil = "ADMIN"
	PerfilAdminEmpresa Perfil = "ADMIN_EMPRESA"
	PerfilTecnicoTI    Perfil = "TECNICO_TI"
	PerfilUsuario      Perfil = "USUARIO"
)

// PerfilValido reports whether p is one of the known profiles.
func PerfilValido(p Perfil) bool {
	switch p {
	case PerfilAdmin, PerfilAdminEmpresa, PerfilTecnicoTI, PerfilUsuario:
		return true
	}
	return false
}

// Usuario is the domain model for every actor of the system.
type Usuario struct {
	ID           int64
	Nome         string
	Email        string
	Telefone     string
	SenhaHash    string
	Perfil       Perfil
	Ativo        bool
	EmpresaID    *int64
	CriadoEm     time.Time
	AtualizadoEm time.Time
}
