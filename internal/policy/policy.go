// Package policy is the role-based gate consulted before the lifecycle
// and negotiation engines accept any mutating call. The table below is
// the single source of truth for perfil-to-action authorization; company
// and ownership scoping live in the helpers next to it.
package policy

import "github.com/suporteti/chamado-service/internal/domain"

// Acao enumerates route-level actions gated by perfil.
type Acao string

const (
	AcaoAbrirChamado           Acao = "ABRIR_CHAMADO"
	AcaoEditarChamado          Acao = "EDITAR_CHAMADO"
	AcaoListarChamados         Acao = "LISTAR_CHAMADOS"
	AcaoListarAtendimentos     Acao = "LISTAR_ATENDIMENTOS"
	AcaoAlterarStatus          Acao = "ALTERAR_STATUS"
	AcaoEnviarMensagem         Acao = "ENVIAR_MENSAGEM"
	AcaoSolicitarTransferencia Acao = "SOLICITAR_TRANSFERENCIA"
	AcaoResponderTransferencia Acao = "RESPONDER_TRANSFERENCIA"
	AcaoCancelarTransferencia  Acao = "CANCELAR_TRANSFERENCIA"
	AcaoReabrirChamado         Acao = "REABRIR_CHAMADO"
	AcaoAvaliarChamado         Acao = "AVALIAR_CHAMADO"
	AcaoGerenciarUsuarios      Acao = "GERENCIAR_USUARIOS"
	AcaoListarTecnicos         Acao = "LISTAR_TECNICOS"
)

var tabela = map[Acao]map[domain.Perfil]bool{
	AcaoAbrirChamado: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
		domain.PerfilAdmin:        true,
	},
	AcaoEditarChamado: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
		domain.PerfilAdmin:        true,
	},
	AcaoListarChamados: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
		domain.PerfilAdmin:        true,
	},
	AcaoListarAtendimentos: {
		domain.PerfilTecnicoTI: true,
		domain.PerfilAdmin:     true,
	},
	AcaoAlterarStatus: {
		domain.PerfilTecnicoTI: true,
		domain.PerfilAdmin:     true,
	},
	AcaoEnviarMensagem: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
		domain.PerfilTecnicoTI:    true,
		domain.PerfilAdmin:        true,
	},
	AcaoSolicitarTransferencia: {
		domain.PerfilTecnicoTI: true,
	},
	AcaoResponderTransferencia: {
		domain.PerfilTecnicoTI: true,
	},
	AcaoCancelarTransferencia: {
		domain.PerfilTecnicoTI: true,
	},
	AcaoReabrirChamado: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
	},
	AcaoAvaliarChamado: {
		domain.PerfilUsuario:      true,
		domain.PerfilAdminEmpresa: true,
	},
	AcaoGerenciarUsuarios: {
		domain.PerfilAdminEmpresa: true,
		domain.PerfilAdmin:        true,
	},
	AcaoListarTecnicos: {
		domain.PerfilTecnicoTI: true,
		domain.PerfilAdmin:     true,
	},
}

// Autorizar reports whether the perfil may attempt the action at all.
// Ownership and state checks happen afterwards in the engines.
func Autorizar(perfil domain.Perfil, acao Acao) bool {
	return tabela[acao][perfil]
}

// MesmaEmpresa reports whether both users belong to the same company.
// ADMIN bypasses company scoping entirely.
func MesmaEmpresa(ator *domain.Usuario, empresaID *int64) bool {
	if ator == nil {
		return false
	}
	if ator.Perfil == domain.PerfilAdmin {
		return true
	}
	if ator.EmpresaID == nil || empresaID == nil {
		return false
	}
	return *ator.EmpresaID == *empresaID
}

// PodeVerChamado reports read access: ADMIN sees tudo, ADMIN_EMPRESA sees
// its company, TECNICO_TI sees its own atendimentos, USUARIO sees its own
// chamados.
func PodeVerChamado(ator *domain.Usuario, chamado *domain.Chamado) bool {
	if ator == nil || chamado == nil {
		return false
	}
	switch ator.Perfil {
	case domain.PerfilAdmin:
		return true
	case domain.PerfilAdminEmpresa:
		return chamado.SolicitanteID == ator.ID || MesmaEmpresa(ator, chamado.EmpresaID)
	case domain.PerfilTecnicoTI:
		return chamado.ResponsavelE(ator.ID)
	case domain.PerfilUsuario:
		return chamado.SolicitanteID == ator.ID
	}
	return false
}
