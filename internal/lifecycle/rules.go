// Package lifecycle holds the pure decision rules for the chamado state
// machine. It depends only on the domain model: nothing here touches
// storage, transport or clocks, so every rule is trivially testable and
// the same table backs the API layer and the negotiation engine.
package lifecycle

import "github.com/suporteti/chamado-service/internal/domain"

// Acao enumerates the mutating actions submitted against a chamado.
type Acao string

const (
	AcaoEditar                 Acao = "EDITAR"
	AcaoAlterarStatus          Acao = "ALTERAR_STATUS"
	AcaoEnviarMensagem         Acao = "ENVIAR_MENSAGEM"
	AcaoSolicitarTransferencia Acao = "SOLICITAR_TRANSFERENCIA"
	AcaoReabrir                Acao = "REABRIR"
	AcaoAvaliar                Acao = "AVALIAR"
)

// Motivo identifies why a decision denied an action. Callers translate
// these into the user-facing error taxonomy: status/ownership
// preconditions map to InvalidState, actor mismatches map to Forbidden.
type Motivo string

const (
	MotivoStatusInvalido    Motivo = "STATUS_INVALIDO"
	MotivoTransicaoInvalida Motivo = "TRANSICAO_INVALIDA"
	MotivoPerfilInvalido    Motivo = "PERFIL_INVALIDO"
	MotivoNaoSolicitante    Motivo = "NAO_SOLICITANTE"
	MotivoNaoResponsavel    Motivo = "NAO_RESPONSAVEL"
	MotivoSemResponsavel    Motivo = "SEM_RESPONSAVEL"
)

// Ator carries explicit actor identity into every decision; the engine
// never consults ambient state.
type Ator struct {
	ID     int64
	Perfil domain.Perfil
}

// Decisao is the structured outcome of a rule evaluation. Business-rule
// denials come back as Permitido=false with a Motivo, never as errors.
type Decisao struct {
	Permitido bool
	Motivo    Motivo
}

func permitido() Decisao           { return Decisao{Permitido: true} }
func negado(motivo Motivo) Decisao { return Decisao{Permitido: false, Motivo: motivo} }

// transicoes is the complete status graph. RESOLVIDO->CONCLUIDO and
// RESOLVIDO->REABERTO are requester actions (avaliar/reabrir) and are
// excluded from the technician-driven set below.
var transicoes = map[domain.StatusChamado][]domain.StatusChamado{
	domain.StatusAberto:            {domain.StatusTriagem},
	domain.StatusTriagem:           {domain.StatusEmAtendimento},
	domain.StatusEmAtendimento:     {domain.StatusAguardandoCliente, domain.StatusAguardandoPeca, domain.StatusResolvido},
	domain.StatusAguardandoCliente: {domain.StatusEmAtendimento, domain.StatusResolvido},
	domain.StatusAguardandoPeca:    {domain.StatusEmAtendimento, domain.StatusResolvido},
	domain.StatusResolvido:         {domain.StatusConcluido, domain.StatusReaberto},
	domain.StatusReaberto:          {domain.StatusEmAtendimento},
	domain.StatusConcluido:         {},
}

// statusEdicao is the window in which the requester may still mutate
// titulo/descricao/prioridade/anexos.
var statusEdicao = map[domain.StatusChamado]bool{
	domain.StatusAberto:   true,
	domain.StatusTriagem:  true,
	domain.StatusReaberto: true,
}

// statusChat is the window in which chat and internal notes are open.
var statusChat = map[domain.StatusChamado]bool{
	domain.StatusEmAtendimento:     true,
	domain.StatusAguardandoCliente: true,
	domain.StatusAguardandoPeca:    true,
	domain.StatusReaberto:          true,
}

// TransicaoValida reports whether the edge de->para exists in the graph,
// regardless of who drives it.
func TransicaoValida(de, para domain.StatusChamado) bool {
	for _, candidato := range transicoes[de] {
		if candidato == para {
			return true
		}
	}
	return false
}

// TransicaoTecnico reports whether de->para may be driven by a
// technician status change. The two edges out of RESOLVIDO belong to the
// requester and are rejected here.
func TransicaoTecnico(de, para domain.StatusChamado) bool {
	if de == domain.StatusResolvido {
		return false
	}
	return TransicaoValida(de, para)
}

// ProximosStatus lists the reachable states from de.
func ProximosStatus(de domain.StatusChamado) []domain.StatusChamado {
	destinos := transicoes[de]
	out := make([]domain.StatusChamado, len(destinos))
	copy(out, destinos)
	return out
}

// PodeEditar reports whether the edit window is open for the status.
func PodeEditar(status domain.StatusChamado) bool {
	return statusEdicao[status]
}

// PodeConversar reports whether chat/internal notes are open.
func PodeConversar(status domain.StatusChamado) bool {
	return statusChat[status]
}

// Avaliar decides whether ator may perform acao on the chamado in its
// current state. Transition targets for AcaoAlterarStatus are validated
// separately via TransicaoTecnico, since the target is part of the
// request payload rather than of the action itself.
func Avaliar(chamado *domain.Chamado, acao Acao, ator Ator) Decisao {
	switch acao {
	case AcaoEditar:
		if ator.Perfil != domain.PerfilUsuario && ator.Perfil != domain.PerfilAdminEmpresa && ator.Perfil != domain.PerfilAdmin {
			return negado(MotivoPerfilInvalido)
		}
		if ator.Perfil != domain.PerfilAdmin && chamado.SolicitanteID != ator.ID {
			return negado(MotivoNaoSolicitante)
		}
		if !PodeEditar(chamado.Status) {
			return negado(MotivoStatusInvalido)
		}
		return permitido()

	case AcaoAlterarStatus:
		if ator.Perfil != domain.PerfilTecnicoTI && ator.Perfil != domain.PerfilAdmin {
			return negado(MotivoPerfilInvalido)
		}
		if len(transicoes[chamado.Status]) == 0 {
			return negado(MotivoStatusInvalido)
		}
		if chamado.Status == domain.StatusResolvido {
			// only the requester moves a resolved chamado
			return negado(MotivoStatusInvalido)
		}
		if chamado.TemResponsavel() && ator.Perfil == domain.PerfilTecnicoTI && !chamado.ResponsavelE(ator.ID) {
			return negado(MotivoNaoResponsavel)
		}
		return permitido()

	case AcaoEnviarMensagem:
		if !PodeConversar(chamado.Status) {
			return negado(MotivoStatusInvalido)
		}
		switch ator.Perfil {
		case domain.PerfilUsuario, domain.PerfilAdminEmpresa:
			if chamado.SolicitanteID != ator.ID {
				return negado(MotivoNaoSolicitante)
			}
		case domain.PerfilTecnicoTI:
			if !chamado.ResponsavelE(ator.ID) {
				return negado(MotivoNaoResponsavel)
			}
		case domain.PerfilAdmin:
		default:
			return negado(MotivoPerfilInvalido)
		}
		return permitido()

	case AcaoSolicitarTransferencia:
		if ator.Perfil != domain.PerfilTecnicoTI {
			return negado(MotivoPerfilInvalido)
		}
		if !chamado.TemResponsavel() {
			return negado(MotivoSemResponsavel)
		}
		if !chamado.ResponsavelE(ator.ID) {
			return negado(MotivoNaoResponsavel)
		}
		if chamado.Status != domain.StatusAberto {
			return negado(MotivoStatusInvalido)
		}
		return permitido()

	case AcaoReabrir:
		if ator.Perfil != domain.PerfilUsuario && ator.Perfil != domain.PerfilAdminEmpresa {
			return negado(MotivoPerfilInvalido)
		}
		if chamado.SolicitanteID != ator.ID {
			return negado(MotivoNaoSolicitante)
		}
		if chamado.Status != domain.StatusResolvido {
			return negado(MotivoStatusInvalido)
		}
		return permitido()

	case AcaoAvaliar:
		if ator.Perfil != domain.PerfilUsuario && ator.Perfil != domain.PerfilAdminEmpresa {
			return negado(MotivoPerfilInvalido)
		}
		if chamado.SolicitanteID != ator.ID {
			return negado(MotivoNaoSolicitante)
		}
		if chamado.Status != domain.StatusResolvido {
			return negado(MotivoStatusInvalido)
		}
		return permitido()
	}
	// unknown action is a programmer error, not a business denial
	panic("lifecycle: ação desconhecida " + string(acao))
}
