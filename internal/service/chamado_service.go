package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/events"
	"github.com/suporteti/chamado-service/internal/lifecycle"
	"github.com/suporteti/chamado-service/internal/policy"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// ChamadoService coordinates chamado workflows.
type ChamadoService struct {
	chamados       repository.ChamadoRepository
	transferencias repository.TransferenciaRepository
	historico      repository.HistoricoRepository
	dispatcher     events.Dispatcher
}

// ChamadoDependencies bundles repositories for the chamado service.
type ChamadoDependencies struct {
	ChamadoRepo       repository.ChamadoRepository
	TransferenciaRepo repository.TransferenciaRepository
	HistoricoRepo     repository.HistoricoRepository
	Dispatcher        events.Dispatcher
}

// NewChamadoService constructs the service.
func NewChamadoService(deps ChamadoDependencies) *ChamadoService {
	return &ChamadoService{
		chamados:       deps.ChamadoRepo,
		transferencias: deps.TransferenciaRepo,
		historico:      deps.HistoricoRepo,
		dispatcher:     deps.Dispatcher,
	}
}

// AbrirInput describes chamado creation payload.
type AbrirInput struct {
	Titulo     string
	Descricao  string
	Categoria  string
	Prioridade domain.Prioridade
}

// EditarInput describes requester edits inside the edit window. Nil
// fields are left untouched.
type EditarInput struct {
	Titulo     *string
	Descricao  *string
	Categoria  *string
	Prioridade *domain.Prioridade
}

// AlterarStatusInput describes a technician-driven transition.
type AlterarStatusInput struct {
	Para           domain.StatusChamado
	Observacao     string
	VisivelCliente bool
}

// ListarInput describes listing filters accepted from the API.
type ListarInput struct {
	Statuses    []domain.StatusChamado
	Prioridades []domain.Prioridade
	Search      *string
	Page        int
	Size        int
}

func (in ListarInput) limitOffset() (int, int) {
	size := in.Size
	if size <= 0 || size > 100 {
		size = 20
	}
	page := in.Page
	if page < 0 {
		page = 0
	}
	return size, page * size
}

// decisaoParaErro translates a rule denial into the error taxonomy:
// state and ownership preconditions are INVALID_STATE, actor mismatches
// are FORBIDDEN.
func decisaoParaErro(decisao lifecycle.Decisao) error {
	if decisao.Permitido {
		return nil
	}
	switch decisao.Motivo {
	case lifecycle.MotivoPerfilInvalido, lifecycle.MotivoNaoSolicitante, lifecycle.MotivoNaoResponsavel:
		return apperrors.NewForbidden("operação não permitida para este usuário")
	default:
		return apperrors.NewInvalidState("estado do chamado não permite esta operação",
			map[string]any{"motivo": string(decisao.Motivo)})
	}
}

// gerarProtocolo builds the immutable human-facing identifier.
func gerarProtocolo(now time.Time) string {
	sufixo := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("CH-%d-%s", now.Year(), sufixo)
}

// Abrir creates a chamado in ABERTO on behalf of the requester.
func (s *ChamadoService) Abrir(ctx context.Context, solicitante *domain.Usuario, input AbrirInput) (*domain.Chamado, error) {
	if !policy.Autorizar(solicitante.Perfil, policy.AcaoAbrirChamado) {
		return nil, apperrors.NewForbidden("perfil sem permissão para abrir chamados")
	}
	if strings.TrimSpace(input.Titulo) == "" {
		return nil, apperrors.NewValidationError("título é obrigatório", nil)
	}
	if strings.TrimSpace(input.Descricao) == "" {
		return nil, apperrors.NewValidationError("descrição é obrigatória", nil)
	}
	prioridade := input.Prioridade
	if prioridade == "" {
		prioridade = domain.PrioridadeMedia
	}
	if !domain.PrioridadeValida(prioridade) {
		return nil, apperrors.NewValidationError("prioridade inválida",
			map[string]any{"prioridade": string(prioridade)})
	}

	chamado := &domain.Chamado{
		Protocolo:     gerarProtocolo(time.Now()),
		SolicitanteID: solicitante.ID,
		EmpresaID:     solicitante.EmpresaID,
		Titulo:        strings.TrimSpace(input.Titulo),
		Descricao:     input.Descricao,
		Categoria:     input.Categoria,
		Status:        domain.StatusAberto,
		Prioridade:    prioridade,
	}
	if err := s.chamados.Create(ctx, chamado); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publicar(ctx, events.EventChamadoAberto, chamado, solicitante, events.ChamadoAbertoPayload{
		Titulo:     chamado.Titulo,
		Prioridade: chamado.Prioridade,
	})
	return chamado, nil
}

// Editar applies requester edits while the edit window is open.
func (s *ChamadoService) Editar(ctx context.Context, ator *domain.Usuario, chamadoID int64, input EditarInput) (*domain.Chamado, error) {
	chamado, err := s.buscarVisivel(ctx, ator, chamadoID)
	if err != nil {
		return nil, err
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoEditar, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}

	alteracoes := map[string]any{}
	if input.Titulo != nil && strings.TrimSpace(*input.Titulo) != "" {
		chamado.Titulo = strings.TrimSpace(*input.Titulo)
		alteracoes["titulo"] = chamado.Titulo
	}
	if input.Descricao != nil {
		chamado.Descricao = *input.Descricao
		alteracoes["descricao"] = true
	}
	if input.Categoria != nil {
		chamado.Categoria = *input.Categoria
		alteracoes["categoria"] = chamado.Categoria
	}
	if input.Prioridade != nil {
		if !domain.PrioridadeValida(*input.Prioridade) {
			return nil, apperrors.NewValidationError("prioridade inválida",
				map[string]any{"prioridade": string(*input.Prioridade)})
		}
		chamado.Prioridade = *input.Prioridade
		alteracoes["prioridade"] = string(chamado.Prioridade)
	}
	if len(alteracoes) == 0 {
		return chamado, nil
	}

	if err := s.chamados.Update(ctx, chamado); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.registrarHistorico(ctx, chamado.ID, &ator.ID, domain.HistoricoEdicao, alteracoes)
	return chamado, nil
}

// AlterarStatus applies a technician-driven transition. A técnico taking
// an unassigned ABERTO chamado into TRIAGEM becomes its responsible.
func (s *ChamadoService) AlterarStatus(ctx context.Context, ator *domain.Usuario, chamadoID int64, input AlterarStatusInput) (*domain.Chamado, error) {
	chamado, err := s.carregar(ctx, chamadoID)
	if err != nil {
		return nil, err
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoAlterarStatus, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}
	if !lifecycle.TransicaoTecnico(chamado.Status, input.Para) {
		return nil, apperrors.NewInvalidState("transição de status inválida", map[string]any{
			"de":   string(chamado.Status),
			"para": string(input.Para),
		})
	}

	de := chamado.Status
	chamado.Status = input.Para
	if de == domain.StatusAberto && !chamado.TemResponsavel() && ator.Perfil == domain.PerfilTecnicoTI {
		chamado.TecnicoResponsavelID = &ator.ID
	}

	if err := s.chamados.Update(ctx, chamado); err != nil {
		return nil, apperrors.MapError(err)
	}

	detalhes := map[string]any{"de": string(de), "para": string(input.Para)}
	if input.Observacao != "" {
		detalhes["observacao"] = input.Observacao
	}
	s.registrarHistorico(ctx, chamado.ID, &ator.ID, domain.HistoricoStatus, detalhes)

	s.publicar(ctx, events.EventStatusAlterado, chamado, ator, events.StatusAlteradoPayload{
		De:             de,
		Para:           input.Para,
		Observacao:     input.Observacao,
		VisivelCliente: input.VisivelCliente,
		SolicitanteID:  chamado.SolicitanteID,
	})
	return chamado, nil
}

// Reabrir moves a RESOLVIDO chamado back to REABERTO at the requester's
// demand, keeping the responsible technician.
func (s *ChamadoService) Reabrir(ctx context.Context, ator *domain.Usuario, chamadoID int64, motivo string) (*domain.Chamado, error) {
	if strings.TrimSpace(motivo) == "" {
		return nil, apperrors.NewValidationError("motivo da reabertura é obrigatório", nil)
	}

	chamado, err := s.buscarVisivel(ctx, ator, chamadoID)
	if err != nil {
		return nil, err
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoReabrir, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}

	chamado.Status = domain.StatusReaberto
	if err := s.chamados.Update(ctx, chamado); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.registrarHistorico(ctx, chamado.ID, &ator.ID, domain.HistoricoReabertura, map[string]any{"motivo": motivo})

	var tecnicoID int64
	if chamado.TecnicoResponsavelID != nil {
		tecnicoID = *chamado.TecnicoResponsavelID
	}
	s.publicar(ctx, events.EventChamadoReaberto, chamado, ator, events.ChamadoReabertoPayload{
		Motivo:               motivo,
		TecnicoResponsavelID: tecnicoID,
	})
	return chamado, nil
}

// Avaliar records the requester's rating and closes the chamado.
func (s *ChamadoService) Avaliar(ctx context.Context, ator *domain.Usuario, chamadoID int64, nota int, comentario string) (*domain.Chamado, error) {
	if nota < 1 || nota > 5 {
		return nil, apperrors.NewValidationError("nota deve estar entre 1 e 5", map[string]any{"nota": nota})
	}

	chamado, err := s.buscarVisivel(ctx, ator, chamadoID)
	if err != nil {
		return nil, err
	}

	decisao := lifecycle.Avaliar(chamado, lifecycle.AcaoAvaliar, lifecycle.Ator{ID: ator.ID, Perfil: ator.Perfil})
	if err := decisaoParaErro(decisao); err != nil {
		return nil, err
	}

	agora := time.Now()
	chamado.Status = domain.StatusConcluido
	chamado.AvaliacaoNota = &nota
	if comentario != "" {
		chamado.AvaliacaoComentario = &comentario
	}
	chamado.ConcluidoEm = &agora

	if err := s.chamados.Update(ctx, chamado); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.registrarHistorico(ctx, chamado.ID, &ator.ID, domain.HistoricoAvaliacao, map[string]any{"nota": nota})
	s.publicar(ctx, events.EventChamadoAvaliado, chamado, ator, events.ChamadoAvaliadoPayload{
		Nota:       nota,
		Comentario: comentario,
	})
	return chamado, nil
}

// Buscar returns one chamado the actor may see.
func (s *ChamadoService) Buscar(ctx context.Context, ator *domain.Usuario, chamadoID int64) (*domain.Chamado, error) {
	return s.buscarVisivel(ctx, ator, chamadoID)
}

// ProximosStatus lists the transitions a technician may drive from the
// chamado's current status.
func (s *ChamadoService) ProximosStatus(ctx context.Context, ator *domain.Usuario, chamadoID int64) ([]domain.StatusChamado, error) {
	chamado, err := s.buscarVisivel(ctx, ator, chamadoID)
	if err != nil {
		return nil, err
	}
	var out []domain.StatusChamado
	for _, destino := range lifecycle.ProximosStatus(chamado.Status) {
		if lifecycle.TransicaoTecnico(chamado.Status, destino) {
			out = append(out, destino)
		}
	}
	return out, nil
}

// Listar returns the requester-facing list, scoped to the actor: USUARIO
// sees own chamados, ADMIN_EMPRESA sees the company, ADMIN sees all.
func (s *ChamadoService) Listar(ctx context.Context, ator *domain.Usuario, input ListarInput) ([]domain.Chamado, int64, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoListarChamados) {
		return nil, 0, apperrors.NewForbidden("perfil sem permissão para listar chamados")
	}

	filter := s.filtroBase(input)
	switch ator.Perfil {
	case domain.PerfilUsuario:
		filter.SolicitanteID = &ator.ID
	case domain.PerfilAdminEmpresa:
		if ator.EmpresaID == nil {
			filter.SolicitanteID = &ator.ID
		} else {
			filter.EmpresaID = ator.EmpresaID
		}
	case domain.PerfilAdmin:
	}
	return s.listar(ctx, filter)
}

// ListarAtendimentos returns the technician queue: chamados owned by the
// técnico, or every chamado for ADMIN.
func (s *ChamadoService) ListarAtendimentos(ctx context.Context, ator *domain.Usuario, input ListarInput) ([]domain.Chamado, int64, error) {
	if !policy.Autorizar(ator.Perfil, policy.AcaoListarAtendimentos) {
		return nil, 0, apperrors.NewForbidden("perfil sem permissão para listar atendimentos")
	}

	filter := s.filtroBase(input)
	if ator.Perfil == domain.PerfilTecnicoTI {
		filter.TecnicoID = &ator.ID
	}
	return s.listar(ctx, filter)
}

// Historico returns the chamado's audit timeline.
func (s *ChamadoService) Historico(ctx context.Context, ator *domain.Usuario, chamadoID int64) ([]domain.HistoricoEvento, error) {
	if _, err := s.buscarVisivel(ctx, ator, chamadoID); err != nil {
		return nil, err
	}
	eventos, err := s.historico.ListByChamado(ctx, chamadoID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return eventos, nil
}

func (s *ChamadoService) filtroBase(input ListarInput) repository.ChamadoFilter {
	limit, offset := input.limitOffset()
	return repository.ChamadoFilter{
		Statuses:    input.Statuses,
		Prioridades: input.Prioridades,
		Search:      input.Search,
		Limit:       limit,
		Offset:      offset,
	}
}

func (s *ChamadoService) listar(ctx context.Context, filter repository.ChamadoFilter) ([]domain.Chamado, int64, error) {
	total, err := s.chamados.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	lista, err := s.chamados.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return lista, total, nil
}

func (s *ChamadoService) carregar(ctx context.Context, chamadoID int64) (*domain.Chamado, error) {
	chamado, err := s.chamados.GetByID(ctx, chamadoID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("chamado", map[string]any{"id": chamadoID})
		}
		return nil, apperrors.MapError(err)
	}
	return chamado, nil
}

// buscarVisivel loads the chamado and applies read scoping. A técnico
// destino of a PENDENTE transfer may inspect the chamado before
// responding even without owning it yet.
func (s *ChamadoService) buscarVisivel(ctx context.Context, ator *domain.Usuario, chamadoID int64) (*domain.Chamado, error) {
	chamado, err := s.carregar(ctx, chamadoID)
	if err != nil {
		return nil, err
	}
	if policy.PodeVerChamado(ator, chamado) {
		return chamado, nil
	}
	if ator.Perfil == domain.PerfilTecnicoTI {
		pendente, err := s.transferencias.GetPendenteByChamado(ctx, chamadoID)
		if err == nil && pendente.TecnicoDestinoID == ator.ID {
			return chamado, nil
		}
	}
	return nil, apperrors.NewForbidden("sem acesso a este chamado")
}

func (s *ChamadoService) registrarHistorico(ctx context.Context, chamadoID int64, atorID *int64, tipo domain.TipoHistorico, detalhes map[string]any) {
	evento := &domain.HistoricoEvento{
		ChamadoID: chamadoID,
		AtorID:    atorID,
		Tipo:      tipo,
		Detalhes:  detalhes,
	}
	_ = s.historico.Create(ctx, evento)
}

func (s *ChamadoService) publicar(ctx context.Context, tipo events.EventType, chamado *domain.Chamado, ator *domain.Usuario, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      tipo,
		ChamadoID: chamado.ID,
		Protocolo: chamado.Protocolo,
		Ator:      events.Ator{UsuarioID: ator.ID, Perfil: ator.Perfil},
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
