package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/repository"
	apperrors "github.com/suporteti/chamado-service/pkg/util"
)

// In-memory fakes backing the service tests. The transfer fake holds a
// single mutex across its check-then-write sections, mirroring the row
// locks the real repository takes.

type fakeChamadoRepo struct {
	mu    sync.Mutex
	seq   int64
	itens map[int64]domain.Chamado
}

func newFakeChamadoRepo() *fakeChamadoRepo {
	return &fakeChamadoRepo{itens: make(map[int64]domain.Chamado)}
}

func (f *fakeChamadoRepo) Create(_ context.Context, chamado *domain.Chamado) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	chamado.ID = f.seq
	chamado.CriadoEm = time.Now()
	chamado.AtualizadoEm = chamado.CriadoEm
	f.itens[chamado.ID] = *chamado
	return nil
}

func (f *fakeChamadoRepo) Update(_ context.Context, chamado *domain.Chamado) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.itens[chamado.ID]; !ok {
		return pgx.ErrNoRows
	}
	chamado.AtualizadoEm = time.Now()
	f.itens[chamado.ID] = *chamado
	return nil
}

func (f *fakeChamadoRepo) GetByID(_ context.Context, id int64) (*domain.Chamado, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chamado, ok := f.itens[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copia := chamado
	return &copia, nil
}

func (f *fakeChamadoRepo) ListWithFilter(_ context.Context, filter repository.ChamadoFilter) ([]domain.Chamado, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chamado
	for _, chamado := range f.itens {
		if f.matches(chamado, filter) {
			out = append(out, chamado)
		}
	}
	return out, nil
}

func (f *fakeChamadoRepo) CountWithFilter(_ context.Context, filter repository.ChamadoFilter) (int64, error) {
	lista, _ := f.ListWithFilter(context.Background(), filter)
	return int64(len(lista)), nil
}

func (f *fakeChamadoRepo) matches(chamado domain.Chamado, filter repository.ChamadoFilter) bool {
	if filter.SolicitanteID != nil && chamado.SolicitanteID != *filter.SolicitanteID {
		return false
	}
	if filter.TecnicoID != nil && !chamado.ResponsavelE(*filter.TecnicoID) {
		return false
	}
	if filter.EmpresaID != nil {
		if chamado.EmpresaID == nil || *chamado.EmpresaID != *filter.EmpresaID {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		ok := false
		for _, s := range filter.Statuses {
			if chamado.Status == s {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if filter.Search != nil {
		termo := strings.ToLower(*filter.Search)
		if !strings.Contains(strings.ToLower(chamado.Titulo), termo) &&
			!strings.Contains(strings.ToLower(chamado.Protocolo), termo) {
			return false
		}
	}
	return true
}

type fakeTransferenciaRepo struct {
	mu       sync.Mutex
	seq      int64
	itens    map[int64]domain.Transferencia
	chamados *fakeChamadoRepo
}

func newFakeTransferenciaRepo(chamados *fakeChamadoRepo) *fakeTransferenciaRepo {
	return &fakeTransferenciaRepo{itens: make(map[int64]domain.Transferencia), chamados: chamados}
}

func (f *fakeTransferenciaRepo) GetByID(_ context.Context, id int64) (*domain.Transferencia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.itens[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copia := t
	return &copia, nil
}

func (f *fakeTransferenciaRepo) GetPendenteByChamado(_ context.Context, chamadoID int64) (*domain.Transferencia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.itens {
		if t.ChamadoID == chamadoID && t.Status == domain.TransferenciaPendente {
			copia := t
			return &copia, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTransferenciaRepo) ListPendentesParaTecnico(_ context.Context, tecnicoID int64) ([]domain.Transferencia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transferencia
	for _, t := range f.itens {
		if t.TecnicoDestinoID == tecnicoID && t.Status == domain.TransferenciaPendente {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransferenciaRepo) ListEnviadasPorTecnico(_ context.Context, tecnicoID int64, _, _ int) ([]domain.Transferencia, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transferencia
	for _, t := range f.itens {
		if t.TecnicoOrigemID == tecnicoID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTransferenciaRepo) CriarPendente(ctx context.Context, transferencia *domain.Transferencia) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	chamado, err := f.chamados.GetByID(ctx, transferencia.ChamadoID)
	if err != nil {
		return err
	}
	if chamado.Status != domain.StatusAberto || !chamado.ResponsavelE(transferencia.TecnicoOrigemID) {
		return repository.ErrEstadoInvalido
	}
	for _, t := range f.itens {
		if t.ChamadoID == transferencia.ChamadoID && t.Status == domain.TransferenciaPendente {
			return repository.ErrPendenteExistente
		}
	}

	f.seq++
	transferencia.ID = f.seq
	transferencia.Status = domain.TransferenciaPendente
	transferencia.DataSolicitacao = time.Now()
	f.itens[transferencia.ID] = *transferencia
	return nil
}

func (f *fakeTransferenciaRepo) Resolver(ctx context.Context, id int64, resolucao repository.Resolucao) (*domain.Transferencia, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.itens[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if t.Status != domain.TransferenciaPendente {
		return nil, repository.ErrNaoPendente
	}

	agora := time.Now()
	t.Status = resolucao.Status
	t.MotivoRecusa = resolucao.MotivoRecusa
	t.DataResposta = &agora
	f.itens[id] = t

	if resolucao.NovoResponsavelID != nil {
		chamado, err := f.chamados.GetByID(ctx, t.ChamadoID)
		if err != nil {
			return nil, err
		}
		chamado.TecnicoResponsavelID = resolucao.NovoResponsavelID
		if err := f.chamados.Update(ctx, chamado); err != nil {
			return nil, err
		}
	}

	copia := t
	return &copia, nil
}

type fakeUsuarioRepo struct {
	mu    sync.Mutex
	seq   int64
	itens map[int64]domain.Usuario
}

func newFakeUsuarioRepo(usuarios ...*domain.Usuario) *fakeUsuarioRepo {
	f := &fakeUsuarioRepo{itens: make(map[int64]domain.Usuario)}
	for _, u := range usuarios {
		_ = f.Create(context.Background(), u)
	}
	return f
}

func (f *fakeUsuarioRepo) Create(_ context.Context, usuario *domain.Usuario) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if usuario.ID == 0 {
		f.seq++
		usuario.ID = f.seq
	} else if usuario.ID > f.seq {
		f.seq = usuario.ID
	}
	f.itens[usuario.ID] = *usuario
	return nil
}

func (f *fakeUsuarioRepo) Update(_ context.Context, usuario *domain.Usuario) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.itens[usuario.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.itens[usuario.ID] = *usuario
	return nil
}

func (f *fakeUsuarioRepo) GetByID(_ context.Context, id int64) (*domain.Usuario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.itens[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copia := u
	return &copia, nil
}

func (f *fakeUsuarioRepo) GetByEmail(_ context.Context, email string) (*domain.Usuario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.itens {
		if strings.EqualFold(u.Email, email) {
			copia := u
			return &copia, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsuarioRepo) List(_ context.Context, filter repository.UsuarioFilter) ([]domain.Usuario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Usuario
	for _, u := range f.itens {
		if filter.Perfil != nil && u.Perfil != *filter.Perfil {
			continue
		}
		if filter.Ativo != nil && u.Ativo != *filter.Ativo {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeHistoricoRepo struct {
	mu    sync.Mutex
	itens []domain.HistoricoEvento
}

func (f *fakeHistoricoRepo) Create(_ context.Context, evento *domain.HistoricoEvento) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	evento.ID = int64(len(f.itens) + 1)
	evento.CriadoEm = time.Now()
	f.itens = append(f.itens, *evento)
	return nil
}

func (f *fakeHistoricoRepo) ListByChamado(_ context.Context, chamadoID int64) ([]domain.HistoricoEvento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoricoEvento
	for _, e := range f.itens {
		if e.ChamadoID == chamadoID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotificacaoRepo struct {
	mu    sync.Mutex
	seq   int64
	itens []domain.Notificacao
}

func (f *fakeNotificacaoRepo) Create(_ context.Context, notificacao *domain.Notificacao) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	notificacao.ID = f.seq
	notificacao.CriadoEm = time.Now()
	f.itens = append(f.itens, *notificacao)
	return nil
}

func (f *fakeNotificacaoRepo) ListByUsuario(_ context.Context, usuarioID int64, _, _ int) ([]domain.Notificacao, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notificacao
	for _, n := range f.itens {
		if n.UsuarioID == usuarioID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificacaoRepo) CountNaoLidas(_ context.Context, usuarioID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.itens {
		if n.UsuarioID == usuarioID && !n.Lida {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificacaoRepo) MarcarLida(_ context.Context, id, usuarioID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.itens {
		if n.ID == id && n.UsuarioID == usuarioID {
			f.itens[i].Lida = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificacaoRepo) MarcarTodasLidas(_ context.Context, usuarioID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var afetadas int64
	for i, n := range f.itens {
		if n.UsuarioID == usuarioID && !n.Lida {
			f.itens[i].Lida = true
			afetadas++
		}
	}
	return afetadas, nil
}

type fakeChatRepo struct {
	mu    sync.Mutex
	seq   int64
	itens []domain.ChatMensagem
}

func (f *fakeChatRepo) Create(_ context.Context, mensagem *domain.ChatMensagem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	mensagem.ID = f.seq
	mensagem.EnviadoEm = time.Now()
	f.itens = append(f.itens, *mensagem)
	return nil
}

func (f *fakeChatRepo) ListByChamado(_ context.Context, chamadoID int64, incluirPrivadas bool) ([]domain.ChatMensagem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMensagem
	for _, m := range f.itens {
		if m.ChamadoID != chamadoID {
			continue
		}
		if !incluirPrivadas && !m.VisivelCliente {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// codigoDe extracts the taxonomy code from a service error.
func codigoDe(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("esperava erro, obteve nil")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("esperava DomainError, obteve %T: %v", err, err)
	}
	return domainErr.Code
}

func tecnico(id int64) *domain.Usuario {
	return &domain.Usuario{ID: id, Nome: "Técnico", Perfil: domain.PerfilTecnicoTI, Ativo: true}
}

func solicitante(id int64) *domain.Usuario {
	return &domain.Usuario{ID: id, Nome: "Solicitante", Perfil: domain.PerfilUsuario, Ativo: true}
}
