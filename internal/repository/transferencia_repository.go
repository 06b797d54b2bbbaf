package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// Resolucao describes the outcome applied to a PENDENTE transfer inside
// a single transaction. When NovoResponsavelID is set the chamado's
// responsible technician is swapped in the same transaction.
type Resolucao struct {
	Status            domain.StatusTransferencia
	MotivoRecusa      *string
	NovoResponsavelID *int64
}

// TransferenciaRepository encapsulates transfer-request persistence.
// CriarPendente and Resolver run their state checks under row locks so
// concurrent requests serialize instead of corrupting each other.
type TransferenciaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Transferencia, error)
	GetPendenteByChamado(ctx context.Context, chamadoID int64) (*domain.Transferencia, error)
	ListPendentesParaTecnico(ctx context.Context, tecnicoID int64) ([]domain.Transferencia, error)
	ListEnviadasPorTecnico(ctx context.Context, tecnicoID int64, limit, offset int) ([]domain.Transferencia, int64, error)
	CriarPendente(ctx context.Context, transferencia *domain.Transferencia) error
	Resolver(ctx context.Context, id int64, resolucao Resolucao) (*domain.Transferencia, error)
}

type transferenciaRepository struct {
	pool *pgxpool.Pool
}

// NewTransferenciaRepository instantiates the repository.
func NewTransferenciaRepository(pool *pgxpool.Pool) TransferenciaRepository {
	return &transferenciaRepository{pool: pool}
}

const transferenciaColumns = `id, chamado_id, tecnico_origem_id, tecnico_destino_id,
	motivo, status, motivo_recusa, data_solicitacao, data_resposta`

func scanTransferencia(row pgx.Row) (*domain.Transferencia, error) {
	var t domain.Transferencia
	if err := row.Scan(
		&t.ID,
		&t.ChamadoID,
		&t.TecnicoOrigemID,
		&t.TecnicoDestinoID,
		&t.Motivo,
		&t.Status,
		&t.MotivoRecusa,
		&t.DataSolicitacao,
		&t.DataResposta,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferenciaRepository) GetByID(ctx context.Context, id int64) (*domain.Transferencia, error) {
	query := fmt.Sprintf(`SELECT %s FROM transferencias WHERE id=$1`, transferenciaColumns)
	return scanTransferencia(r.pool.QueryRow(ctx, query, id))
}

func (r *transferenciaRepository) GetPendenteByChamado(ctx context.Context, chamadoID int64) (*domain.Transferencia, error) {
	query := fmt.Sprintf(`SELECT %s FROM transferencias WHERE chamado_id=$1 AND status='PENDENTE'`, transferenciaColumns)
	return scanTransferencia(r.pool.QueryRow(ctx, query, chamadoID))
}

func (r *transferenciaRepository) ListPendentesParaTecnico(ctx context.Context, tecnicoID int64) ([]domain.Transferencia, error) {
	query := fmt.Sprintf(`SELECT %s FROM transferencias
        WHERE tecnico_destino_id=$1 AND status='PENDENTE'
        ORDER BY data_solicitacao DESC`, transferenciaColumns)

	rows, err := r.pool.Query(ctx, query, tecnicoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransferencias(rows)
}

func (r *transferenciaRepository) ListEnviadasPorTecnico(ctx context.Context, tecnicoID int64, limit, offset int) ([]domain.Transferencia, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transferencias WHERE tecnico_origem_id=$1`, tecnicoID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM transferencias
        WHERE tecnico_origem_id=$1
        ORDER BY data_solicitacao DESC
        LIMIT %d OFFSET %d`, transferenciaColumns, limit, offset)

	rows, err := r.pool.Query(ctx, query, tecnicoID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectTransferencias(rows)
	return result, total, err
}

func collectTransferencias(rows pgx.Rows) ([]domain.Transferencia, error) {
	var result []domain.Transferencia
	for rows.Next() {
		t, err := scanTransferencia(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// CriarPendente inserts a PENDENTE request after re-checking, under a
// row lock, that the chamado is still ABERTO and owned by origem. A
// unique-index violation means another request won the race.
func (r *transferenciaRepository) CriarPendente(ctx context.Context, transferencia *domain.Transferencia) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status domain.StatusChamado
	var responsavelID *int64
	if err := tx.QueryRow(ctx,
		`SELECT status, tecnico_responsavel_id FROM chamados WHERE id=$1 FOR UPDATE`,
		transferencia.ChamadoID,
	).Scan(&status, &responsavelID); err != nil {
		return err
	}
	if status != domain.StatusAberto || responsavelID == nil || *responsavelID != transferencia.TecnicoOrigemID {
		return ErrEstadoInvalido
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO transferencias (chamado_id, tecnico_origem_id, tecnico_destino_id, motivo, status)
         VALUES ($1,$2,$3,$4,'PENDENTE')
         RETURNING id, status, data_solicitacao`,
		transferencia.ChamadoID,
		transferencia.TecnicoOrigemID,
		transferencia.TecnicoDestinoID,
		transferencia.Motivo,
	).Scan(&transferencia.ID, &transferencia.Status, &transferencia.DataSolicitacao)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPendenteExistente
		}
		return err
	}

	return tx.Commit(ctx)
}

// Resolver moves a PENDENTE request to a terminal status. On acceptance
// the chamado's responsible technician is updated in the same
// transaction so no observer sees the transfer half-applied.
func (r *transferenciaRepository) Resolver(ctx context.Context, id int64, resolucao Resolucao) (*domain.Transferencia, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lockQuery := fmt.Sprintf(`SELECT %s FROM transferencias WHERE id=$1 FOR UPDATE`, transferenciaColumns)
	transferencia, err := scanTransferencia(tx.QueryRow(ctx, lockQuery, id))
	if err != nil {
		return nil, err
	}
	if !transferencia.Pendente() {
		return nil, ErrNaoPendente
	}

	if err := tx.QueryRow(ctx,
		`UPDATE transferencias SET status=$1, motivo_recusa=$2, data_resposta=NOW()
         WHERE id=$3
         RETURNING status, motivo_recusa, data_resposta`,
		resolucao.Status, resolucao.MotivoRecusa, id,
	).Scan(&transferencia.Status, &transferencia.MotivoRecusa, &transferencia.DataResposta); err != nil {
		return nil, err
	}

	if resolucao.NovoResponsavelID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE chamados SET tecnico_responsavel_id=$1, atualizado_em=NOW() WHERE id=$2`,
			*resolucao.NovoResponsavelID, transferencia.ChamadoID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return transferencia, nil
}
