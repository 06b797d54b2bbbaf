package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// ChamadoFilter captures listing parameters for chamados.
type ChamadoFilter struct {
	SolicitanteID *int64
	TecnicoID     *int64
	EmpresaID     *int64
	Statuses      []domain.StatusChamado
	Prioridades   []domain.Prioridade
	Search        *string
	Limit         int
	Offset        int
}

// ChamadoRepository encapsulates chamado persistence.
type ChamadoRepository interface {
	Create(ctx context.Context, chamado *domain.Chamado) error
	Update(ctx context.Context, chamado *domain.Chamado) error
	GetByID(ctx context.Context, id int64) (*domain.Chamado, error)
	ListWithFilter(ctx context.Context, filter ChamadoFilter) ([]domain.Chamado, error)
	CountWithFilter(ctx context.Context, filter ChamadoFilter) (int64, error)
}

type chamadoRepository struct {
	pool *pgxpool.Pool
}

// NewChamadoRepository instantiates the repository.
func NewChamadoRepository(pool *pgxpool.Pool) ChamadoRepository {
	return &chamadoRepository{pool: pool}
}

const chamadoColumns = `id, protocolo, solicitante_id, empresa_id, tecnico_responsavel_id,
	titulo, descricao, categoria, status, prioridade,
	avaliacao_nota, avaliacao_comentario, criado_em, atualizado_em, concluido_em`

func (r *chamadoRepository) Create(ctx context.Context, chamado *domain.Chamado) error {
	const query = `
        INSERT INTO chamados (protocolo, solicitante_id, empresa_id, titulo, descricao, categoria, status, prioridade)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, criado_em, atualizado_em`
	return r.pool.QueryRow(ctx, query,
		chamado.Protocolo,
		chamado.SolicitanteID,
		chamado.EmpresaID,
		chamado.Titulo,
		chamado.Descricao,
		chamado.Categoria,
		chamado.Status,
		chamado.Prioridade,
	).Scan(&chamado.ID, &chamado.CriadoEm, &chamado.AtualizadoEm)
}

func (r *chamadoRepository) Update(ctx context.Context, chamado *domain.Chamado) error {
	const query = `
        UPDATE chamados SET
            tecnico_responsavel_id=$1, titulo=$2, descricao=$3, categoria=$4,
            status=$5, prioridade=$6, avaliacao_nota=$7, avaliacao_comentario=$8,
            concluido_em=$9, atualizado_em=NOW()
        WHERE id=$10
        RETURNING atualizado_em`
	return r.pool.QueryRow(ctx, query,
		chamado.TecnicoResponsavelID,
		chamado.Titulo,
		chamado.Descricao,
		chamado.Categoria,
		chamado.Status,
		chamado.Prioridade,
		chamado.AvaliacaoNota,
		chamado.AvaliacaoComentario,
		chamado.ConcluidoEm,
		chamado.ID,
	).Scan(&chamado.AtualizadoEm)
}

func (r *chamadoRepository) GetByID(ctx context.Context, id int64) (*domain.Chamado, error) {
	query := fmt.Sprintf(`SELECT %s FROM chamados WHERE id=$1`, chamadoColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanChamado(row)
}

func scanChamado(row pgx.Row) (*domain.Chamado, error) {
	var chamado domain.Chamado
	if err := row.Scan(
		&chamado.ID,
		&chamado.Protocolo,
		&chamado.SolicitanteID,
		&chamado.EmpresaID,
		&chamado.TecnicoResponsavelID,
		&chamado.Titulo,
		&chamado.Descricao,
		&chamado.Categoria,
		&chamado.Status,
		&chamado.Prioridade,
		&chamado.AvaliacaoNota,
		&chamado.AvaliacaoComentario,
		&chamado.CriadoEm,
		&chamado.AtualizadoEm,
		&chamado.ConcluidoEm,
	); err != nil {
		return nil, err
	}
	return &chamado, nil
}

func buildChamadoClauses(filter ChamadoFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SolicitanteID != nil {
		args = append(args, *filter.SolicitanteID)
		clauses = append(clauses, fmt.Sprintf("solicitante_id=$%d", len(args)))
	}
	if filter.TecnicoID != nil {
		args = append(args, *filter.TecnicoID)
		clauses = append(clauses, fmt.Sprintf("tecnico_responsavel_id=$%d", len(args)))
	}
	if filter.EmpresaID != nil {
		args = append(args, *filter.EmpresaID)
		clauses = append(clauses, fmt.Sprintf("empresa_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Prioridades) > 0 {
		placeholders := make([]string, 0, len(filter.Prioridades))
		for _, p := range filter.Prioridades {
			args = append(args, p)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, fmt.Sprintf("prioridade IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses,
			fmt.Sprintf("(LOWER(titulo) LIKE %s OR LOWER(descricao) LIKE %s OR LOWER(protocolo) LIKE %s)",
				placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func (r *chamadoRepository) ListWithFilter(ctx context.Context, filter ChamadoFilter) ([]domain.Chamado, error) {
	clauses, args := buildChamadoClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM chamados WHERE %s ORDER BY criado_em DESC, id DESC LIMIT %d OFFSET %d`,
		chamadoColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Chamado
	for rows.Next() {
		chamado, err := scanChamado(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *chamado)
	}
	return result, rows.Err()
}

func (r *chamadoRepository) CountWithFilter(ctx context.Context, filter ChamadoFilter) (int64, error) {
	clauses, args := buildChamadoClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM chamados WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
