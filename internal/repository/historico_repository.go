package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// HistoricoRepository encapsulates the chamado audit trail. Entries are
// append-only.
type HistoricoRepository interface {
	Create(ctx context.Context, evento *domain.HistoricoEvento) error
	ListByChamado(ctx context.Context, chamadoID int64) ([]domain.HistoricoEvento, error)
}

type historicoRepository struct {
	pool *pgxpool.Pool
}

// NewHistoricoRepository instantiates the repository.
func NewHistoricoRepository(pool *pgxpool.Pool) HistoricoRepository {
	return &historicoRepository{pool: pool}
}

func (r *historicoRepository) Create(ctx context.Context, evento *domain.HistoricoEvento) error {
	detalhes := evento.Detalhes
	if detalhes == nil {
		detalhes = map[string]any{}
	}
	payload, err := json.Marshal(detalhes)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO historico_eventos (chamado_id, ator_id, tipo, detalhes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, criado_em`
	return r.pool.QueryRow(ctx, query,
		evento.ChamadoID,
		evento.AtorID,
		evento.Tipo,
		payload,
	).Scan(&evento.ID, &evento.CriadoEm)
}

func (r *historicoRepository) ListByChamado(ctx context.Context, chamadoID int64) ([]domain.HistoricoEvento, error) {
	const query = `
        SELECT id, chamado_id, ator_id, tipo, detalhes, criado_em
        FROM historico_eventos
        WHERE chamado_id=$1
        ORDER BY criado_em, id`

	rows, err := r.pool.Query(ctx, query, chamadoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoricoEvento
	for rows.Next() {
		var evento domain.HistoricoEvento
		var payload []byte
		if err := rows.Scan(
			&evento.ID,
			&evento.ChamadoID,
			&evento.AtorID,
			&evento.Tipo,
			&payload,
			&evento.CriadoEm,
		); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &evento.Detalhes); err != nil {
				return nil, err
			}
		}
		result = append(result, evento)
	}
	return result, rows.Err()
}
