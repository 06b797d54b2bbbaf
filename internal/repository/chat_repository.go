package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// ChatRepository encapsulates chamado conversation persistence.
type ChatRepository interface {
	Create(ctx context.Context, mensagem *domain.ChatMensagem) error
	ListByChamado(ctx context.Context, chamadoID int64, incluirPrivadas bool) ([]domain.ChatMensagem, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates the repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

func (r *chatRepository) Create(ctx context.Context, mensagem *domain.ChatMensagem) error {
	const query = `
        INSERT INTO chat_mensagens (chamado_id, remetente_id, conteudo, visivel_cliente)
        VALUES ($1,$2,$3,$4)
        RETURNING id, enviado_em`
	return r.pool.QueryRow(ctx, query,
		mensagem.ChamadoID,
		mensagem.RemetenteID,
		mensagem.Conteudo,
		mensagem.VisivelCliente,
	).Scan(&mensagem.ID, &mensagem.EnviadoEm)
}

// ListByChamado returns messages in send order, joining sender identity
// for display. Internal notes are skipped unless incluirPrivadas.
func (r *chatRepository) ListByChamado(ctx context.Context, chamadoID int64, incluirPrivadas bool) ([]domain.ChatMensagem, error) {
	query := `
        SELECT m.id, m.chamado_id, m.remetente_id, u.nome, u.perfil, m.conteudo, m.visivel_cliente, m.enviado_em
        FROM chat_mensagens m
        JOIN usuarios u ON u.id = m.remetente_id
        WHERE m.chamado_id=$1`
	if !incluirPrivadas {
		query += ` AND m.visivel_cliente`
	}
	query += ` ORDER BY m.enviado_em, m.id`

	rows, err := r.pool.Query(ctx, query, chamadoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatMensagem
	for rows.Next() {
		var m domain.ChatMensagem
		if err := rows.Scan(
			&m.ID,
			&m.ChamadoID,
			&m.RemetenteID,
			&m.RemetenteNome,
			&m.RemetentePerfil,
			&m.Conteudo,
			&m.VisivelCliente,
			&m.EnviadoEm,
		); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
