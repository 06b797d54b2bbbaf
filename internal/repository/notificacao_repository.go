package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// NotificacaoRepository encapsulates notification persistence.
type NotificacaoRepository interface {
	Create(ctx context.Context, notificacao *domain.Notificacao) error
	ListByUsuario(ctx context.Context, usuarioID int64, limit, offset int) ([]domain.Notificacao, int64, error)
	CountNaoLidas(ctx context.Context, usuarioID int64) (int64, error)
	MarcarLida(ctx context.Context, id, usuarioID int64) error
	MarcarTodasLidas(ctx context.Context, usuarioID int64) (int64, error)
}

type notificacaoRepository struct {
	pool *pgxpool.Pool
}

// NewNotificacaoRepository instantiates the repository.
func NewNotificacaoRepository(pool *pgxpool.Pool) NotificacaoRepository {
	return &notificacaoRepository{pool: pool}
}

const notificacaoColumns = `id, usuario_id, chamado_id, chamado_protocolo, tipo, titulo, mensagem, lida, criado_em`

func (r *notificacaoRepository) Create(ctx context.Context, notificacao *domain.Notificacao) error {
	const query = `
        INSERT INTO notificacoes (usuario_id, chamado_id, chamado_protocolo, tipo, titulo, mensagem)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, lida, criado_em`
	return r.pool.QueryRow(ctx, query,
		notificacao.UsuarioID,
		notificacao.ChamadoID,
		notificacao.ChamadoProtocolo,
		notificacao.Tipo,
		notificacao.Titulo,
		notificacao.Mensagem,
	).Scan(&notificacao.ID, &notificacao.Lida, &notificacao.CriadoEm)
}

func (r *notificacaoRepository) ListByUsuario(ctx context.Context, usuarioID int64, limit, offset int) ([]domain.Notificacao, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notificacoes WHERE usuario_id=$1`, usuarioID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM notificacoes
        WHERE usuario_id=$1
        ORDER BY criado_em DESC, id DESC
        LIMIT %d OFFSET %d`, notificacaoColumns, limit, offset)

	rows, err := r.pool.Query(ctx, query, usuarioID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Notificacao
	for rows.Next() {
		var n domain.Notificacao
		if err := rows.Scan(
			&n.ID,
			&n.UsuarioID,
			&n.ChamadoID,
			&n.ChamadoProtocolo,
			&n.Tipo,
			&n.Titulo,
			&n.Mensagem,
			&n.Lida,
			&n.CriadoEm,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, n)
	}
	return result, total, rows.Err()
}

func (r *notificacaoRepository) CountNaoLidas(ctx context.Context, usuarioID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notificacoes WHERE usuario_id=$1 AND NOT lida`, usuarioID,
	).Scan(&count)
	return count, err
}

// MarcarLida flips the read flag only when the notification belongs to
// the given user, so recipients cannot mark each other's entries.
func (r *notificacaoRepository) MarcarLida(ctx context.Context, id, usuarioID int64) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notificacoes SET lida=TRUE WHERE id=$1 AND usuario_id=$2`, id, usuarioID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificacaoRepository) MarcarTodasLidas(ctx context.Context, usuarioID int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notificacoes SET lida=TRUE WHERE usuario_id=$1 AND NOT lida`, usuarioID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
