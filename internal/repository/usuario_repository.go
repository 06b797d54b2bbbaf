package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suporteti/chamado-service/internal/domain"
)

// UsuarioFilter captures listing parameters.
type UsuarioFilter struct {
	Perfil    *domain.Perfil
	EmpresaID *int64
	Ativo     *bool
	Search    *string
	Limit     int
	Offset    int
}

// UsuarioRepository encapsulates user persistence.
type UsuarioRepository interface {
	Create(ctx context.Context, usuario *domain.Usuario) error
	Update(ctx context.Context, usuario *domain.Usuario) error
	GetByID(ctx context.Context, id int64) (*domain.Usuario, error)
	GetByEmail(ctx context.Context, email string) (*domain.Usuario, error)
	List(ctx context.Context, filter UsuarioFilter) ([]domain.Usuario, error)
}

type usuarioRepository struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository instantiates the repository.
func NewUsuarioRepository(pool *pgxpool.Pool) UsuarioRepository {
	return &usuarioRepository{pool: pool}
}

const usuarioColumns = `id, nome, email, telefone, senha_hash, perfil, ativo, empresa_id, criado_em, atualizado_em`

func (r *usuarioRepository) Create(ctx context.Context, usuario *domain.Usuario) error {
	const query = `
        INSERT INTO usuarios (nome, email, telefone, senha_hash, perfil, ativo, empresa_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, criado_em, atualizado_em`
	return r.pool.QueryRow(ctx, query,
		usuario.Nome,
		usuario.Email,
		usuario.Telefone,
		usuario.SenhaHash,
		usuario.Perfil,
		usuario.Ativo,
		usuario.EmpresaID,
	).Scan(&usuario.ID, &usuario.CriadoEm, &usuario.AtualizadoEm)
}

func (r *usuarioRepository) Update(ctx context.Context, usuario *domain.Usuario) error {
	const query = `
        UPDATE usuarios SET nome=$1, email=$2, telefone=$3, senha_hash=$4, ativo=$5, atualizado_em=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		usuario.Nome,
		usuario.Email,
		usuario.Telefone,
		usuario.SenhaHash,
		usuario.Ativo,
		usuario.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *usuarioRepository) GetByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE id=$1`, usuarioColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *usuarioRepository) GetByEmail(ctx context.Context, email string) (*domain.Usuario, error) {
	query := fmt.Sprintf(`SELECT %s FROM usuarios WHERE LOWER(email)=LOWER($1)`, usuarioColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *usuarioRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Usuario, error) {
	var usuario domain.Usuario
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&usuario.ID,
		&usuario.Nome,
		&usuario.Email,
		&usuario.Telefone,
		&usuario.SenhaHash,
		&usuario.Perfil,
		&usuario.Ativo,
		&usuario.EmpresaID,
		&usuario.CriadoEm,
		&usuario.AtualizadoEm,
	); err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (r *usuarioRepository) List(ctx context.Context, filter UsuarioFilter) ([]domain.Usuario, error) {
	base := fmt.Sprintf(`SELECT %s FROM usuarios`, usuarioColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Perfil != nil {
		args = append(args, *filter.Perfil)
		clauses = append(clauses, fmt.Sprintf("perfil=$%d", len(args)))
	}
	if filter.EmpresaID != nil {
		args = append(args, *filter.EmpresaID)
		clauses = append(clauses, fmt.Sprintf("empresa_id=$%d", len(args)))
	}
	if filter.Ativo != nil {
		args = append(args, *filter.Ativo)
		clauses = append(clauses, fmt.Sprintf("ativo=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(nome) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY nome LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Usuario
	for rows.Next() {
		var usuario domain.Usuario
		if err := rows.Scan(
			&usuario.ID,
			&usuario.Nome,
			&usuario.Email,
			&usuario.Telefone,
			&usuario.SenhaHash,
			&usuario.Perfil,
			&usuario.Ativo,
			&usuario.EmpresaID,
			&usuario.CriadoEm,
			&usuario.AtualizadoEm,
		); err != nil {
			return nil, err
		}
		result = append(result, usuario)
	}
	return result, rows.Err()
}
