package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telaris-erp/telaris/internal/authz"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Repository defines persistence for usuarios.
type Repository interface {
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user User, passwordHash string) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `id, sujeto, email, nombre, rol, estado, creado_en, actualizado_en, eliminado_en`

func (r *repository) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	conditions := []string{"eliminado_en IS NULL"}
	var args []any
	argPos := 1

	if req.Role != nil && *req.Role != "" {
		conditions = append(conditions, fmt.Sprintf("rol = $%d", argPos))
		args = append(args, *req.Role)
		argPos++
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(nombre ILIKE $%d OR email ILIKE $%d)", argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM usuarios "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM usuarios %s ORDER BY nombre LIMIT $%d OFFSET $%d",
		userColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM usuarios WHERE id = $1", userColumns), id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Create(ctx context.Context, user User, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO usuarios (sujeto, email, nombre, rol, estado, password_hash, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NOW(), NOW())
		 RETURNING id`,
		user.Subject, user.Email, user.Name, string(user.Role), user.Status, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE usuarios SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"nombre", "rol", "estado"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d AND eliminado_en IS NULL", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE usuarios SET eliminado_en = NOW(), estado = $1, actualizado_en = NOW()
		  WHERE id = $2 AND eliminado_en IS NULL`, "inactivo", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE usuarios SET eliminado_en = NULL, estado = $1, actualizado_en = NOW()
		  WHERE id = $2 AND eliminado_en IS NOT NULL`, "activo", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var role string
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&user.ID, &user.Subject, &user.Email, &user.Name, &role,
		&user.Status, &user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if err != nil {
		return User{}, err
	}
	user.Role = authz.Role(role)
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return user, nil
}
