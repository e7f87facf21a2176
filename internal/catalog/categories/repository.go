package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrAlreadyExists = errors.New("category already exists")
)

type Repository interface {
	List(ctx context.Context, req ListCategoriesRequest) ([]Category, int, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, category Category) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const categoryColumns = `id, nombre, descripcion, activo, creado_en, actualizado_en, eliminado_en`

func (r *repository) List(ctx context.Context, req ListCategoriesRequest) ([]Category, int, error) {
	conditions := []string{"eliminado_en IS NULL"}
	var args []any
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("activo = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("nombre ILIKE $%d", argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categorias "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf("SELECT %s FROM categorias %s ORDER BY nombre LIMIT $%d OFFSET $%d",
		categoryColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, category)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM categorias WHERE id = $1", categoryColumns), id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *repository) Create(ctx context.Context, category Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categorias (nombre, descripcion, activo, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING id`,
		category.Name, category.Description, category.IsActive).Scan(&id)
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
	query := "UPDATE categorias SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"nombre", "descripcion", "activo"} {
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
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categorias SET eliminado_en = NOW(), activo = FALSE, actualizado_en = NOW()
		  WHERE id = $1 AND eliminado_en IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	var description pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return Category{}, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return c, nil
}
