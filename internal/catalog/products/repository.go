package products

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
	ErrNotFound          = errors.New("product not found")
	ErrAlreadyExists     = errors.New("product already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, product Product) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `p.id, p.categoria_id, c.nombre, p.codigo, p.nombre, p.descripcion,
	p.precio, p.stock, p.imagen_url, p.activo, p.creado_en, p.actualizado_en, p.eliminado_en`

const productFrom = `FROM productos p JOIN categorias c ON c.id = p.categoria_id`

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	conditions := []string{"p.eliminado_en IS NULL"}
	var args []any
	argPos := 1

	if req.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.categoria_id = $%d", argPos))
		args = append(args, *req.CategoryID)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.activo = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.nombre ILIKE $%d OR p.codigo ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s %s", productFrom, whereClause), args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY p.nombre LIMIT $%d OFFSET $%d",
		productColumns, productFrom, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, product)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE p.id = $1", productColumns, productFrom), id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO productos (categoria_id, codigo, nombre, descripcion, precio, stock, imagen_url, activo, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 RETURNING id`,
		product.CategoryID, product.Code, product.Name, product.Description,
		product.Price, product.Stock, product.ImageURL, product.IsActive).Scan(&id)
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
	query := "UPDATE productos SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"categoria_id", "nombre", "descripcion", "precio", "imagen_url", "activo"} {
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

// AdjustStock applies a delta atomically. The WHERE guard keeps the
// counter from going negative under concurrent checkouts.
func (r *repository) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	var stock int
	err := r.pool.QueryRow(ctx,
		`UPDATE productos SET stock = stock + $2, actualizado_en = NOW()
		  WHERE id = $1 AND eliminado_en IS NULL AND stock + $2 >= 0
		  RETURNING stock`, id, delta).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, ErrInsufficientStock
		}
		return 0, err
	}
	return stock, nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE productos SET eliminado_en = NOW(), activo = FALSE, actualizado_en = NOW()
		  WHERE id = $1 AND eliminado_en IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var description, imageURL pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Code, &p.Name, &description,
		&p.Price, &p.Stock, &imageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return p, nil
}
