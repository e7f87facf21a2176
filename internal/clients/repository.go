package clients

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
	ErrNotFound      = errors.New("client not found")
	ErrAlreadyExists = errors.New("client already exists")
)

// Repository defines persistence for clientes.
type Repository interface {
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Get(ctx context.Context, id int64) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	Create(ctx context.Context, client Client) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, nombre, documento, email, telefono, direccion, ciudad, notas, activo, creado_en, actualizado_en, eliminado_en`

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	conditions := []string{"eliminado_en IS NULL"}
	var args []any
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("activo = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		pattern := "%" + *req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(nombre ILIKE $%d OR email ILIKE $%d OR documento ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clientes "+whereClause, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM clientes %s ORDER BY nombre LIMIT $%d OFFSET $%d",
		clientColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, client)
	}
	return clients, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM clientes WHERE id = $1", clientColumns), id)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Client, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM clientes WHERE email = $1 AND eliminado_en IS NULL", clientColumns), email)
	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *repository) Create(ctx context.Context, client Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clientes (nombre, documento, email, telefono, direccion, ciudad, notas, activo, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		 RETURNING id`,
		client.Name, client.Document, client.Email, client.Phone,
		client.Address, client.City, client.Notes, client.IsActive).Scan(&id)
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
	query := "UPDATE clientes SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"nombre", "documento", "email", "telefono", "direccion", "ciudad", "notas", "activo"} {
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
		`UPDATE clientes SET eliminado_en = NOW(), activo = FALSE, actualizado_en = NOW()
		  WHERE id = $1 AND eliminado_en IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	var document, email, phone, address, city, notes pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &document, &email, &phone, &address, &city, &notes,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return Client{}, err
	}
	if document.Valid {
		c.Document = &document.String
	}
	if email.Valid {
		c.Email = &email.String
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	if city.Valid {
		c.City = &city.String
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return c, nil
}
