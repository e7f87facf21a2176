package workshops

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
	ErrNotFound      = errors.New("workshop not found")
	ErrAlreadyExists = errors.New("workshop already exists")
)

type Repository interface {
	List(ctx context.Context, req ListWorkshopsRequest) ([]Workshop, int, error)
	Get(ctx context.Context, id int64) (*Workshop, error)
	Create(ctx context.Context, workshop Workshop) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const workshopColumns = `id, nombre, representante_id, telefono, direccion, ciudad, capacidad, activo, creado_en, actualizado_en, eliminado_en`

func (r *repository) List(ctx context.Context, req ListWorkshopsRequest) ([]Workshop, int, error) {
	conditions := []string{"eliminado_en IS NULL"}
	var args []any
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("activo = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(nombre ILIKE $%d OR ciudad ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM talleres "+whereClause, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM talleres %s ORDER BY nombre LIMIT $%d OFFSET $%d",
		workshopColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workshops []Workshop
	for rows.Next() {
		workshop, err := scanWorkshop(rows)
		if err != nil {
			return nil, 0, err
		}
		workshops = append(workshops, workshop)
	}
	return workshops, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Workshop, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM talleres WHERE id = $1", workshopColumns), id)
	workshop, err := scanWorkshop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workshop, nil
}

func (r *repository) Create(ctx context.Context, workshop Workshop) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO talleres (nombre, representante_id, telefono, direccion, ciudad, capacidad, activo, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING id`,
		workshop.Name, workshop.RepresentativeID, workshop.Phone, workshop.Address,
		workshop.City, workshop.Capacity, workshop.IsActive).Scan(&id)
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
	query := "UPDATE talleres SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"nombre", "representante_id", "telefono", "direccion", "ciudad", "capacidad", "activo"} {
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
		`UPDATE talleres SET eliminado_en = NOW(), activo = FALSE, actualizado_en = NOW()
		  WHERE id = $1 AND eliminado_en IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkshop(row pgx.Row) (Workshop, error) {
	var ws Workshop
	var representativeID pgtype.Int8
	var phone, address, city pgtype.Text
	var deletedAt pgtype.Timestamptz
	err := row.Scan(&ws.ID, &ws.Name, &representativeID, &phone, &address, &city,
		&ws.Capacity, &ws.IsActive, &ws.CreatedAt, &ws.UpdatedAt, &deletedAt)
	if err != nil {
		return Workshop{}, err
	}
	if representativeID.Valid {
		ws.RepresentativeID = &representativeID.Int64
	}
	if phone.Valid {
		ws.Phone = &phone.String
	}
	if address.Valid {
		ws.Address = &address.String
	}
	if city.Valid {
		ws.City = &city.String
	}
	if deletedAt.Valid {
		ws.DeletedAt = &deletedAt.Time
	}
	return ws, nil
}
