package confections

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("confection not found")
	ErrStatusConflict = errors.New("confection status changed concurrently")
)

type Repository interface {
	List(ctx context.Context, req ListConfectionsRequest) ([]Confection, int, error)
	Get(ctx context.Context, id int64) (*Confection, error)
	Create(ctx context.Context, confection Confection) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateStatus(ctx context.Context, id int64, from, to ConfectionStatus) error
	AddMaterial(ctx context.Context, usage MaterialUsage) (int64, error)
	ListMaterials(ctx context.Context, confectionID int64) ([]MaterialUsage, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const confectionColumns = `cf.id, cf.pedido_id, p.numero, cf.taller_id, t.nombre,
	cf.descripcion, cf.cantidad, cf.estado, cf.creado_en, cf.actualizado_en`

const confectionFrom = `FROM confecciones cf
	JOIN pedidos p ON p.id = cf.pedido_id
	JOIN talleres t ON t.id = cf.taller_id`

func (r *repository) List(ctx context.Context, req ListConfectionsRequest) ([]Confection, int, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("cf.pedido_id = $%d", argPos))
		args = append(args, *req.OrderID)
		argPos++
	}
	if req.WorkshopID != nil {
		conditions = append(conditions, fmt.Sprintf("cf.taller_id = $%d", argPos))
		args = append(args, *req.WorkshopID)
		argPos++
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("cf.estado = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s %s", confectionFrom, whereClause), args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY cf.creado_en DESC LIMIT $%d OFFSET $%d",
		confectionColumns, confectionFrom, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Confection
	for rows.Next() {
		confection, err := scanConfection(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, confection)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Confection, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE cf.id = $1", confectionColumns, confectionFrom), id)
	confection, err := scanConfection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	materials, err := r.ListMaterials(ctx, id)
	if err != nil {
		return nil, err
	}
	confection.Materials = materials
	return &confection, nil
}

func (r *repository) Create(ctx context.Context, confection Confection) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO confecciones (pedido_id, taller_id, descripcion, cantidad, estado, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id`,
		confection.OrderID, confection.WorkshopID, confection.Description,
		confection.Quantity, confection.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE confecciones SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"taller_id", "descripcion", "cantidad"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
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

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to ConfectionStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE confecciones SET estado = $3, actualizado_en = NOW()
		  WHERE id = $1 AND estado = $2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM confecciones WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *repository) AddMaterial(ctx context.Context, usage MaterialUsage) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO consumos_material (confeccion_id, material, cantidad, unidad, registrado_por, registrado_en)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id`,
		usage.ConfectionID, usage.Material, usage.Quantity, usage.Unit, usage.RecordedBy).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) ListMaterials(ctx context.Context, confectionID int64) ([]MaterialUsage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, confeccion_id, material, cantidad, unidad, registrado_por, registrado_en
		   FROM consumos_material WHERE confeccion_id = $1 ORDER BY registrado_en`, confectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []MaterialUsage
	for rows.Next() {
		var m MaterialUsage
		if err := rows.Scan(&m.ID, &m.ConfectionID, &m.Material, &m.Quantity,
			&m.Unit, &m.RecordedBy, &m.RecordedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func scanConfection(row pgx.Row) (Confection, error) {
	var c Confection
	err := row.Scan(&c.ID, &c.OrderID, &c.OrderNumber, &c.WorkshopID, &c.WorkshopName,
		&c.Description, &c.Quantity, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Confection{}, err
	}
	return c, nil
}
