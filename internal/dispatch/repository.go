package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("dispatch not found")
	ErrStatusConflict = errors.New("dispatch status changed concurrently")
)

type Repository interface {
	List(ctx context.Context, req ListDispatchesRequest) ([]Dispatch, int, error)
	Get(ctx context.Context, id int64) (*Dispatch, error)
	GetByTrackingCode(ctx context.Context, code string) (*Dispatch, error)
	Create(ctx context.Context, dispatch Dispatch) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	UpdateStatus(ctx context.Context, id int64, from, to DispatchStatus) error
	MarkDelivered(ctx context.Context, id, confirmedBy int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const dispatchColumns = `d.id, d.pedido_id, p.numero, d.codigo_seguimiento, d.direccion_entrega,
	d.transportista, d.estado, d.notas, d.confirmado_por, d.entregado_en, d.creado_en, d.actualizado_en`

const dispatchFrom = `FROM despachos d JOIN pedidos p ON p.id = d.pedido_id`

func (r *repository) List(ctx context.Context, req ListDispatchesRequest) ([]Dispatch, int, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("d.pedido_id = $%d", argPos))
		args = append(args, *req.OrderID)
		argPos++
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("d.estado = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s %s", dispatchFrom, whereClause), args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY d.creado_en DESC LIMIT $%d OFFSET $%d",
		dispatchColumns, dispatchFrom, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Dispatch
	for rows.Next() {
		dispatch, err := scanDispatch(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, dispatch)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Dispatch, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE d.id = $1", dispatchColumns, dispatchFrom), id)
	return one(row)
}

func (r *repository) GetByTrackingCode(ctx context.Context, code string) (*Dispatch, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE d.codigo_seguimiento = $1", dispatchColumns, dispatchFrom), code)
	return one(row)
}

func one(row pgx.Row) (*Dispatch, error) {
	dispatch, err := scanDispatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dispatch, nil
}

func (r *repository) Create(ctx context.Context, dispatch Dispatch) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO despachos (pedido_id, codigo_seguimiento, direccion_entrega, transportista, estado, notas, creado_en, actualizado_en)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING id`,
		dispatch.OrderID, dispatch.TrackingCode, dispatch.Address, dispatch.Carrier,
		dispatch.Status, dispatch.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE despachos SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"direccion_entrega", "transportista", "notas"} {
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

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to DispatchStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE despachos SET estado = $3, actualizado_en = NOW()
		  WHERE id = $1 AND estado = $2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM despachos WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// MarkDelivered closes the dispatch, recording who confirmed it.
func (r *repository) MarkDelivered(ctx context.Context, id, confirmedBy int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE despachos SET estado = $2, confirmado_por = $3, entregado_en = NOW(), actualizado_en = NOW()
		  WHERE id = $1 AND estado = $4`, id, StatusDelivered, confirmedBy, StatusInTransit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM despachos WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func scanDispatch(row pgx.Row) (Dispatch, error) {
	var d Dispatch
	var carrier, notes pgtype.Text
	var confirmedBy pgtype.Int8
	var deliveredAt pgtype.Timestamptz
	err := row.Scan(&d.ID, &d.OrderID, &d.OrderNumber, &d.TrackingCode, &d.Address,
		&carrier, &d.Status, &notes, &confirmedBy, &deliveredAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Dispatch{}, err
	}
	if carrier.Valid {
		d.Carrier = &carrier.String
	}
	if notes.Valid {
		d.Notes = &notes.String
	}
	if confirmedBy.Valid {
		d.ConfirmedBy = &confirmedBy.Int64
	}
	if deliveredAt.Valid {
		d.DeliveredAt = &deliveredAt.Time
	}
	return d, nil
}
