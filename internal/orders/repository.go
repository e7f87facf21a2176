package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telaris-erp/telaris/internal/platform/db"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

type Repository interface {
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	Get(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	Create(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	ReplaceItems(ctx context.Context, orderID int64, items []OrderItem, total float64) error
	UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `p.id, p.numero, p.cliente_id, c.nombre, p.creado_por, p.estado,
	p.notas, p.fecha_entrega, p.total, p.creado_en, p.actualizado_en`

const orderFrom = `FROM pedidos p JOIN clientes c ON c.id = p.cliente_id`

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	conditions := []string{"1=1"}
	var args []any
	argPos := 1

	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("p.cliente_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.estado = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("p.creado_en >= $%d", argPos))
		args = append(args, *req.From)
		argPos++
	}
	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("p.creado_en < $%d", argPos))
		args = append(args, *req.To)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s %s", orderFrom, whereClause), args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY p.creado_en DESC LIMIT $%d OFFSET $%d",
		orderColumns, orderFrom, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, order)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE p.id = $1", orderColumns, orderFrom), id)
	return r.hydrate(ctx, row)
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s %s WHERE p.numero = $1", orderColumns, orderFrom), number)
	return r.hydrate(ctx, row)
}

func (r *repository) hydrate(ctx context.Context, row pgx.Row) (*Order, error) {
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *repository) listItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, pedido_id, producto_id, nombre_producto, cantidad, precio_unitario, subtotal
		   FROM pedido_items WHERE pedido_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts the order and its line items in one transaction.
func (r *repository) Create(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO pedidos (numero, cliente_id, creado_por, estado, notas, fecha_entrega, total, creado_en, actualizado_en)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			 RETURNING id`,
			order.Number, order.ClientID, order.CreatedBy, order.Status,
			order.Notes, order.DeliveryDate, order.Total).Scan(&id)
		if err != nil {
			return err
		}
		return insertItems(ctx, tx, id, order.Items)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE pedidos SET actualizado_en = NOW()"
	var args []any
	argPos := 1
	for _, col := range []string{"notas", "fecha_entrega"} {
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

// ReplaceItems swaps the full line set and the order total atomically.
func (r *repository) ReplaceItems(ctx context.Context, orderID int64, items []OrderItem, total float64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM pedido_items WHERE pedido_id = $1`, orderID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, orderID, items); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE pedidos SET total = $2, actualizado_en = NOW() WHERE id = $1`, orderID, total)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateStatus moves the order from one state to another. The WHERE
// guard on the current state detects concurrent changes.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pedidos SET estado = $3, actualizado_en = NOW()
		  WHERE id = $1 AND estado = $2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM pedidos WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []OrderItem) error {
	for _, it := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO pedido_items (pedido_id, producto_id, nombre_producto, cantidad, precio_unitario, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var createdBy pgtype.Int8
	var notes pgtype.Text
	var deliveryDate pgtype.Timestamptz
	err := row.Scan(&o.ID, &o.Number, &o.ClientID, &o.ClientName, &createdBy, &o.Status,
		&notes, &deliveryDate, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if createdBy.Valid {
		o.CreatedBy = &createdBy.Int64
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if deliveryDate.Valid {
		o.DeliveryDate = &deliveryDate.Time
	}
	return o, nil
}
