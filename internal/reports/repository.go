package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	OrderSummary(ctx context.Context, period Range) ([]OrderSummaryRow, error)
	DispatchSummary(ctx context.Context, period Range) ([]DispatchSummaryRow, error)
	TopProducts(ctx context.Context, period Range, limit int) ([]TopProductRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func rangeClause(period Range, column string, argPos *int, args *[]any) string {
	clause := ""
	if !period.From.IsZero() {
		clause += fmt.Sprintf(" AND %s >= $%d", column, *argPos)
		*args = append(*args, period.From)
		*argPos++
	}
	if !period.To.IsZero() {
		clause += fmt.Sprintf(" AND %s < $%d", column, *argPos)
		*args = append(*args, period.To)
		*argPos++
	}
	return clause
}

func (r *repository) OrderSummary(ctx context.Context, period Range) ([]OrderSummaryRow, error) {
	var args []any
	argPos := 1
	query := `SELECT estado, COUNT(*), COALESCE(SUM(total), 0)
	            FROM pedidos WHERE 1=1` +
		rangeClause(period, "creado_en", &argPos, &args) +
		` GROUP BY estado ORDER BY estado`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderSummaryRow
	for rows.Next() {
		var row OrderSummaryRow
		if err := rows.Scan(&row.Status, &row.Count, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) DispatchSummary(ctx context.Context, period Range) ([]DispatchSummaryRow, error) {
	var args []any
	argPos := 1
	query := `SELECT estado, COUNT(*)
	            FROM despachos WHERE 1=1` +
		rangeClause(period, "creado_en", &argPos, &args) +
		` GROUP BY estado ORDER BY estado`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DispatchSummaryRow
	for rows.Next() {
		var row DispatchSummaryRow
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, period Range, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var args []any
	argPos := 1
	query := `SELECT i.producto_id, i.nombre_producto, SUM(i.cantidad), SUM(i.subtotal)
	            FROM pedido_items i
	            JOIN pedidos p ON p.id = i.pedido_id
	           WHERE p.estado = 'entregado'` +
		rangeClause(period, "p.creado_en", &argPos, &args) +
		fmt.Sprintf(` GROUP BY i.producto_id, i.nombre_producto
	           ORDER BY SUM(i.cantidad) DESC LIMIT $%d`, argPos)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopProductRow
	for rows.Next() {
		var row TopProductRow
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.Units, &row.Revenue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
