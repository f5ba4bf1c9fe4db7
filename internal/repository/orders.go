package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/order-assistant/constants"
	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
)

const (
	tableOrders = "orders"
	tableItems  = "order_items"
)

var (
	orderColumns = []string{"id", "order_number", "order_date", "status", "source_filename", "created_at"}
	itemColumns  = []string{"id", "order_id", "row_number", "name", "quantity", "unit", "code", "status"}
)

type OrderRepository interface {
	// Create stores the order and its items in one transaction and fills in
	// the generated ids.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// List returns orders newest first with ItemsCount set and Items empty.
	List(ctx context.Context) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status constants.OrderStatus) error
	GetItem(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error)
	GetItemByID(ctx context.Context, itemID int64) (*entity.OrderItem, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID int64, status constants.ItemStatus) error
	// Delete removes the order with its items and returns what was removed.
	Delete(ctx context.Context, id int64) (*entity.Order, error)
}

type orderRepository struct {
	db     *DB
	now    func() time.Time
	logger *slog.Logger
}

func NewOrderRepository(db *DB, logger *slog.Logger) OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderRepository{db: db, now: time.Now, logger: logger}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.Status == "" {
		order.Status = constants.OrderStatusNew
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now().UTC()
	}
	b := r.db.builder()

	err := r.db.inTx(ctx, func(tx *sql.Tx) error {
		q, args := b.Insert(tableOrders).
			Columns("order_number", "order_date", "status", "source_filename", "created_at").
			Values(order.OrderNumber, dateOnly(order.OrderDate), string(order.Status), order.SourceFilename, order.CreatedAt).
			Returning("id").
			Query()
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&order.ID); err != nil {
			return err
		}

		for i := range order.Items {
			it := &order.Items[i]
			it.OrderID = order.ID
			if it.Status == "" {
				it.Status = constants.ItemStatusPending
			}
			if it.Unit == "" {
				it.Unit = constants.DefaultUnit
			}
			q, args := b.Insert(tableItems).
				Columns("order_id", "row_number", "name", "quantity", "unit", "code", "status").
				Values(it.OrderID, it.RowNumber, it.Name, it.Quantity, it.Unit, it.Code, string(it.Status)).
				Returning("id").
				Query()
			if err := tx.QueryRowContext(ctx, q, args...).Scan(&it.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to create order", "order_number", order.OrderNumber, "error", err)
		return wrapDBError(err, "create order "+order.OrderNumber)
	}
	order.ItemsCount = len(order.Items)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	b := r.db.builder()
	q, args := b.Select(orderColumns...).
		From(b.Table(tableOrders)).
		Where(entsql.EQ("id", id)).
		Query()

	o, err := scanOrder(r.db.SQL().QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, wrapDBError(err, "get order")
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.ItemsCount = len(items)
	return o, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID int64) ([]entity.OrderItem, error) {
	b := r.db.builder()
	q, args := b.Select(itemColumns...).
		From(b.Table(tableItems)).
		Where(entsql.EQ("order_id", orderID)).
		OrderBy("row_number", "id").
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapDBError(err, "list items")
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrapDBError(err, "scan item")
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "list items")
	}
	return items, nil
}

func (r *orderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	b := r.db.builder()
	q, args := b.Select().Count().
		From(b.Table(tableOrders)).
		Where(entsql.EQ("order_number", number)).
		Query()

	var n int
	if err := r.db.SQL().QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, wrapDBError(err, "check order number")
	}
	return n > 0, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	b := r.db.builder()
	o := b.Table(tableOrders)
	i := b.Table(tableItems).As("i")

	cols := o.Columns(orderColumns...)
	cols = append(cols, entsql.As(entsql.Count(i.C("id")), "items_count"))
	q, args := b.Select(cols...).
		From(o).
		LeftJoin(i).On(o.C("id"), i.C("order_id")).
		GroupBy(o.C("id")).
		OrderBy(entsql.Desc(o.C("created_at")), entsql.Desc(o.C("id"))).
		Query()

	rows, err := r.db.SQL().QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list orders", "error", err)
		return nil, wrapDBError(err, "list orders")
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		var (
			ord    entity.Order
			status string
		)
		if err := rows.Scan(&ord.ID, &ord.OrderNumber, timeScanner{&ord.OrderDate}, &status,
			&ord.SourceFilename, timeScanner{&ord.CreatedAt}, &ord.ItemsCount); err != nil {
			return nil, wrapDBError(err, "scan order")
		}
		ord.Status = constants.OrderStatus(status)
		ord.OrderDate = dateOnly(ord.OrderDate)
		out = append(out, &ord)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "list orders")
	}
	return out, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status constants.OrderStatus) error {
	q, args := r.db.builder().Update(tableOrders).
		Set("status", string(status)).
		Where(entsql.EQ("id", id)).
		Query()
	return r.execOne(ctx, "update order status", q, args)
}

func (r *orderRepository) GetItem(ctx context.Context, orderID, itemID int64) (*entity.OrderItem, error) {
	b := r.db.builder()
	q, args := b.Select(itemColumns...).
		From(b.Table(tableItems)).
		Where(entsql.And(entsql.EQ("id", itemID), entsql.EQ("order_id", orderID))).
		Query()
	it, err := scanItem(r.db.SQL().QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, wrapDBError(err, "get item")
	}
	return it, nil
}

func (r *orderRepository) GetItemByID(ctx context.Context, itemID int64) (*entity.OrderItem, error) {
	b := r.db.builder()
	q, args := b.Select(itemColumns...).
		From(b.Table(tableItems)).
		Where(entsql.EQ("id", itemID)).
		Query()
	it, err := scanItem(r.db.SQL().QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, wrapDBError(err, "get item")
	}
	return it, nil
}

func (r *orderRepository) UpdateItemStatus(ctx context.Context, orderID, itemID int64, status constants.ItemStatus) error {
	q, args := r.db.builder().Update(tableItems).
		Set("status", string(status)).
		Where(entsql.And(entsql.EQ("id", itemID), entsql.EQ("order_id", orderID))).
		Query()
	return r.execOne(ctx, "update item status", q, args)
}

func (r *orderRepository) Delete(ctx context.Context, id int64) (*entity.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b := r.db.builder()

	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		q, args := b.Delete(tableItems).Where(entsql.EQ("order_id", id)).Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
		q, args = b.Delete(tableOrders).Where(entsql.EQ("id", id)).Query()
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to delete order", "order_id", id, "error", err)
		return nil, wrapDBError(err, "delete order")
	}
	return o, nil
}

func (r *orderRepository) execOne(ctx context.Context, op, q string, args []any) error {
	res, err := r.db.SQL().ExecContext(ctx, q, args...)
	if err != nil {
		return wrapDBError(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err, op)
	}
	if n == 0 {
		return common.NewAppError("NOT_FOUND", op+": not found", common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, timeScanner{&o.OrderDate}, &status,
		&o.SourceFilename, timeScanner{&o.CreatedAt}); err != nil {
		return nil, err
	}
	o.Status = constants.OrderStatus(status)
	o.OrderDate = dateOnly(o.OrderDate)
	return &o, nil
}

func scanItem(row rowScanner) (*entity.OrderItem, error) {
	var (
		it     entity.OrderItem
		code   sql.NullString
		status string
	)
	if err := row.Scan(&it.ID, &it.OrderID, &it.RowNumber, &it.Name, &it.Quantity, &it.Unit, &code, &status); err != nil {
		return nil, err
	}
	if code.Valid {
		c := code.String
		it.Code = &c
	}
	it.Status = constants.ItemStatus(status)
	return &it, nil
}
