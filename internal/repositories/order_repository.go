package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"orderdesk/models"
	"orderdesk/pkg/database"
	"orderdesk/pkg/logger"
)

// OrderRepositoryInterface is the persistence port for orders. List methods
// return orders newest-first by creation time.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error

	UnassignedOpen(ctx context.Context) ([]*models.Order, error)
	AssignedOpen(ctx context.Context) ([]*models.Order, error)
	Completed(ctx context.Context) ([]*models.Order, error)
	AssignedOpenFor(ctx context.Context, employeeID int64) ([]*models.Order, error)
	CompletedFor(ctx context.Context, employeeID int64) ([]*models.Order, error)
	CreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Order, error)

	CountForEmployee(ctx context.Context, employeeID int64) (int64, error)
	CountDoneForEmployee(ctx context.Context, employeeID int64) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountUnassignedOpen(ctx context.Context) (int64, error)
	CountDone(ctx context.Context) (int64, error)
}

// OrderRepository is the PostgreSQL implementation.
type OrderRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewOrderRepository(db *database.DB, log *logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: log.WithComponent("order_repository"),
	}
}

// selectOrders joins the assigned employee so lists and reports can show a
// display name without extra round trips.
const selectOrders = `
SELECT o.id, o.name, o.client, o.contact_number, o.address, o.description,
       o.payment_method, o.price, o.status, o.employee_id, o.creation_time, o.delivery_date,
       u.id, u.email, u.first_name, u.last_name, u.middle_name, u.is_staff, u.is_superuser
FROM orders o
LEFT JOIN users u ON u.id = o.employee_id`

const orderByNewest = ` ORDER BY o.creation_time DESC`

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		query := `INSERT INTO orders (name, client, contact_number, address, description,
		                              payment_method, price, status, employee_id, creation_time, delivery_date)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		          RETURNING id`
		return tx.QueryRowContext(ctx, query,
			order.Name,
			order.Client,
			order.ContactNumber,
			order.Address,
			order.Description,
			order.PaymentMethod,
			order.Price,
			order.Status,
			order.EmployeeID,
			order.CreationTime,
			order.DeliveryDate,
		).Scan(&order.ID)
	})
	if err != nil {
		r.logger.Error("Failed to insert order", "error", err)
		return fmt.Errorf("insert order: %w", err)
	}

	r.logger.Info("Added new order", "order_id", order.ID, "client", order.Client)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrders+` WHERE o.id = $1`, id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		r.logger.Warn("Order not found", "order_id", id)
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order %d: %w", id, err)
	}
	return order, nil
}

// Update rewrites every mutable field. ID and creation_time are never
// touched.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		query := `UPDATE orders
		          SET name = $2, client = $3, contact_number = $4, address = $5, description = $6,
		              payment_method = $7, price = $8, status = $9, employee_id = $10, delivery_date = $11
		          WHERE id = $1`
		res, err := tx.ExecContext(ctx, query,
			order.ID,
			order.Name,
			order.Client,
			order.ContactNumber,
			order.Address,
			order.Description,
			order.PaymentMethod,
			order.Price,
			order.Status,
			order.EmployeeID,
			order.DeliveryDate,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return models.ErrOrderNotFound
		}
		return nil
	})
	if err == models.ErrOrderNotFound {
		r.logger.Warn("Attempted to update non-existent order", "order_id", order.ID)
		return err
	}
	if err != nil {
		r.logger.Error("Failed to update order", "error", err, "order_id", order.ID)
		return fmt.Errorf("update order %d: %w", order.ID, err)
	}

	r.logger.Info("Updated order", "order_id", order.ID)
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete order", "error", err, "order_id", id)
		return fmt.Errorf("delete order %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.logger.Warn("Attempted to delete non-existent order", "order_id", id)
		return models.ErrOrderNotFound
	}

	r.logger.Info("Deleted order", "order_id", id)
	return nil
}

func (r *OrderRepository) UnassignedOpen(ctx context.Context) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.employee_id IS NULL AND o.status = false`+orderByNewest)
}

func (r *OrderRepository) AssignedOpen(ctx context.Context) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.employee_id IS NOT NULL AND o.status = false`+orderByNewest)
}

func (r *OrderRepository) Completed(ctx context.Context) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.status = true`+orderByNewest)
}

func (r *OrderRepository) AssignedOpenFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.employee_id = $1 AND o.status = false`+orderByNewest, employeeID)
}

func (r *OrderRepository) CompletedFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.employee_id = $1 AND o.status = true`+orderByNewest, employeeID)
}

func (r *OrderRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Order, error) {
	return r.list(ctx, selectOrders+` WHERE o.creation_time BETWEEN $1 AND $2`+orderByNewest, from, to)
}

func (r *OrderRepository) CountForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE employee_id = $1`, employeeID)
}

func (r *OrderRepository) CountDoneForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE employee_id = $1 AND status = true`, employeeID)
}

func (r *OrderRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders`)
}

func (r *OrderRepository) CountUnassignedOpen(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE employee_id IS NULL AND status = false`)
}

func (r *OrderRepository) CountDone(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM orders WHERE status = true`)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order        models.Order
		description  sql.NullString
		employeeID   sql.NullInt64
		deliveryDate sql.NullTime

		empID          sql.NullInt64
		empEmail       sql.NullString
		empFirstName   sql.NullString
		empLastName    sql.NullString
		empMiddleName  sql.NullString
		empIsStaff     sql.NullBool
		empIsSuperuser sql.NullBool
	)

	err := row.Scan(
		&order.ID,
		&order.Name,
		&order.Client,
		&order.ContactNumber,
		&order.Address,
		&description,
		&order.PaymentMethod,
		&order.Price,
		&order.Status,
		&employeeID,
		&order.CreationTime,
		&deliveryDate,
		&empID,
		&empEmail,
		&empFirstName,
		&empLastName,
		&empMiddleName,
		&empIsStaff,
		&empIsSuperuser,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		order.Description = &description.String
	}
	if employeeID.Valid {
		order.EmployeeID = &employeeID.Int64
	}
	if deliveryDate.Valid {
		t := deliveryDate.Time
		order.DeliveryDate = &t
	}
	if empID.Valid {
		order.Employee = &models.User{
			ID:          empID.Int64,
			Email:       empEmail.String,
			FirstName:   empFirstName.String,
			LastName:    empLastName.String,
			MiddleName:  empMiddleName.String,
			IsStaff:     empIsStaff.Bool,
			IsSuperuser: empIsSuperuser.Bool,
		}
	}
	return &order, nil
}
