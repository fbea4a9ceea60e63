package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"orderdesk/internal/repositories"
	"orderdesk/models"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/phone"
)

// Redirect tells the web layer where to send the caller after a status
// toggle: staff go back to the staff list, employees to their own list.
type Redirect string

const (
	RedirectStaffList Redirect = "/order/list"
	RedirectMyList    Redirect = "/order/my"
)

// OrderFields carries the order form payload shared by create and edit.
type OrderFields struct {
	Name          string
	Client        string
	ContactNumber string
	Address       string
	Description   *string
	PaymentMethod models.PaymentMethod
	Price         decimal.Decimal
	EmployeeID    *int64
	DeliveryDate  *time.Time
}

// OrderBuckets is the staff list view: every order, split by state.
type OrderBuckets struct {
	NotAssigned []*models.Order `json:"not_assigned"`
	Assigned    []*models.Order `json:"assigned"`
	Done        []*models.Order `json:"done"`
}

// MyOrders is an employee's personal list view.
type MyOrders struct {
	Assigned []*models.Order `json:"assigned"`
	Done     []*models.Order `json:"done"`
}

type OrderServiceInterface interface {
	Create(ctx context.Context, actor *models.User, fields OrderFields) (*models.Order, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.Order, error)
	StaffBuckets(ctx context.Context, actor *models.User) (*OrderBuckets, error)
	MyOrders(ctx context.Context, actor *models.User) (*MyOrders, error)
	Edit(ctx context.Context, actor *models.User, id int64, fields OrderFields) (*models.Order, error)
	Assign(ctx context.Context, actor *models.User, id int64, employeeID *int64) (*models.Order, error)
	Complete(ctx context.Context, actor *models.User, id int64) (Redirect, error)
	Cancel(ctx context.Context, actor *models.User, id int64) (Redirect, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

// OrderService owns the order lifecycle. Every mutation validates all fields
// and normalizes the contact number before anything is written, so readers
// never see a partially validated record.
type OrderService struct {
	orders  repositories.OrderRepositoryInterface
	users   repositories.UserRepositoryInterface
	queries OrderQueryServiceInterface
	policy  *AccessPolicy
	clock   clock.Clock
	logger  *logger.Logger
}

func NewOrderService(
	orders repositories.OrderRepositoryInterface,
	users repositories.UserRepositoryInterface,
	queries OrderQueryServiceInterface,
	policy *AccessPolicy,
	clk clock.Clock,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		orders:  orders,
		users:   users,
		queries: queries,
		policy:  policy,
		clock:   clk,
		logger:  log.WithComponent("order_service"),
	}
}

// Create makes a new open order. Staff only. Supplying an employee is
// allowed and puts the order straight into the assigned bucket.
func (s *OrderService) Create(ctx context.Context, actor *models.User, fields OrderFields) (*models.Order, error) {
	if err := s.policy.Authorize(actor, ActionCreateOrder, nil); err != nil {
		return nil, err
	}

	order := &models.Order{
		Name:          fields.Name,
		Client:        fields.Client,
		ContactNumber: fields.ContactNumber,
		Address:       fields.Address,
		Description:   fields.Description,
		PaymentMethod: fields.PaymentMethod,
		Price:         fields.Price,
		Status:        false,
		EmployeeID:    fields.EmployeeID,
		CreationTime:  s.clock.Now(),
		DeliveryDate:  fields.DeliveryDate,
	}

	if err := s.validateAndNormalize(ctx, order); err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "client", order.Client, "assigned", order.Assigned())
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, actor *models.User, id int64) (*models.Order, error) {
	if err := s.policy.Authorize(actor, ActionViewOrder, nil); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) StaffBuckets(ctx context.Context, actor *models.User) (*OrderBuckets, error) {
	if err := s.policy.Authorize(actor, ActionViewStaffLists, nil); err != nil {
		return nil, err
	}

	notAssigned, err := s.queries.UnassignedOpen(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := s.queries.AssignedOpen(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.queries.Completed(ctx)
	if err != nil {
		return nil, err
	}

	return &OrderBuckets{NotAssigned: notAssigned, Assigned: assigned, Done: done}, nil
}

func (s *OrderService) MyOrders(ctx context.Context, actor *models.User) (*MyOrders, error) {
	if err := s.policy.Authorize(actor, ActionViewMyLists, nil); err != nil {
		return nil, err
	}

	assigned, err := s.queries.AssignedOpenFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	done, err := s.queries.CompletedFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return &MyOrders{Assigned: assigned, Done: done}, nil
}

// Edit updates every mutable field. Staff may edit any order; the assigned
// employee may edit their own, but changing the assignee stays staff-only.
func (s *OrderService) Edit(ctx context.Context, actor *models.User, id int64, fields OrderFields) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, ActionEditOrder, order); err != nil {
		return nil, err
	}
	if !actor.Elevated() && !sameAssignee(order.EmployeeID, fields.EmployeeID) {
		s.logger.Warn("Employee attempted reassignment", "order_id", id, "actor_id", actor.ID)
		return nil, ErrForbidden
	}

	order.Name = fields.Name
	order.Client = fields.Client
	order.ContactNumber = fields.ContactNumber
	order.Address = fields.Address
	order.Description = fields.Description
	order.PaymentMethod = fields.PaymentMethod
	order.Price = fields.Price
	order.EmployeeID = fields.EmployeeID
	order.DeliveryDate = fields.DeliveryDate
	order.Employee = nil

	if err := s.validateAndNormalize(ctx, order); err != nil {
		s.logger.Warn("Edit failed: invalid data", "error", err, "order_id", id)
		return nil, err
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order edited", "order_id", id, "actor_id", actor.ID)
	return order, nil
}

// Assign sets or clears the order's employee. Staff only.
func (s *OrderService) Assign(ctx context.Context, actor *models.User, id int64, employeeID *int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Authorize(actor, ActionAssignOrder, order); err != nil {
		return nil, err
	}

	if err := s.checkEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	order.EmployeeID = employeeID
	order.Employee = nil

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order assigned", "order_id", id, "employee_id", employeeID)
	return order, nil
}

// Complete marks the order done and reports where to send the caller.
func (s *OrderService) Complete(ctx context.Context, actor *models.User, id int64) (Redirect, error) {
	return s.setStatus(ctx, actor, id, true, ActionCompleteOrder)
}

// Cancel reopens the order, whatever state it was in.
func (s *OrderService) Cancel(ctx context.Context, actor *models.User, id int64) (Redirect, error) {
	return s.setStatus(ctx, actor, id, false, ActionCancelOrder)
}

func (s *OrderService) setStatus(ctx context.Context, actor *models.User, id int64, status bool, action Action) (Redirect, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.policy.Authorize(actor, action, order); err != nil {
		return "", err
	}

	order.Status = status
	order.Employee = nil
	if err := s.orders.Update(ctx, order); err != nil {
		return "", err
	}

	s.logger.Info("Order status changed", "order_id", id, "status", status, "actor_id", actor.ID)

	if actor.Elevated() {
		return RedirectStaffList, nil
	}
	return RedirectMyList, nil
}

// Delete removes the order permanently. Staff only; no recovery path.
func (s *OrderService) Delete(ctx context.Context, actor *models.User, id int64) error {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.policy.Authorize(actor, ActionDeleteOrder, order); err != nil {
		return err
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Order deleted", "order_id", id, "actor_id", actor.ID)
	return nil
}

// validateAndNormalize runs full field validation and then replaces the
// contact number with its canonical international form.
func (s *OrderService) validateAndNormalize(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if err := s.checkEmployee(ctx, order.EmployeeID); err != nil {
		return err
	}

	normalized, err := phone.Normalize(order.ContactNumber)
	if err != nil {
		return models.ValidationErrors{"contact_number": "invalid phone number format"}
	}
	order.ContactNumber = normalized
	return nil
}

func (s *OrderService) checkEmployee(ctx context.Context, employeeID *int64) error {
	if employeeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *employeeID); err != nil {
		if err == models.ErrUserNotFound {
			return models.ValidationErrors{"employee": "selected employee does not exist"}
		}
		return err
	}
	return nil
}

func sameAssignee(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
