package service

import (
	"context"
	"time"

	"orderdesk/internal/repositories"
	"orderdesk/models"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/logger"
)

// OrderQueryServiceInterface is the read side over orders. Every method
// reflects the persisted state at call time; nothing is cached. Lists come
// back newest-first.
type OrderQueryServiceInterface interface {
	CountForEmployee(ctx context.Context, employeeID int64) (int64, error)
	CountDoneForEmployee(ctx context.Context, employeeID int64) (int64, error)
	UnassignedOpen(ctx context.Context) ([]*models.Order, error)
	AssignedOpen(ctx context.Context) ([]*models.Order, error)
	Completed(ctx context.Context) ([]*models.Order, error)
	AssignedOpenFor(ctx context.Context, employeeID int64) ([]*models.Order, error)
	CompletedFor(ctx context.Context, employeeID int64) ([]*models.Order, error)
	CreatedThisMonth(ctx context.Context) ([]*models.Order, error)
	CreatedToday(ctx context.Context) ([]*models.Order, error)
}

// OrderQueryService answers the date-bucket queries using an injected clock,
// so "today" and "this month" are the server's configured zone, not UTC.
type OrderQueryService struct {
	orders repositories.OrderRepositoryInterface
	clock  clock.Clock
	logger *logger.Logger
}

func NewOrderQueryService(orders repositories.OrderRepositoryInterface, clk clock.Clock, log *logger.Logger) *OrderQueryService {
	return &OrderQueryService{
		orders: orders,
		clock:  clk,
		logger: log.WithComponent("order_query_service"),
	}
}

func (s *OrderQueryService) CountForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return s.orders.CountForEmployee(ctx, employeeID)
}

func (s *OrderQueryService) CountDoneForEmployee(ctx context.Context, employeeID int64) (int64, error) {
	return s.orders.CountDoneForEmployee(ctx, employeeID)
}

func (s *OrderQueryService) UnassignedOpen(ctx context.Context) ([]*models.Order, error) {
	return s.orders.UnassignedOpen(ctx)
}

func (s *OrderQueryService) AssignedOpen(ctx context.Context) ([]*models.Order, error) {
	return s.orders.AssignedOpen(ctx)
}

func (s *OrderQueryService) Completed(ctx context.Context) ([]*models.Order, error) {
	return s.orders.Completed(ctx)
}

func (s *OrderQueryService) AssignedOpenFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return s.orders.AssignedOpenFor(ctx, employeeID)
}

func (s *OrderQueryService) CompletedFor(ctx context.Context, employeeID int64) ([]*models.Order, error) {
	return s.orders.CompletedFor(ctx, employeeID)
}

// CreatedThisMonth covers [first instant of the current month, now].
func (s *OrderQueryService) CreatedThisMonth(ctx context.Context) ([]*models.Order, error) {
	now := s.clock.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.orders.CreatedBetween(ctx, start, now)
}

// CreatedToday covers [00:00:00.000000, 23:59:59.999999] of the current day.
func (s *OrderQueryService) CreatedToday(ctx context.Context) ([]*models.Order, error) {
	now := s.clock.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999000, now.Location())
	return s.orders.CreatedBetween(ctx, start, end)
}
