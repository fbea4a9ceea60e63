package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/repositories"
	"orderdesk/models"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/logger"
)

// Shared fixtures for the service tests. The in-memory repositories stand in
// for PostgreSQL; the fixed clock makes date windows reproducible.

var testNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.LevelError,
		Format: "text",
		Output: "stderr",
	})
}

func staffUser() *models.User {
	return &models.User{ID: 100, Email: "boss@example.com", FirstName: "Olga", LastName: "Ivanova", IsStaff: true}
}

func employeeUser(id int64) *models.User {
	return &models.User{ID: id, Email: "worker@example.com", FirstName: "Ivan", LastName: "Petrov"}
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testOrderFields() OrderFields {
	return OrderFields{
		Name:          "Birthday cake",
		Client:        "Ivan Petrov",
		ContactNumber: "+79261234567",
		Address:       "Lenina 1, apt 5",
		PaymentMethod: models.PaymentCashOnDelivery,
		Price:         decimal.NewFromInt(2500),
	}
}

type testEnv struct {
	orders   *repositories.InMemoryOrderRepository
	users    *repositories.InMemoryUserRepository
	sessions *repositories.InMemorySessionRepository
	clock    clock.Fixed
	policy   *AccessPolicy

	queryService  *OrderQueryService
	orderService  *OrderService
	userService   *UserService
	reportService *ReportService
}

func newTestEnv() *testEnv {
	log := testLogger()
	users := repositories.NewInMemoryUserRepository()
	orders := repositories.NewInMemoryOrderRepository(users)
	sessions := repositories.NewInMemorySessionRepository()
	clk := clock.Fixed{Time: testNow}
	policy := NewAccessPolicy()

	queryService := NewOrderQueryService(orders, clk, log)

	return &testEnv{
		orders:        orders,
		users:         users,
		sessions:      sessions,
		clock:         clk,
		policy:        policy,
		queryService:  queryService,
		orderService:  NewOrderService(orders, users, queryService, policy, clk, log),
		userService:   NewUserService(users, sessions, orders, policy, clk, 24*time.Hour, log),
		reportService: NewReportService(queryService, policy, clk, "", log),
	}
}
