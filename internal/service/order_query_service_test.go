package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/models"
)

func seedOrderAt(t *testing.T, env *testEnv, name string, created time.Time, employeeID *int64, done bool) *models.Order {
	t.Helper()

	order := &models.Order{
		Name:          name,
		Client:        "Client",
		ContactNumber: "+7 926 123-45-67",
		Address:       "Lenina 1",
		PaymentMethod: models.PaymentPrepaid,
		Status:        done,
		EmployeeID:    employeeID,
		CreationTime:  created,
	}
	require.NoError(t, env.orders.Create(context.Background(), order))
	return order
}

func orderNames(orders []*models.Order) []string {
	names := make([]string, 0, len(orders))
	for _, order := range orders {
		names = append(names, order.Name)
	}
	return names
}

func TestOrderQueryService_CreatedToday(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seedOrderAt(t, env, "midnight", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "morning", time.Date(2025, 6, 15, 9, 15, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "last instant", time.Date(2025, 6, 15, 23, 59, 59, 999999000, time.UTC), nil, false)
	seedOrderAt(t, env, "yesterday", time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "tomorrow", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), nil, false)

	orders, err := env.queryService.CreatedToday(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"midnight", "morning", "last instant"}, orderNames(orders))
}

func TestOrderQueryService_CreatedThisMonth(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seedOrderAt(t, env, "first of month", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "mid month", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "right now", testNow, nil, false)
	seedOrderAt(t, env, "previous month", time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC), nil, false)
	// Created after "now" on the same day; the month window ends at now.
	seedOrderAt(t, env, "later today", time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC), nil, false)

	orders, err := env.queryService.CreatedThisMonth(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first of month", "mid month", "right now"}, orderNames(orders))
}

func TestOrderQueryService_ListsComeBackNewestFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seedOrderAt(t, env, "older", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "newest", time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC), nil, false)
	seedOrderAt(t, env, "oldest", time.Date(2025, 6, 15, 7, 0, 0, 0, time.UTC), nil, false)

	orders, err := env.queryService.UnassignedOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "older", "oldest"}, orderNames(orders))
}

func TestOrderQueryService_BucketsAreDisjoint(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	employeeID := int64(7)
	seedOrderAt(t, env, "unassigned open", testNow, nil, false)
	seedOrderAt(t, env, "assigned open", testNow, &employeeID, false)
	seedOrderAt(t, env, "done assigned", testNow, &employeeID, true)
	seedOrderAt(t, env, "done unassigned", testNow, nil, true)

	unassigned, err := env.queryService.UnassignedOpen(ctx)
	require.NoError(t, err)
	assigned, err := env.queryService.AssignedOpen(ctx)
	require.NoError(t, err)
	done, err := env.queryService.Completed(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"unassigned open"}, orderNames(unassigned))
	assert.Equal(t, []string{"assigned open"}, orderNames(assigned))
	assert.ElementsMatch(t, []string{"done assigned", "done unassigned"}, orderNames(done))
}

func TestOrderQueryService_PerEmployeeLists(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	mine := int64(7)
	other := int64(8)
	seedOrderAt(t, env, "my open", testNow, &mine, false)
	seedOrderAt(t, env, "my done", testNow, &mine, true)
	seedOrderAt(t, env, "their open", testNow, &other, false)

	open, err := env.queryService.AssignedOpenFor(ctx, mine)
	require.NoError(t, err)
	done, err := env.queryService.CompletedFor(ctx, mine)
	require.NoError(t, err)

	assert.Equal(t, []string{"my open"}, orderNames(open))
	assert.Equal(t, []string{"my done"}, orderNames(done))
}
