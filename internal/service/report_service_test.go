package service

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/models"
)

func TestParseReportRange(t *testing.T) {
	assert.Equal(t, ReportMonth, ParseReportRange("month"))
	assert.Equal(t, ReportDay, ParseReportRange("day"))
	assert.Equal(t, ReportDay, ParseReportRange(""))
	assert.Equal(t, ReportDay, ParseReportRange("anything else"))
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		first time.Time
		last  time.Time
	}{
		{
			"mid June",
			time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			"February in a leap year",
			time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			"December rolls into the next year",
			time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := monthBounds(tt.now)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestBuildReportRows(t *testing.T) {
	employee := &models.User{ID: 7, FirstName: "ivan", LastName: "petrov", MiddleName: "sergeevich"}
	employeeID := employee.ID

	orders := []*models.Order{
		{
			ID:           3,
			Name:         "Birthday cake",
			Price:        decimalFromString(t, "2500.5"),
			EmployeeID:   &employeeID,
			Employee:     employee,
			CreationTime: time.Date(2025, 6, 15, 9, 5, 0, 0, time.UTC),
		},
		{
			ID:           4,
			Name:         "Flowers",
			Price:        decimalFromString(t, "900"),
			CreationTime: time.Date(2025, 6, 15, 17, 45, 0, 0, time.UTC),
		},
	}

	rows := buildReportRows(orders)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"3", "Birthday cake", "Petrov I. S.", "15-06-2025", "09:05", "2500.50"}, rows[0])
	assert.Equal(t, []string{"4", "Flowers", "—", "15-06-2025", "17:45", "900.00"}, rows[1])
}

func TestReportService_Generate_DayReport(t *testing.T) {
	env := newTestEnv()

	seedOrderAt(t, env, "today", testNow, nil, false)
	seedOrderAt(t, env, "yesterday", testNow.AddDate(0, 0, -1), nil, false)

	report, err := env.reportService.Generate(context.Background(), staffUser(), ReportDay)
	require.NoError(t, err)

	assert.Equal(t, "Report (15-06-2025).pdf", report.Filename)
	assert.True(t, bytes.HasPrefix(report.Content, []byte("%PDF")))
}

func TestReportService_Generate_MonthReport(t *testing.T) {
	env := newTestEnv()

	seedOrderAt(t, env, "this month", testNow.AddDate(0, 0, -5), nil, false)

	report, err := env.reportService.Generate(context.Background(), staffUser(), ReportMonth)
	require.NoError(t, err)

	assert.Equal(t, "Report (01-06-2025 - 30-06-2025).pdf", report.Filename)
	assert.NotEmpty(t, report.Content)
}

func TestReportService_Generate_Deterministic(t *testing.T) {
	env := newTestEnv()
	seedOrderAt(t, env, "today", testNow, nil, false)

	first, err := env.reportService.Generate(context.Background(), staffUser(), ReportDay)
	require.NoError(t, err)
	second, err := env.reportService.Generate(context.Background(), staffUser(), ReportDay)
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
}

func TestReportService_Generate_MissingFontFallsBack(t *testing.T) {
	env := newTestEnv()
	seedOrderAt(t, env, "today", testNow, nil, false)

	// The default configuration points at a font file that may not exist;
	// the export must still produce a PDF.
	svc := NewReportService(env.queryService, env.policy, env.clock, "fonts/DejaVuSans.ttf", testLogger())

	report, err := svc.Generate(context.Background(), staffUser(), ReportDay)
	require.NoError(t, err)
	assert.Equal(t, "Report (15-06-2025).pdf", report.Filename)
	assert.True(t, bytes.HasPrefix(report.Content, []byte("%PDF")))
}

func TestReportService_Generate_WithConfiguredFont(t *testing.T) {
	var fontPath string
	for _, candidate := range []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/Library/Fonts/Arial Unicode.ttf",
	} {
		if _, err := os.Stat(candidate); err == nil {
			fontPath = candidate
			break
		}
	}
	if fontPath == "" {
		t.Skip("no TTF font available on this system")
	}

	env := newTestEnv()
	seedOrderAt(t, env, "today", testNow, nil, false)

	svc := NewReportService(env.queryService, env.policy, env.clock, fontPath, testLogger())

	report, err := svc.Generate(context.Background(), staffUser(), ReportDay)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(report.Content, []byte("%PDF")))
}

func TestReportService_Generate_EmployeeForbidden(t *testing.T) {
	env := newTestEnv()
	employee := employeeUser(7)

	_, err := env.reportService.Generate(context.Background(), employee, ReportDay)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReportService_Generate_AnonymousUnauthenticated(t *testing.T) {
	env := newTestEnv()

	_, err := env.reportService.Generate(context.Background(), nil, ReportDay)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
