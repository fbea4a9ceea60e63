package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"orderdesk/models"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/logger"
)

// ReportRange selects the reporting window.
type ReportRange int

const (
	ReportDay ReportRange = iota
	ReportMonth
)

// ParseReportRange maps the export form's range field: "month" selects the
// month report, anything else the day report.
func ParseReportRange(value string) ReportRange {
	if value == "month" {
		return ReportMonth
	}
	return ReportDay
}

// Report is a rendered PDF ready to be sent as an attachment.
type Report struct {
	Filename string
	Content  []byte
}

type ReportServiceInterface interface {
	Generate(ctx context.Context, actor *models.User, rng ReportRange) (*Report, error)
}

// ReportService renders the periodic order summary. It only reads; given the
// same order set and clock it produces identical bytes.
type ReportService struct {
	queries  OrderQueryServiceInterface
	policy   *AccessPolicy
	clock    clock.Clock
	fontPath string
	logger   *logger.Logger
}

// NewReportService builds the generator. fontPath points at a UTF-8 TTF font
// carrying Cyrillic glyphs; the report text is Russian.
func NewReportService(queries OrderQueryServiceInterface, policy *AccessPolicy, clk clock.Clock, fontPath string, log *logger.Logger) *ReportService {
	return &ReportService{
		queries:  queries,
		policy:   policy,
		clock:    clk,
		fontPath: fontPath,
		logger:   log.WithComponent("report_service"),
	}
}

const reportDateLayout = "02-01-2006"

var reportHeader = []string{"№", "Название", "Исполнитель", "Дата", "Время", "Цена"}

func (s *ReportService) Generate(ctx context.Context, actor *models.User, rng ReportRange) (*Report, error) {
	if err := s.policy.Authorize(actor, ActionExportReport, nil); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var (
		orders     []*models.Order
		err        error
		descriptor string
		subtitle   string
	)
	switch rng {
	case ReportMonth:
		orders, err = s.queries.CreatedThisMonth(ctx)
		first, last := monthBounds(now)
		descriptor = first.Format(reportDateLayout) + " - " + last.Format(reportDateLayout)
		subtitle = fmt.Sprintf("Отчет по заказам с %s по %s", first.Format(reportDateLayout), last.Format(reportDateLayout))
	default:
		orders, err = s.queries.CreatedToday(ctx)
		descriptor = now.Format(reportDateLayout)
		subtitle = fmt.Sprintf("Отчет по заказам за %s", descriptor)
	}
	if err != nil {
		return nil, err
	}

	content, err := s.render(subtitle, buildReportRows(orders), now)
	if err != nil {
		s.logger.Error("Failed to render report", "error", err)
		return nil, err
	}

	s.logger.Info("Report generated", "range_descriptor", descriptor, "orders", len(orders))
	return &Report{
		Filename: fmt.Sprintf("Report (%s).pdf", descriptor),
		Content:  content,
	}, nil
}

// monthBounds returns the first day of now's month and its last day, the
// latter computed as the day before the first day of the following month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return first, last
}

// buildReportRows turns orders into table cells: id, name, employee display
// value, creation date, creation time, price.
func buildReportRows(orders []*models.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, order := range orders {
		employee := "—"
		if order.Employee != nil {
			employee = order.Employee.DisplayName()
		}
		rows = append(rows, []string{
			strconv.FormatInt(order.ID, 10),
			order.Name,
			employee,
			order.CreationTime.Format(reportDateLayout),
			order.CreationTime.Format("15:04"),
			order.Price.StringFixed(2),
		})
	}
	return rows
}

func (s *ReportService) render(subtitle string, rows [][]string, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)

	// Without a UTF-8 font the Cyrillic text renders wrong, but the export
	// still works; a missing font file must not take the endpoint down.
	font := "Helvetica"
	if s.fontPath != "" {
		if _, err := os.Stat(s.fontPath); err == nil {
			font = "report"
			pdf.AddUTF8Font(font, "", s.fontPath)
		} else {
			s.logger.Warn("Report font not found, falling back to core font", "path", s.fontPath)
		}
	}

	pdf.AddPage()

	pdf.SetFont(font, "", 18)
	pdf.CellFormat(0, 10, "Отчет", "", 1, "C", false, 0, "")

	pdf.SetFont(font, "", 14)
	pdf.CellFormat(0, 8, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{12, 58, 45, 25, 20, 30}

	pdf.SetFont(font, "", 11)
	for i, title := range reportHeader {
		pdf.CellFormat(widths[i], 9, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 10)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
