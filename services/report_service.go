package services

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"time"

	"github.com/anjiri1684/school_admin/apperrors"
	"github.com/anjiri1684/school_admin/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

//go:embed templates/finance_report.html
var financeReportHTML string

var financeReportTmpl = template.Must(template.New("finance_report").Parse(financeReportHTML))

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints HTML through a headless Chrome.
type ChromeRenderer struct {
	Timeout time.Duration
}

func (r ChromeRenderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

type reportMonth struct {
	Name    string
	Income  float64
	Expense float64
	Net     float64
}

type financeReport struct {
	Year         int
	GeneratedAt  string
	Months       []reportMonth
	Records      []models.FinanceRecord
	TotalIncome  float64
	TotalExpense float64
	Net          float64
}

// ReportService produces the yearly finance statement.
type ReportService struct {
	dashboard *DashboardService
	renderer  PDFRenderer
	log       zerolog.Logger
	now       func() time.Time
}

func NewReportService(dashboard *DashboardService, renderer PDFRenderer, log zerolog.Logger) *ReportService {
	return &ReportService{dashboard: dashboard, renderer: renderer, log: log, now: utcNow}
}

func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

func (s *ReportService) FinanceHTML(ctx context.Context, caller models.Identity, year int) (string, error) {
	if err := authorize(caller, models.CapManageFinance); err != nil {
		return "", err
	}
	if year <= 0 {
		year = s.now().Year()
	}
	records, err := s.dashboard.FinanceForYear(ctx, year)
	if err != nil {
		return "", err
	}

	report := financeReport{
		Year:        year,
		GeneratedAt: s.now().Format("January 2, 2006 15:04 MST"),
		Months:      make([]reportMonth, 12),
		Records:     records,
	}
	for i := range report.Months {
		report.Months[i].Name = time.Month(i + 1).String()
	}
	for _, b := range FinanceBuckets(records) {
		m := &report.Months[b.Month-1]
		if b.Type == models.FinanceIncome {
			m.Income += b.Total
			report.TotalIncome += b.Total
		} else {
			m.Expense += b.Total
			report.TotalExpense += b.Total
		}
		m.Net = m.Income - m.Expense
	}
	report.Net = report.TotalIncome - report.TotalExpense

	var rendered bytes.Buffer
	if err := financeReportTmpl.Execute(&rendered, report); err != nil {
		return "", apperrors.Internal(err)
	}
	return rendered.String(), nil
}

func (s *ReportService) FinancePDF(ctx context.Context, caller models.Identity, year int) ([]byte, error) {
	htmlContent, err := s.FinanceHTML(ctx, caller, year)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.Render(ctx, htmlContent)
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("🔥 Failed to generate PDF")
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "Report rendering unavailable", err)
	}
	return pdf, nil
}
