// Package google exports month reports to a Google Sheets spreadsheet using
// service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/config"
	"bilancio/internal/engine"
	ports "bilancio/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromConfig builds a Sheets client from the application configuration.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Bilancio"
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets export client created",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", sheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// WriteMonthReport appends one row per account plus a totals row after the
// last occupied row of the sheet.
func (c *Client) WriteMonthReport(ctx context.Context, report engine.MonthReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	startRow := len(resp.Values) + 1

	rows := reportRows(report)
	endRow := startRow + len(rows) - 1
	dataRange := fmt.Sprintf("%s!A%d:F%d", c.sheetName, startRow, endRow)

	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report rows to %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Month report exported",
		"month", report.Month.String(),
		"range", dataRange)
	return dataRange, nil
}

// reportRows flattens a report into sheet rows: month, account, realized,
// pending income, pending expenses, projected. Amounts land as euros so the
// spreadsheet can sum them directly.
func reportRows(report engine.MonthReport) [][]any {
	month := report.Month.String()
	rows := make([][]any, 0, len(report.Projections)+2)
	for _, p := range report.Projections {
		rows = append(rows, []any{
			month,
			p.AccountName,
			euros(p.Realized.Cents),
			euros(p.PendingIncome.Cents),
			euros(p.PendingExpenses.Cents),
			euros(p.Projected.Cents),
		})
	}
	rows = append(rows, []any{
		month,
		"TOTALE",
		euros(report.Totals.Realized.Cents),
		euros(report.Totals.PendingIncome.Cents),
		euros(report.Totals.PendingExpenses.Cents),
		euros(report.Totals.Projected.Cents),
	})
	rows = append(rows, []any{
		month,
		"DISPONIBILE",
		euros(report.Availability.Available.Cents),
		euros(report.Availability.TransfersToReserve.Cents),
		euros(report.Availability.TransfersFromReserve.Cents),
		"",
	})
	return rows
}

func euros(cents int64) float64 {
	return float64(cents) / 100.0
}
