// Package google exports expenses to a Google Sheets spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"moneymate/internal/core"
	"moneymate/internal/log"
	"moneymate/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID string
	// SheetName defaults to "Expenses".
	SheetName string

	// ServiceAccountJSON takes precedence over ServiceAccountFile.
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with the configured service
// account. Extra options are appended after the credentials, so tests can
// point the client at a local endpoint.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger, extra ...goption.ClientOption) (*gsheet.Service, error) {
	var opts []goption.ClientOption

	switch {
	case len(extra) > 0 && cfg.ServiceAccountJSON == "" && cfg.ServiceAccountFile == "":
		// Caller supplies authentication.
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		logger.DebugContext(ctx, "Using inline service account credentials")
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		logger.DebugContext(ctx, "Reading service account file", "path", cfg.ServiceAccountFile)
		credentialsJSON, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts = append(opts, goption.WithCredentialsJSON(credentialsJSON))
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))
	opts = append(opts, extra...)

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export appends the expenses not yet present in the sheet. Column A holds
// the expense id; a header row is written when the sheet is empty.
func (c *Client) Export(ctx context.Context, expenses []core.Expense) (sheets.Result, error) {
	if c.svc == nil {
		return sheets.Result{}, errors.New("sheets service not initialized")
	}

	ids, rowCount, err := c.readCol(ctx, "A:A")
	if err != nil {
		return sheets.Result{}, fmt.Errorf("failed to read existing ids: %w", err)
	}
	empty := rowCount == 0

	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	rows, skipped := sheets.Pending(expenses, existing)

	if len(rows) == 0 {
		return sheets.Result{Skipped: skipped}, nil
	}

	if empty {
		rows = append([][]any{sheets.Header}, rows...)
	}
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1(c.sheetName, "A:E"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return sheets.Result{}, fmt.Errorf("failed to append to sheet %s: %w", c.sheetName, err)
	}

	appended := len(rows)
	if empty {
		appended--
	}
	res := sheets.Result{Appended: appended, Skipped: skipped}
	if resp.Updates != nil {
		res.Range = resp.Updates.UpdatedRange
	}

	c.logger.InfoContext(ctx, "Exported expenses",
		log.FieldOperation, "export",
		"appended", res.Appended,
		"skipped", res.Skipped,
		"range", res.Range)
	return res, nil
}

// readCol returns the distinct values of col and the number of rows the
// sheet reported for it.
func (c *Client) readCol(ctx context.Context, col string) ([]string, int, error) {
	rng := a1(c.sheetName, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return columnValues(resp.Values), len(resp.Values), nil
}
