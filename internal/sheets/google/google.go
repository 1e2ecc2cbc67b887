// Package google mirrors records into a Google spreadsheet through the
// Sheets v4 API, authenticating with a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"lexify/internal/log"
	ports "lexify/internal/sheets"
)

// Config selects the spreadsheet and the service account credentials.
// ServiceAccountJSON takes precedence over ServiceAccountFile.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger

	// Serializes lookups and writes so two upserts of a new id cannot both
	// append a row.
	mu sync.Mutex
}

var (
	_ ports.RecordMirror = (*Client)(nil)
	_ ports.RowReader    = (*Client)(nil)
)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentials, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

func credentialsJSON(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Upsert overwrites the row whose first cell is id, or appends a new row.
func (c *Client) Upsert(ctx context.Context, sheet string, id int64, row []string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rowNum, err := c.findRow(ctx, sheet, id)
	if err != nil {
		return err
	}

	values := &gsheet.ValueRange{Values: [][]any{toCells(row)}}
	if rowNum > 0 {
		rng := fmt.Sprintf("%s!A%d", sheet, rowNum)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A1", sheet)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

// Remove clears the row of id. Rows are cleared rather than deleted so row
// numbers of other records stay stable.
func (c *Client) Remove(ctx context.Context, sheet string, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rowNum, err := c.findRow(ctx, sheet, id)
	if err != nil || rowNum == 0 {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:Z%d", sheet, rowNum, rowNum)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// Rows reads every mirrored row of sheet.
func (c *Client) Rows(ctx context.Context, sheet string) (map[int64][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return rowsByID(resp.Values), nil
}

func (c *Client) findRow(ctx context.Context, sheet string, id int64) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return rowIndex(resp.Values, id), nil
}

// rowIndex returns the 1-based row whose first cell is id, or 0.
func rowIndex(values [][]any, id int64) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellID, ok := parseID(row[0]); ok && cellID == id {
			return i + 1
		}
	}
	return 0
}

// rowsByID skips headers, blank rows and rows without a numeric id.
func rowsByID(values [][]any) map[int64][]string {
	out := make(map[int64][]string, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		id, ok := parseID(row[0])
		if !ok {
			continue
		}
		out[id] = toStrings(row)
	}
	return out
}

func parseID(cell any) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(cell)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toCells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
