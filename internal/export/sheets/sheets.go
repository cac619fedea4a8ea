// Package sheets appends exported ledger records to a Google Sheets
// spreadsheet. It is the export worker's only target; the web server
// never talks to Google directly.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"ledger/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets export client from environment variables.
// Required: EXPORT_SPREADSHEET_ID.
// Credentials: EXPORT_SERVICE_ACCOUNT_JSON, EXPORT_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: EXPORT_SHEET_NAME (default "Expenses").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("EXPORT_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing EXPORT_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("EXPORT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets service using service-account
// credentials from the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inlineJSON := strings.TrimSpace(os.Getenv("EXPORT_SERVICE_ACCOUNT_JSON"))
	credsFile := strings.TrimSpace(os.Getenv("EXPORT_SERVICE_ACCOUNT_FILE"))
	if inlineJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inlineJSON != "":
		credentialsJSON = []byte(inlineJSON)
	case credsFile != "":
		data, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set EXPORT_SERVICE_ACCOUNT_JSON, EXPORT_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendRecord appends one ledger record as a spreadsheet row:
// date, category, description, amount.
func (c *Client) AppendRecord(ctx context.Context, r core.Record) error {
	row := []interface{}{
		r.Date.Format("2006-01-02"),
		r.Category,
		r.Description,
		r.Amount.String(),
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:D", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	return nil
}
