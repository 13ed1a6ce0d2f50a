package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"finweb/internal/core"
	"finweb/internal/log"
)

// ErrMissingCredentials is returned when neither credentials nor client
// options are supplied.
var ErrMissingCredentials = errors.New("missing service account credentials")

// SheetsConfig configures the Sheets exporter.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte

	// Attempts and RetryDelay bound retries on HTTP 429 (defaults: 3, 2s).
	Attempts   uint
	RetryDelay time.Duration
}

// SheetsExporter appends a month's expenses to a spreadsheet tab.
type SheetsExporter struct {
	svc    *sheets.Service
	cfg    SheetsConfig
	logger *log.Logger
}

// NewSheetsExporter builds the Sheets service from service account
// credentials. Extra client options are appended after the credentials.
func NewSheetsExporter(ctx context.Context, cfg SheetsConfig, logger *log.Logger, opts ...option.ClientOption) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Expenses"
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if logger == nil {
		logger = log.Discard()
	}

	var clientOpts []option.ClientOption
	if len(cfg.CredentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, cfg.CredentialsJSON, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	} else if len(opts) == 0 {
		return nil, ErrMissingCredentials
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:    svc,
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentExport),
	}, nil
}

// Export appends one row per expense and returns the number of rows written.
func (x *SheetsExporter) Export(ctx context.Context, month core.Month, expenses []core.Expense, names map[int64]string) (int, error) {
	if len(expenses) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		row := Row(e, names)
		values = append(values, []any{row[0], row[1], e.Amount.InexactFloat64(), row[3]})
	}

	writeRange := fmt.Sprintf("%s!A1:D1", x.cfg.SheetName)
	req := sheets.ValueRange{Values: values}

	err := retry.Do(
		func() error {
			_, err := x.svc.Spreadsheets.Values.Append(x.cfg.SpreadsheetID, writeRange, &req).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				x.logger.WarnContext(ctx, "Sheets rate limited, will retry", log.FieldError, err.Error())
				return true
			}
			return false
		}),
		retry.Attempts(x.cfg.Attempts),
		retry.Delay(x.cfg.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, fmt.Errorf("append %s to sheet: %w", month, err)
	}

	x.logger.InfoContext(ctx, "Exported expenses to sheet",
		log.FieldMonth, month.String(), log.FieldCount, len(values))
	return len(values), nil
}
