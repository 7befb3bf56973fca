package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/agrichain/agrichain/internal/config"
	"github.com/agrichain/agrichain/internal/domain/models"
)

const (
	ledgerRange = "Ledger!A:H"
	dateLayout  = "2006-01-02"
)

// Exporter writes the product ledger somewhere durable outside the store.
type Exporter interface {
	ExportProducts(ctx context.Context, products []models.RegisteredProduct) error
}

// LedgerSheetRepository appends product ledger rows to a Google Sheet.
type LedgerSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewLedgerSheetRepository builds a Google Sheets backed ledger exporter.
func NewLedgerSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*LedgerSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &LedgerSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportProducts appends one row per product to the ledger range.
func (r *LedgerSheetRepository) ExportProducts(ctx context.Context, products []models.RegisteredProduct) error {
	if len(products) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, ledgerRow(p))
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, ledgerRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append ledger rows: %w", err)
	}

	r.logger.Debug("ledger rows appended", zap.Int("rows", len(rows)))
	return nil
}

func ledgerRow(p models.RegisteredProduct) []interface{} {
	listed := "no"
	if p.IsListedInMarketplace {
		listed = "yes"
	}

	price := ""
	if p.Price != nil {
		price = fmt.Sprintf("%.2f", *p.Price)
	}

	return []interface{}{
		p.RegisteredDate.Format(dateLayout),
		p.TrackingID,
		p.ProductName,
		strings.TrimSpace(p.Quantity + " " + p.Unit),
		p.FarmLocation,
		p.FarmerName,
		listed,
		price,
	}
}
