// Package sheets appends rows to Google Sheets.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// ValueInputRaw stores values exactly as sent.
const ValueInputRaw = "RAW"

var ErrSpreadsheetRequired = errors.New("spreadsheet id and range are required")

// Target is the spreadsheet, A1 range and optional API key for one append.
type Target struct {
	SpreadsheetID string
	Range         string
	APIKey        string
}

// Appender writes rows with either the per-target API key or the service
// account credentials from configuration.
type Appender struct {
	base []option.ClientOption
}

// NewAppender prepares an appender. extra options are applied to every call.
func NewAppender(gcp config.GoogleConfig, extra ...option.ClientOption) *Appender {
	base := credentialOptions(gcp)
	base = append(base, option.WithScopes(sheetsapi.SpreadsheetsScope))
	return &Appender{base: append(base, extra...)}
}

func credentialOptions(gcp config.GoogleConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

// AppendRow appends one row and returns the range Google reports as written.
func (a *Appender) AppendRow(ctx context.Context, target Target, values []any) (string, error) {
	if strings.TrimSpace(target.SpreadsheetID) == "" || strings.TrimSpace(target.Range) == "" {
		return "", ErrSpreadsheetRequired
	}

	opts := append([]option.ClientOption{}, a.base...)
	if key := strings.TrimSpace(target.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("creating sheets service: %w", err)
	}

	resp, err := svc.Spreadsheets.Values.
		Append(target.SpreadsheetID, target.Range, &sheetsapi.ValueRange{Values: [][]any{values}}).
		ValueInputOption(ValueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("appending to sheet %s: %w", target.SpreadsheetID, err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}
