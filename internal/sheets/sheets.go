// Package sheets reads range-addressed tables from the availability
// spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Table is a header row followed by data rows, as read from one range.
type Table struct {
	Header []string
	Rows   [][]string
}

// Record is a single data row keyed by header name.
type Record map[string]string

// Source reads a tabular range.
type Source interface {
	ReadRange(ctx context.Context, readRange string) (Table, error)
}

// Options configures the Google Sheets client.
type Options struct {
	SpreadsheetID   string
	CredentialsFile string
	Endpoint        string
}

// Client reads ranges through the Google Sheets values API.
type Client struct {
	service       *gsheets.Service
	spreadsheetID string
	logger        *logrus.Logger
}

// NewClient creates a Sheets-backed Source.
func NewClient(ctx context.Context, opts Options, logger *logrus.Logger) (*Client, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	clientOpts := []option.ClientOption{
		option.WithScopes(gsheets.SpreadsheetsReadonlyScope),
	}
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
		if opts.CredentialsFile == "" {
			clientOpts = append(clientOpts, option.WithoutAuthentication())
		}
	}

	service, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: opts.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a range and splits off the first row as the header.
func (c *Client) ReadRange(ctx context.Context, readRange string) (Table, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		c.logger.WithError(err).WithField("range", readRange).Error("Failed to read spreadsheet range")
		return Table{}, fmt.Errorf("failed to read range %q: %w", readRange, err)
	}

	table := NewTable(resp.Values)
	c.logger.WithFields(logrus.Fields{
		"range": readRange,
		"rows":  len(table.Rows),
	}).Debug("Read spreadsheet range")
	return table, nil
}

// NewTable converts raw cell values into a Table. The first row is the header.
func NewTable(values [][]interface{}) Table {
	if len(values) == 0 {
		return Table{}
	}

	table := Table{
		Header: cellStrings(values[0]),
		Rows:   make([][]string, 0, len(values)-1),
	}
	for _, row := range values[1:] {
		table.Rows = append(table.Rows, cellStrings(row))
	}
	return table
}

func cellStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

// Records pairs each data row with the header. Cells missing from short rows
// are empty strings; cells beyond the header are dropped.
func (t Table) Records() []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(t.Header))
		for i, key := range t.Header {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if i < len(row) {
				rec[key] = row[i]
			} else {
				rec[key] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// Get returns the first non-empty value among the given column names.
// Column names are compared case-insensitively.
func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	for _, key := range keys {
		for k, v := range r {
			if strings.EqualFold(k, key) && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Last returns the final data row that has at least one non-blank cell, or
// nil when there is none.
func (t Table) Last() []string {
	for i := len(t.Rows) - 1; i >= 0; i-- {
		for _, cell := range t.Rows[i] {
			if strings.TrimSpace(cell) != "" {
				return t.Rows[i]
			}
		}
	}
	return nil
}
