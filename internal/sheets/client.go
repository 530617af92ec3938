// Package sheets is a thin Google Sheets client: find a spreadsheet by
// name on Drive, pick a worksheet, read a column and insert rows.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrWorksheetNotFound   = errors.New("worksheet not found")
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewClient authenticates with a service-account key file.
func NewClient(ctx context.Context, credentialsPath string) (*Client, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveReadonlyScope),
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return NewClientFromServices(sheetsSvc, driveSvc), nil
}

func NewClientFromServices(sheetsSvc *sheets.Service, driveSvc *drive.Service) *Client {
	return &Client{sheets: sheetsSvc, drive: driveSvc}
}

// Spreadsheet is an opened spreadsheet document.
type Spreadsheet struct {
	client *Client
	ID     string
	Title  string
}

// OpenSheet finds the spreadsheet named name among the files the account
// can see. The most recently modified one wins when names collide.
func (c *Client) OpenSheet(ctx context.Context, name string) (*Spreadsheet, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMime)
	resp, err := c.drive.Files.List().
		Q(q).
		OrderBy("modifiedTime desc").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	f := resp.Files[0]
	return &Spreadsheet{client: c, ID: f.Id, Title: f.Name}, nil
}

// Worksheet returns the tab at the 0-based index.
func (s *Spreadsheet) Worksheet(ctx context.Context, index int) (*Worksheet, error) {
	doc, err := s.client.sheets.Spreadsheets.Get(s.ID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", s.ID, err)
	}
	if index < 0 || index >= len(doc.Sheets) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrWorksheetNotFound, index, len(doc.Sheets))
	}
	props := doc.Sheets[index].Properties
	return &Worksheet{
		client:        s.client,
		spreadsheetID: s.ID,
		SheetID:       props.SheetId,
		Title:         props.Title,
	}, nil
}

type Worksheet struct {
	client        *Client
	spreadsheetID string
	SheetID       int64
	Title         string
}

// ColumnValues returns column col (1-based) from the first row down to the
// last non-empty cell. Blank cells in between are empty strings.
func (w *Worksheet) ColumnValues(ctx context.Context, col int) ([]string, error) {
	letter := ColumnLetter(col)
	rng := fmt.Sprintf("%s!%s:%s", w.quotedTitle(), letter, letter)
	resp, err := w.client.sheets.Spreadsheets.Values.Get(w.spreadsheetID, rng).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read column %s: %w", letter, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	out := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		out[i] = fmt.Sprint(v)
	}
	return out, nil
}

// InsertRows inserts rows before the 1-based row at, shifting existing rows
// down, and writes the values unparsed.
func (w *Worksheet) InsertRows(ctx context.Context, rows [][]string, at int) error {
	if len(rows) == 0 {
		return nil
	}
	if at < 1 {
		return fmt.Errorf("row index must be 1-based, got %d", at)
	}

	start := int64(at - 1)
	insert := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         w.SheetID,
					Dimension:       "ROWS",
					StartIndex:      start,
					EndIndex:        start + int64(len(rows)),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
				InheritFromBefore: at > 2,
			},
		}},
	}
	if _, err := w.client.sheets.Spreadsheets.BatchUpdate(w.spreadsheetID, insert).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert %d rows at %d: %w", len(rows), at, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}
	rng := fmt.Sprintf("%s!A%d", w.quotedTitle(), at)
	_, err := w.client.sheets.Spreadsheets.Values.Update(w.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write %d rows at %d: %w", len(rows), at, err)
	}
	return nil
}

func (w *Worksheet) quotedTitle() string {
	return "'" + strings.ReplaceAll(w.Title, "'", "''") + "'"
}

// ColumnLetter converts a 1-based column number to A1 notation.
func ColumnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
