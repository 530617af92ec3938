package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeAPI serves the handful of Drive and Sheets endpoints the client uses
// and records the write requests.
type fakeAPI struct {
	mu      sync.Mutex
	files   string
	column  string
	batches []map[string]any
	updates []map[string]any
	ranges  []string
	driveQ  string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case path == "/drive/v3/files":
		f.driveQ = r.URL.Query().Get("q")
		io.WriteString(w, f.files)
	case path == "/v4/spreadsheets/sid" && r.Method == http.MethodGet:
		io.WriteString(w, `{"spreadsheetId":"sid","sheets":[{"properties":{"sheetId":0,"title":"Oferty","index":0}},{"properties":{"sheetId":7,"title":"Archive","index":1}}]}`)
	case path == "/v4/spreadsheets/sid:batchUpdate":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.batches = append(f.batches, body)
		io.WriteString(w, `{"spreadsheetId":"sid"}`)
	case strings.HasPrefix(path, "/v4/spreadsheets/sid/values/"):
		f.ranges = append(f.ranges, strings.TrimPrefix(path, "/v4/spreadsheets/sid/values/"))
		if r.Method == http.MethodPut {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["valueInputOption"] = r.URL.Query().Get("valueInputOption")
			f.updates = append(f.updates, body)
			io.WriteString(w, `{"spreadsheetId":"sid"}`)
			return
		}
		io.WriteString(w, f.column)
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sheetsSvc, err := sheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	driveSvc, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/drive/v3/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return NewClientFromServices(sheetsSvc, driveSvc)
}

func openFirstWorksheet(t *testing.T, api *fakeAPI) *Worksheet {
	c := newTestClient(t, api)
	doc, err := c.OpenSheet(context.Background(), "job-offers")
	require.NoError(t, err)
	ws, err := doc.Worksheet(context.Background(), 0)
	require.NoError(t, err)
	return ws
}

func TestOpenSheet(t *testing.T) {
	api := &fakeAPI{files: `{"files":[{"id":"sid","name":"job-offers"}]}`}
	c := newTestClient(t, api)

	doc, err := c.OpenSheet(context.Background(), "job-offers")

	require.NoError(t, err)
	assert.Equal(t, "sid", doc.ID)
	assert.Equal(t, "job-offers", doc.Title)
	assert.Contains(t, api.driveQ, "name = 'job-offers'")
}

func TestOpenSheet_NotFound(t *testing.T) {
	api := &fakeAPI{files: `{"files":[]}`}
	c := newTestClient(t, api)

	_, err := c.OpenSheet(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrSpreadsheetNotFound)
}

func TestWorksheet(t *testing.T) {
	api := &fakeAPI{files: `{"files":[{"id":"sid","name":"job-offers"}]}`}
	doc, err := newTestClient(t, api).OpenSheet(context.Background(), "job-offers")
	require.NoError(t, err)

	ws, err := doc.Worksheet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ws.SheetID)
	assert.Equal(t, "Archive", ws.Title)

	_, err = doc.Worksheet(context.Background(), 2)
	assert.ErrorIs(t, err, ErrWorksheetNotFound)
}

func TestColumnValues(t *testing.T) {
	api := &fakeAPI{
		files:  `{"files":[{"id":"sid","name":"job-offers"}]}`,
		column: `{"range":"Oferty!E1:E4","majorDimension":"COLUMNS","values":[["URL","https://justjoin.it/job-offer/a","","https://www.pracuj.pl/praca/b,oferta,1"]]}`,
	}
	ws := openFirstWorksheet(t, api)

	got, err := ws.ColumnValues(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"URL", "https://justjoin.it/job-offer/a", "", "https://www.pracuj.pl/praca/b,oferta,1"}, got)
	assert.Equal(t, []string{"'Oferty'!E:E"}, api.ranges)
}

func TestColumnValues_EmptySheet(t *testing.T) {
	api := &fakeAPI{
		files:  `{"files":[{"id":"sid","name":"job-offers"}]}`,
		column: `{"range":"Oferty!E1:E1000","majorDimension":"COLUMNS"}`,
	}
	ws := openFirstWorksheet(t, api)

	got, err := ws.ColumnValues(context.Background(), 5)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertRows(t *testing.T) {
	api := &fakeAPI{files: `{"files":[{"id":"sid","name":"job-offers"}]}`}
	ws := openFirstWorksheet(t, api)

	err := ws.InsertRows(context.Background(), [][]string{
		{"ACME", "Tester", "Not found", "Python", "https://justjoin.it/job-offer/a", ""},
		{"Beta", "QA", "10 000 zł", "pytest", "https://justjoin.it/job-offer/b", ""},
	}, 2)

	require.NoError(t, err)
	require.Len(t, api.batches, 1)
	req := api.batches[0]["requests"].([]any)[0].(map[string]any)
	rng := req["insertDimension"].(map[string]any)["range"].(map[string]any)
	assert.Equal(t, float64(0), rng["sheetId"])
	assert.Equal(t, "ROWS", rng["dimension"])
	assert.Equal(t, float64(1), rng["startIndex"])
	assert.Equal(t, float64(3), rng["endIndex"])

	require.Len(t, api.updates, 1)
	assert.Equal(t, "RAW", api.updates[0]["valueInputOption"])
	values := api.updates[0]["values"].([]any)
	assert.Len(t, values, 2)
	assert.Equal(t, "Beta", values[1].([]any)[0])
	assert.Equal(t, "'Oferty'!A2", api.ranges[0])
}

func TestInsertRows_Nothing(t *testing.T) {
	api := &fakeAPI{files: `{"files":[{"id":"sid","name":"job-offers"}]}`}
	ws := openFirstWorksheet(t, api)

	require.NoError(t, ws.InsertRows(context.Background(), nil, 2))
	assert.Empty(t, api.batches)
	assert.Error(t, ws.InsertRows(context.Background(), [][]string{{"x"}}, 0))
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", ColumnLetter(1))
	assert.Equal(t, "E", ColumnLetter(5))
	assert.Equal(t, "Z", ColumnLetter(26))
	assert.Equal(t, "AA", ColumnLetter(27))
	assert.Equal(t, "AZ", ColumnLetter(52))
}
