package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	"pocketbook/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Receipts", 2024, "2024 Receipts"},
		{"  Receipts  ", 2024, "2024 Receipts"},
		{"2023 Receipts", 2024, "2023 Receipts"},
		{"1800 Receipts", 2024, "2024 1800 Receipts"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestReceiptRow(t *testing.T) {
	tx := core.Transaction{ID: "a", Name: "커피", Amount: 4500, Type: core.Expense, Timestamp: 1700000000000}
	row := receiptRow(tx, time.UTC)
	if len(row) != 4 {
		t.Fatalf("expected 4 columns, got %v", row)
	}
	if row[0] != "2023-11-14 22:13" || row[1] != "커피" || row[2] != "EXPENSE" || row[3] != int64(4500) {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/non/existent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestAppendReceipt(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Values [][]any `json:"values"`
	}
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"'2023 Receipts'!A7:D7"}}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		SheetName:     "Receipts",
		Location:      time.UTC,
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tx := core.Transaction{ID: "a", Name: "Salary", Amount: 3000000, Type: core.Income, Timestamp: 1700000000000}
	ref, err := c.AppendReceipt(context.Background(), tx)
	if err != nil {
		t.Fatalf("AppendReceipt() error = %v", err)
	}
	if ref != "'2023 Receipts'!A7:D7" {
		t.Errorf("unexpected ref %q", ref)
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-1/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if !strings.Contains(gotPath, "2023 Receipts") {
		t.Errorf("expected year-prefixed tab in path, got %q", gotPath)
	}
	if v := gotQuery["valueInputOption"]; len(v) != 1 || v[0] != "USER_ENTERED" {
		t.Errorf("unexpected valueInputOption %v", v)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 4 {
		t.Fatalf("unexpected values %v", gotBody.Values)
	}
	row := gotBody.Values[0]
	if row[0] != "2023-11-14 22:13" || row[1] != "Salary" || row[2] != "INCOME" || row[3] != float64(3000000) {
		t.Errorf("unexpected row %v", row)
	}
}

func TestAppendReceiptRejectsInvalid(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheetBase: "Receipts", location: time.UTC}
	if _, err := c.AppendReceipt(context.Background(), core.Transaction{Amount: 0, Type: core.Expense}); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := c.AppendReceipt(context.Background(), core.Transaction{Amount: 1, Type: core.Expense}); err == nil {
		t.Fatal("expected error for uninitialized service")
	}
}
