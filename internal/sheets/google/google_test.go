package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"}, nil)
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("expected missing spreadsheet id error, got: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"}, nil)
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := credentialsJSON(Config{ServiceAccountFile: path})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("file credentials: got %q, err %v", got, err)
	}

	got, err = credentialsJSON(Config{ServiceAccountJSON: ` {"inline":true} `, ServiceAccountFile: path})
	if err != nil || string(got) != `{"inline":true}` {
		t.Fatalf("inline credentials should win: got %q, err %v", got, err)
	}

	if _, err := credentialsJSON(Config{ServiceAccountFile: filepath.Join(dir, "missing.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRowIndex(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"1"},
		{},
		{" 7 "},
		{float64(9)},
	}
	tests := []struct {
		id   int64
		want int
	}{
		{1, 2},
		{7, 4},
		{9, 5},
		{3, 0},
	}
	for _, tt := range tests {
		if got := rowIndex(values, tt.id); got != tt.want {
			t.Errorf("rowIndex(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestRowsByID(t *testing.T) {
	rows := rowsByID([][]any{
		{"ID", "Date", "Amount"},
		{"4", "2024-06-10 09:00", "150.00"},
		{""},
		{"-1", "bad"},
	})
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %v", rows)
	}
	if rows[4][2] != "150.00" {
		t.Errorf("unexpected row %v", rows[4])
	}
}

func TestClientWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	ctx := context.Background()
	if err := c.Upsert(ctx, "Tasks", 1, []string{"1"}); err == nil {
		t.Error("Upsert should fail without a service")
	}
	if err := c.Remove(ctx, "Tasks", 1); err == nil {
		t.Error("Remove should fail without a service")
	}
	if _, err := c.Rows(ctx, "Tasks"); err == nil {
		t.Error("Rows should fail without a service")
	}
}
