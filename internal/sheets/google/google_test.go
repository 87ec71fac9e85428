package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledger/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("New() error = %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("New() error = %v", err)
	}
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    Options
		env     string
		want    string
		wantErr string
	}{
		{"inline wins", Options{CredentialsJSON: ` {"from":"inline"} `, CredentialsFile: file}, "", `{"from":"inline"}`, ""},
		{"file", Options{CredentialsFile: file}, "", `{"from":"file"}`, ""},
		{"application default path", Options{}, file, `{"from":"file"}`, ""},
		{"unreadable file", Options{CredentialsFile: filepath.Join(dir, "nope.json")}, "", "", "read service account file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", tt.env)
			got, err := credentials(tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("credentials() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || string(got) != tt.want {
				t.Fatalf("credentials() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestAppendRange(t *testing.T) {
	tests := map[string]string{
		"Transactions":   "Transactions!A:D",
		"2099 Ledger":    "'2099 Ledger'!A:D",
		"Bob's":          "'Bob''s'!A:D",
		"Ledger:Archive": "'Ledger:Archive'!A:D",
	}
	for in, want := range tests {
		if got := appendRange(in); got != want {
			t.Errorf("appendRange(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAppendTransactionWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet", sheetName: "Transactions"}
	if _, err := c.AppendTransaction(context.Background(), core.Transaction{ID: 1}); err == nil {
		t.Fatal("expected error without a service")
	}
}
