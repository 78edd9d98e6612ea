package datasource

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"payroll/internal/datasource/file"
	"payroll/internal/datasource/httpds"
)

func TestFor(t *testing.T) {
	tests := []struct {
		location   string
		wantRemote bool
	}{
		{"data/employee.csv", false},
		{"/abs/manager.csv", false},
		{"http://example.com/salary.csv", true},
		{"HTTPS://example.com/salary.csv", true},
		{"httpdata/salary.csv", false},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src := For(tt.location, nil)
			_, remote := src.(*httpds.Remote)
			_, local := src.(*file.Local)
			if remote != tt.wantRemote || local == tt.wantRemote {
				t.Fatalf("For(%q) = %T, wantRemote=%v", tt.location, src, tt.wantRemote)
			}
		})
	}
}

func TestFor_OpensBoth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "remote")
	}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "local.csv")
	if err := os.WriteFile(p, []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := httpds.NewClient(httpds.Config{})
	for loc, want := range map[string]string{srv.URL: "remote", p: "local"} {
		rc, err := For(loc, client).Open(context.Background())
		if err != nil {
			t.Fatalf("Open(%s): %v", loc, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", loc, err)
		}
		if string(b) != want {
			t.Fatalf("Open(%s) = %q, want %q", loc, b, want)
		}
	}
}
