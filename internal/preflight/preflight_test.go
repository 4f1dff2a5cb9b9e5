package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"linkflow/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckPDFFile_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckPDFFile(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckPDFFile_Missing(t *testing.T) {
	result := CheckPDFFile(filepath.Join(t.TempDir(), "absent.pdf"))
	if result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestCheckPDFFile_WrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckPDFFile(path)
	if result.Passed {
		t.Fatal("expected failure for non-pdf extension")
	}
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()
	if result := CheckCredentials(&cfg); result.Passed {
		t.Fatal("expected failure with empty credentials")
	}
	cfg.API.Token = "secret"
	cfg.API.Organization = 949
	if result := CheckCredentials(&cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckAPI_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.Token = "good-token"
	cfg.API.Organization = 949
	cfg.API.BaseURL = srv.URL

	result := CheckAPI(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckAPI_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.Token = "bad-token"
	cfg.API.Organization = 949
	cfg.API.BaseURL = srv.URL

	result := CheckAPI(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected token")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestRunAllSkipsAPIWithoutCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	results := RunAll(context.Background(), &cfg, "")
	for _, result := range results {
		if result.Name == "Vendor API" {
			t.Fatal("API probe ran without credentials")
		}
	}
	if AllPassed(results) {
		t.Fatal("expected credential check to fail")
	}
}
