package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/f4ah6o/assetserve/internal/config"
)

// fixture lays out a working directory with an entry file, an asset
// directory and a secret file outside the asset directory.
type fixture struct {
	dir    string
	config *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"index.html":             "<html><title>entry</title></html>",
		"secret.txt":             "top secret",
		"build/index.html":       "<html>asset copy</html>",
		"build/app.css":          "body { color: red; }",
		"build/static/js/app.js": "console.log('app');",
		"build/data.bin":         "\x00\x01\x02\x03",
		"build/docs/index.html":  "<html>docs</html>",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	return &fixture{
		dir: dir,
		config: &config.Config{
			AssetDir:  filepath.Join(dir, "build"),
			EntryFile: filepath.Join(dir, "index.html"),
		},
	}
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	NewHandler(f.config, nil).ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestRootServesEntryFile(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodGet, "/")

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if got := resp.Body.String(); got != "<html><title>entry</title></html>" {
		t.Errorf("body = %q, want entry file rather than build/index.html", got)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestRootHead(t *testing.T) {
	f := newFixture(t)

	resp := f.do(http.MethodHead, "/")

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", resp.Body.Len())
	}
}

func TestRootEntryFailures(t *testing.T) {
	t.Run("Missing entry file", func(t *testing.T) {
		f := newFixture(t)
		if err := os.Remove(f.config.EntryFile); err != nil {
			t.Fatalf("Failed to remove entry file: %v", err)
		}

		if resp := f.do(http.MethodGet, "/"); resp.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.Code)
		}
	})

	t.Run("Entry file is a directory", func(t *testing.T) {
		f := newFixture(t)
		f.config.EntryFile = f.config.AssetDir

		if resp := f.do(http.MethodGet, "/"); resp.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", resp.Code)
		}
	})
}

func TestAssets(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		target      string
		wantBody    string
		contentType string
	}{
		{"Top-level file", "/app.css", "body { color: red; }", "text/css"},
		{"Nested file", "/static/js/app.js", "console.log('app');", ""},
		{"Binary file", "/data.bin", "\x00\x01\x02\x03", ""},
		{"Asset index is not the entry point", "/index.html", "<html>asset copy</html>", "text/html"},
		{"Redundant segments", "/static/./js//app.js", "console.log('app');", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(http.MethodGet, tt.target)

			if resp.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.Code)
			}
			if got := resp.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if tt.contentType != "" {
				if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
					t.Errorf("Content-Type = %q, want %s", ct, tt.contentType)
				}
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"Missing file", http.MethodGet, "/missing.js"},
		{"Missing nested file", http.MethodGet, "/static/css/app.css"},
		{"Directory", http.MethodGet, "/static"},
		{"Directory with slash", http.MethodGet, "/static/"},
		{"Dot path", http.MethodGet, "/./"},
		{"Directory with index", http.MethodGet, "/docs/"},
		{"Directory with index without slash", http.MethodGet, "/docs"},
		{"POST to root", http.MethodPost, "/"},
		{"DELETE asset", http.MethodDelete, "/app.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(tt.method, tt.target)

			if resp.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", resp.Code)
			}
			if got := resp.Body.String(); got != "404 page not found\n" {
				t.Errorf("body = %q, want standard not found body", got)
			}
		})
	}
}

func TestTraversal(t *testing.T) {
	f := newFixture(t)

	targets := []string{
		"/../secret.txt",
		"/static/../../secret.txt",
		"/%2e%2e/secret.txt",
		"/..%2fsecret.txt",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			resp := f.do(http.MethodGet, target)

			if resp.Code == http.StatusOK {
				t.Fatalf("status = 200, want failure")
			}
			if strings.Contains(resp.Body.String(), "top secret") {
				t.Errorf("response leaked a file outside the asset directory")
			}
		})
	}
}

func TestSymlinkEscape(t *testing.T) {
	f := newFixture(t)
	link := filepath.Join(f.config.AssetDir, "leak.txt")
	if err := os.Symlink(filepath.Join(f.dir, "secret.txt"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	resp := f.do(http.MethodGet, "/leak.txt")

	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "top secret") {
		t.Errorf("response leaked a file through a symbolic link")
	}
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", ""},
		{"/app.css", "app.css"},
		{"/a/b/../c.txt", "a/c.txt"},
		{"/../../etc/passwd", "etc/passwd"},
		{"relative/file", "relative/file"},
	}

	for _, tt := range tests {
		if got := assetName(tt.path); got != tt.want {
			t.Errorf("assetName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
