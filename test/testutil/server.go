package testutil

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/model"
)

// Package is a package published on a Hatchery.
type Package struct {
	Name        string
	Version     string
	Description string
	Files       map[string]string // stripped path -> content
	Deps        []string
	Compression Compression
}

// Hatchery is an in-process package index serving metadata, basket listings
// and tarballs over TLS.
type Hatchery struct {
	Server *httptest.Server
	Basket string

	mu       sync.Mutex
	packages map[string]Package
	tarballs map[string][]byte
	failures map[string]int
	hits     map[string]int
}

// NewHatchery starts a TLS index server that is shut down with the test.
func NewHatchery(t *testing.T, basket string) *Hatchery {
	t.Helper()
	h := &Hatchery{
		Basket:   basket,
		packages: map[string]Package{},
		tarballs: map[string][]byte{},
		failures: map[string]int{},
		hits:     map[string]int{},
	}
	h.Server = httptest.NewTLSServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Server.Close)
	return h
}

// Host returns host:port of the server, usable as the index host.
func (h *Hatchery) Host() string {
	return strings.TrimPrefix(h.Server.URL, "https://")
}

// TLSConfig returns a client configuration trusting the server certificate.
func (h *Hatchery) TLSConfig() *tls.Config {
	return h.Server.Client().Transport.(*http.Transport).TLSClientConfig
}

// Publish adds or replaces a package.
func (h *Hatchery) Publish(t testing.TB, pkg Package) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.packages[pkg.Name] = pkg
	h.tarballs[tarballName(pkg)] = PackageTarball(t, pkg.Compression, pkg.Name, pkg.Version, pkg.Files, pkg.Deps...)
}

// Fail makes requests for path answer with status.
func (h *Hatchery) Fail(path string, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[path] = status
}

// Hits returns how many times path was requested.
func (h *Hatchery) Hits(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

// MetadataPath returns the request path of a package's metadata.
func MetadataPath(name string) string {
	return "/eggs/get/" + name + "/json"
}

func tarballName(pkg Package) string {
	return fmt.Sprintf("%s-%s.tar.gz", pkg.Name, pkg.Version)
}

func (h *Hatchery) serve(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hits[r.URL.Path]++
	logger.Debug("hatchery request", logger.Fields{"path": r.URL.Path})
	if status, ok := h.failures[r.URL.Path]; ok {
		w.WriteHeader(status)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[0] == "eggs" && parts[1] == "get" && parts[3] == "json":
		h.serveMetadata(w, parts[2])
	case len(parts) == 4 && parts[0] == "basket" && parts[1] == h.Basket && parts[2] == "list":
		h.serveSummaries(w, "")
	case len(parts) == 5 && parts[0] == "basket" && parts[1] == h.Basket && parts[2] == "search":
		h.serveSummaries(w, parts[3])
	case len(parts) == 2 && parts[0] == "files":
		data, ok := h.tarballs[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func (h *Hatchery) serveMetadata(w http.ResponseWriter, name string) {
	pkg, ok := h.packages[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	meta := model.PackageMetadata{
		Info: model.PackageInfo{Name: pkg.Name, Version: pkg.Version, Summary: pkg.Description},
		Releases: map[string][]model.ReleaseDescriptor{
			pkg.Version: {{URL: h.Server.URL + "/files/" + tarballName(pkg)}},
		},
	}
	writeJSON(w, meta)
}

func (h *Hatchery) serveSummaries(w http.ResponseWriter, query string) {
	names := make([]string, 0, len(h.packages))
	for name := range h.packages {
		if query == "" || strings.Contains(name, query) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]model.PackageSummary, 0, len(names))
	for _, name := range names {
		pkg := h.packages[name]
		out = append(out, model.PackageSummary{
			Name:        pkg.Name,
			Slug:        pkg.Name,
			Revision:    pkg.Version,
			Description: pkg.Description,
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// WriteConfig writes a YAML config file pointing at the hatchery and returns its path.
func (h *Hatchery) WriteConfig(t *testing.T, installPath string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := fmt.Sprintf("settings:\n  install_path: %q\n  index_host: %q\n  basket: %q\n  dial_timeout: 5s\n",
		installPath, h.Host(), h.Basket)
	if err := os.WriteFile(configPath, []byte(data), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
