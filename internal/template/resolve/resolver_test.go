package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/templates/remote.yaml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("outputs: {}\n"))
	})
	mux.HandleFunc("/blocks/a.yaml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("key: value\n"))
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.UserAgent()))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_URL(t *testing.T) {
	srv := newServer(t)
	r := New()

	got, err := r.Resolve(context.Background(), srv.URL+"/blocks/a.yaml", KindBlock)
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", got)
}

func TestResolve_UserAgent(t *testing.T) {
	srv := newServer(t)

	got, err := New(WithUserAgent("cndi/v1.2.3 (linux/amd64)")).Resolve(context.Background(), srv.URL+"/agent", KindString)
	require.NoError(t, err)
	assert.Equal(t, "cndi/v1.2.3 (linux/amd64)", got)
}

func TestResolve_BadStatus(t *testing.T) {
	srv := newServer(t)
	r := New()

	_, err := r.Resolve(context.Background(), srv.URL+"/missing.yaml", KindTemplate)
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestResolve_FetchFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New().Resolve(context.Background(), url+"/blocks/a.yaml", KindBlock)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolve_Timeout(t *testing.T) {
	srv := newServer(t)
	r := New(WithTimeout(50 * time.Millisecond))

	_, err := r.Resolve(context.Background(), srv.URL+"/slow", KindString)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolve_BareTemplateFromBaseURL(t *testing.T) {
	srv := newServer(t)
	r := New(WithBaseURL(srv.URL + "/templates/"))

	got, err := r.Resolve(context.Background(), "remote", KindTemplate)
	require.NoError(t, err)
	assert.Equal(t, "outputs: {}\n", got)
}

func TestResolve_BareTemplateBuiltin(t *testing.T) {
	r := New(WithBuiltins(func(name string) (string, bool) {
		if name == "basic" {
			return "outputs: {builtin: true}\n", true
		}
		return "", false
	}))

	got, err := r.Resolve(context.Background(), "basic", KindTemplate)
	require.NoError(t, err)
	assert.Equal(t, "outputs: {builtin: true}\n", got)

	_, err = r.Resolve(context.Background(), "other", KindTemplate)
	assert.ErrorIs(t, err, ErrInvalidPath, "no base URL configured")
}

func TestResolve_BareBlockAndString(t *testing.T) {
	r := New()

	_, err := r.Resolve(context.Background(), "my_block", KindBlock)
	assert.ErrorIs(t, err, ErrBareName)

	_, err = r.Resolve(context.Background(), "my_string", KindString)
	assert.ErrorIs(t, err, ErrBareName)
}

func TestResolve_Path(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blocks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blocks", "b.yaml"), []byte("from: disk\n"), 0o644))

	r := New(WithWorkDir(dir))

	got, err := r.Resolve(context.Background(), "./blocks/b.yaml", KindBlock)
	require.NoError(t, err)
	assert.Equal(t, "from: disk\n", got)

	got, err = r.Resolve(context.Background(), filepath.Join(dir, "blocks", "b.yaml"), KindBlock)
	require.NoError(t, err)
	assert.Equal(t, "from: disk\n", got)

	got, err = r.Resolve(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "blocks", "b.yaml")), KindBlock)
	require.NoError(t, err)
	assert.Equal(t, "from: disk\n", got)

	_, err = r.Resolve(context.Background(), "./blocks/missing.yaml", KindBlock)
	assert.ErrorIs(t, err, ErrRead)
}

func TestResolve_Empty(t *testing.T) {
	_, err := New().Resolve(context.Background(), "  ", KindTemplate)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.yaml", true},
		{"http://localhost:8080/x", true},
		{"file:///tmp/x.yaml", true},
		{"./relative/path.yaml", false},
		{"/abs/path.yaml", false},
		{"bare", false},
		{"https://", false},
		{"mailto:someone@example.com", false},
		{"hello world", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.in))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "template", KindTemplate.String())
	assert.Equal(t, "block", KindBlock.String())
	assert.Equal(t, "string", KindString.String())
}
