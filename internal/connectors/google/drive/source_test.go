package drive

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/normalisers"
)

func testDocx(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>REQ-001: Login</w:t></w:r></w:p>
<w:p><w:r><w:t>Users log in.</w:t></w:r></w:p>
</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestService(t *testing.T, handler http.Handler) *drive.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc
}

func TestNew_InvalidFileID(t *testing.T) {
	_, err := New(nil, Config{FileID: "https://example.com/x"}, normalisers.Default())

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "source.drive_file_id", cfgErr.Key)
}

func TestSource_ReadCurrentContent_GoogleDocExport(t *testing.T) {
	docx := testDocx(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/files/doc1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"doc1","name":"Requirements","mimeType":"application/vnd.google-apps.document"}`))
	})
	mux.HandleFunc("/files/doc1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, domain.MIMETypeDocx, r.URL.Query().Get("mimeType"))
		_, _ = w.Write(docx)
	})

	src, err := New(newTestService(t, mux), Config{FileID: "https://docs.google.com/document/d/doc1/edit"}, normalisers.Default())
	require.NoError(t, err)

	text, err := src.ReadCurrentContent(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "# REQ-001: Login\n\nUsers log in.", text)
	assert.Equal(t, "https://drive.google.com/file/d/doc1/view", src.Describe())
}

func TestSource_ReadCurrentContent_Download(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/md1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			_, _ = w.Write([]byte("## REQ-002: Logout\n\n**Users** log out."))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"md1","name":"reqs.md","mimeType":"application/octet-stream","size":"40"}`))
	})

	src, err := New(newTestService(t, mux), Config{FileID: "md1"}, normalisers.Default())
	require.NoError(t, err)

	text, err := src.ReadCurrentContent(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "## REQ-002: Logout\n\nUsers log out.", text)
}

func TestSource_ReadCurrentContent_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/files/gone", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found"}}`))
		})
		src, err := New(newTestService(t, mux), Config{FileID: "gone"}, normalisers.Default())
		require.NoError(t, err)

		_, err = src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("folder", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/files/dir", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"dir","name":"Specs","mimeType":"application/vnd.google-apps.folder"}`))
		})
		src, err := New(newTestService(t, mux), Config{FileID: "dir"}, normalisers.Default())
		require.NoError(t, err)

		_, err = src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("too large", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/files/big", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"big","name":"reqs.txt","mimeType":"text/plain","size":"999"}`))
		})
		src, err := New(newTestService(t, mux), Config{FileID: "big", MaxSize: 10}, normalisers.Default())
		require.NoError(t, err)

		_, err = src.ReadCurrentContent(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
