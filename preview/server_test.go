package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/output"
	"github.com/hazyhaar/stagecraft/output/tools"
	"github.com/hazyhaar/stagecraft/store"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, rec capture.Record) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shots"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots", "screenshot-0001.png"), buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.png"), buf.Bytes(), 0o644))

	record := filepath.Join(dir, "stagecraft.json")
	if rec != nil {
		require.NoError(t, store.NewFileStore(record, quietLogger).Persist(context.Background(), rec))
	}

	svc := tools.New(tools.Config{
		Record: record,
		Output: output.Options{BaseDir: dir, Title: "Preview deck"},
		Logger: quietLogger,
	})
	srv := httptest.NewServer(New(svc, Config{Logger: quietLogger}).Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

func sampleRecord() capture.Record {
	return capture.Record{{
		Screenshots:  []string{"shots/screenshot-0001.png"},
		SpeakerNotes: capture.SpeakerNotes{Text: "Say **hello**"},
		Links:        []capture.Link{{Text: "Site", Href: "https://example.org", L: 5, T: 6, W: 10, H: 4}},
	}}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Request-ID"), "req_"))
}

func TestHandout(t *testing.T) {
	srv, _ := newTestServer(t, sampleRecord())
	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<title>Preview deck</title>")
	assert.Contains(t, body, `src="/shots/screenshot-0001.png"`)
	assert.Contains(t, body, `coords="5,6,15,10"`)
	assert.Contains(t, body, "<strong>hello</strong>")
}

func TestHandout_NoRecord(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, _ := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandout_NoPages(t *testing.T) {
	srv, _ := newTestServer(t, capture.Record{})
	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "no pages")
}

func TestRecordJSON(t *testing.T) {
	srv, _ := newTestServer(t, sampleRecord())
	resp, body := get(t, srv.URL+"/record.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got capture.Record
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, sampleRecord(), got)
}

func TestRecordJSON_Empty(t *testing.T) {
	srv, _ := newTestServer(t, capture.Record{})
	resp, body := get(t, srv.URL+"/record.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)
}

func TestShots(t *testing.T) {
	srv, _ := newTestServer(t, sampleRecord())

	tests := []struct {
		name string
		path string
		want int
	}{
		{"referenced", "/shots/screenshot-0001.png", http.StatusOK},
		{"not in record", "/shots/secret.png", http.StatusNotFound},
		{"unknown", "/shots/nope.png", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusOK {
				assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestHead(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Head(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	svc := tools.New(tools.Config{Logger: quietLogger})
	s := New(svc, Config{Addr: "127.0.0.1:0", Logger: quietLogger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
