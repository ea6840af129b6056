package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/dbopen"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleRecord() capture.Record {
	return capture.Record{
		{
			Screenshots: []string{"screenshot-0001.png"},
			Links:       []capture.Link{},
		},
		{
			Screenshots:  []string{"screenshot-0002.png", "screenshot-0003.png"},
			SpeakerNotes: capture.SpeakerNotes{Markup: "<p>Hello <b>world</b></p>", Text: "Hello **world**"},
			Links: []capture.Link{
				{Text: "Docs", Href: "https://example.org", X: 10, Y: 20, L: 10, T: 20, W: 100, H: 18},
				{Text: "Off", Href: "https://example.org/off"},
			},
		},
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"stagecraft.json": FormatJSON,
		"dump":            FormatJSON,
		"run.YAML":        FormatYAML,
		"run.yml":         FormatYAML,
		"runs.db":         FormatSQLite,
		"runs.sqlite":     FormatSQLite,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatOf(path), path)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"stagecraft.json", "stagecraft.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewFileStore(filepath.Join(t.TempDir(), name), quietLogger)

			require.NoError(t, s.Persist(ctx, sampleRecord()))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRecord(), got)
		})
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "stagecraft.json"), quietLogger)

	require.NoError(t, s.Persist(ctx, sampleRecord()))
	require.NoError(t, s.Persist(ctx, sampleRecord()[:1]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_EmptyRecord(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "stagecraft.json"), quietLogger)

	require.NoError(t, s.Persist(ctx, nil))
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileStore_IndentedJSONLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stagecraft.json")
	dump := `[
  {
    "screenshots": ["screenshot-0001.png"],
    "speakerNotes": {},
    "links": []
  },
  {
    "screenshots": ["screenshot-0002.png"],
    "speakerNotes": {"html": "<p>Hi</p>", "markdown": "Hi\n"},
    "links": [{"text": "a", "href": "https://a.example", "x": 1, "y": 2, "w": 3, "h": 4, "t": 2, "l": 1}]
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o644))

	got, err := NewFileStore(path, quietLogger).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].SpeakerNotes.Empty())
	assert.Equal(t, "Hi\n", got[1].SpeakerNotes.Text)
	assert.Equal(t, capture.Link{Text: "a", Href: "https://a.example", X: 1, Y: 2, L: 1, T: 2, W: 3, H: 4}, got[1].Links[0])
}

func TestFileStore_NotFound(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), quietLogger)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stagecraft.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path, quietLogger).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_AsCheckpointer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stagecraft.json")
	var cp capture.Checkpointer = NewFileStore(path, quietLogger)
	require.NoError(t, cp.Persist(context.Background(), sampleRecord()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func newMemoryStore(t *testing.T, runID string) *SQLiteStore {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(schema))
	return newSQLiteStore(db, Options{RunID: runID, Logger: quietLogger})
}

func TestSQLiteStore_LatestCheckpoint(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore(t, "run_a")
	rec := sampleRecord()

	require.NoError(t, s.Persist(ctx, rec[:1]))
	require.NoError(t, s.Persist(ctx, rec))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run_a", runs[0].ID)
	assert.Equal(t, 2, runs[0].Checkpoints)
	assert.Equal(t, 2, runs[0].Units)
}

func TestSQLiteStore_Runs(t *testing.T) {
	ctx := context.Background()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(schema))
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := newSQLiteStore(db, Options{RunID: "run_old", Logger: quietLogger})
	first.now = func() time.Time { return base }
	require.NoError(t, first.Persist(ctx, sampleRecord()[:1]))

	second := newSQLiteStore(db, Options{RunID: "run_new", Logger: quietLogger})
	second.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, second.Persist(ctx, sampleRecord()))

	runs, err := first.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run_new", runs[0].ID)
	assert.Equal(t, base.Add(time.Minute), runs[0].UpdatedAt)
	assert.Equal(t, "run_old", runs[1].ID)

	// Each store still reads its own run.
	got, err := first.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// A store without a run id reads the latest run until it writes.
	latest := newSQLiteStore(db, Options{Logger: quietLogger})
	assert.NotEmpty(t, latest.RunID())
	got, err = latest.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()

	_, err := newMemoryStore(t, "").Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = newMemoryStore(t, "run_missing").Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_PicksBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "stagecraft.yaml"), Options{Logger: quietLogger})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(filepath.Join(dir, "runs.db"), Options{RunID: "run_x", Logger: quietLogger})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Persist(ctx, sampleRecord()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), got)
}
