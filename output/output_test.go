package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/stagecraft/capture"
)

func TestPages(t *testing.T) {
	rec := capture.Record{
		{Screenshots: []string{"s1.png"}},
		{
			Screenshots:  []string{"s2.png", "s3.png"},
			SpeakerNotes: capture.SpeakerNotes{Text: "  Hello **world**\n"},
			Links: []capture.Link{
				{Text: "placed", Href: "https://a", L: 10, T: 20, W: 30, H: 40},
				{Text: "left edge", Href: "https://b", L: 0, T: 20, W: 30, H: 40},
				{Text: "top edge", Href: "https://c", L: 10, T: 0, W: 30, H: 40},
			},
		},
		{Screenshots: []string{}, SpeakerNotes: capture.SpeakerNotes{Text: "orphan"}},
		{Screenshots: []string{"s4.png"}, SpeakerNotes: capture.SpeakerNotes{Text: " \n\t"}},
	}

	pages := Pages(rec)
	require.Len(t, pages, 4)

	assert.Equal(t, "s1.png", pages[0].Image)
	assert.Empty(t, pages[0].Notes)
	assert.Empty(t, pages[0].Links)

	for _, p := range pages[1:3] {
		assert.Equal(t, "Hello **world**", p.Notes)
		require.Len(t, p.Links, 1)
		assert.Equal(t, "placed", p.Links[0].Text)
		assert.Equal(t, 1, p.Unit)
	}

	assert.Equal(t, "s4.png", pages[3].Image)
	assert.Empty(t, pages[3].Notes, "whitespace-only notes are blank")
	assert.Equal(t, 3, pages[3].Unit)
}

func TestPages_Empty(t *testing.T) {
	assert.Empty(t, Pages(nil))
	assert.Empty(t, Pages(capture.Record{{Screenshots: []string{}}}))
}

func TestOptions(t *testing.T) {
	var o Options
	o.Defaults()
	assert.Equal(t, 1600.0, o.Width)
	assert.Equal(t, 900.0, o.Height)
	assert.NotNil(t, o.Logger)

	assert.Equal(t, "s.png", o.Resolve("s.png"))
	o.BaseDir = "/tmp/deck"
	assert.Equal(t, filepath.Join("/tmp/deck", "s.png"), o.Resolve("s.png"))
	assert.Equal(t, "/abs/s.png", o.Resolve("/abs/s.png"))
}
