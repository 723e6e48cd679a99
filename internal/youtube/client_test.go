package youtube

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	http "github.com/bogdanfinn/fhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDoer struct {
	pages    map[string]string
	requests []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	f.requests = append(f.requests, u)
	body, ok := f.pages[u]
	if !ok {
		return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader("not found"))}, nil
	}
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body))}, nil
}

const watchPage = `<html><head><script>var x = 1;</script></head><body>
<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=de","languageCode":"de"},
{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en&kind=asr","languageCode":"en","kind":"asr"},
{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en","languageCode":"en"}
]}}};var meta = {"a":1};</script></body></html>`

const captionsXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.25">Welcome to Scribe</text>
<text start="2.75" dur="3">it&amp;#39;s   fast</text>
<text start="5.75" dur="1"> </text>
</transcript>`

func TestFetchTranscript(t *testing.T) {
	doer := &fakeDoer{pages: map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":                 watchPage,
		"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&lang=en": captionsXML,
	}}
	c := NewClientWithDoer(doer, "en", zap.NewNop())

	segments, err := c.FetchTranscript(context.Background(), "https://youtu.be/dQw4w9WgXcQ?t=10")
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Text: "Welcome to Scribe", Offset: 0.5, Duration: 2.25},
		{Text: "it's fast", Offset: 2.75, Duration: 3},
	}, segments)
	assert.Len(t, doer.requests, 2)
}

func TestFetchTranscriptNoCaptions(t *testing.T) {
	doer := &fakeDoer{pages: map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</script>`,
	}}
	c := NewClientWithDoer(doer, "en", zap.NewNop())

	_, err := c.FetchTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrNoTranscript))
}

func TestFetchTranscriptUnplayable(t *testing.T) {
	doer := &fakeDoer{pages: map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ": `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}};</script>`,
	}}
	c := NewClientWithDoer(doer, "en", zap.NewNop())

	_, err := c.FetchTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrNoTranscript))
}

func TestFetchTranscriptUnreachable(t *testing.T) {
	c := NewClientWithDoer(&fakeDoer{}, "en", zap.NewNop())
	_, err := c.FetchTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestVideoID(t *testing.T) {
	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":            "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s":          "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                           "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":              "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ/":            "dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?a=1": "dQw4w9WgXcQ",
	}
	for in, want := range valid {
		got, err := VideoID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "not a url", "https://vimeo.com/12345", "https://www.youtube.com/watch?v=short", "https://www.youtube.com/channel/UC123"} {
		_, err := VideoID(in)
		assert.True(t, errors.Is(err, ErrInvalidURL), in)
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "fr"},
		{LanguageCode: "en-US", Kind: "asr"},
	}
	got, ok := pickTrack(tracks, "en")
	require.True(t, ok)
	assert.Equal(t, "en-US", got.LanguageCode)

	got, ok = pickTrack(tracks, "ja")
	require.True(t, ok)
	assert.Equal(t, "fr", got.LanguageCode)

	_, ok = pickTrack(nil, "en")
	assert.False(t, ok)
}
