// Package youtube fetches caption transcripts for YouTube videos.
package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/letieu/agent-directory/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL   = eris.New("youtube: not a video url")
	ErrNoTranscript = eris.New("youtube: no transcript available")
)

const watchURL = "https://www.youtube.com/watch?v="

// Segment is one caption line. Offset and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

// Doer is the subset of tls_client.HttpClient the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient Doer
	language   string
	logger     *zap.Logger
}

// NewClient builds a client that presents a Chrome TLS fingerprint, which
// keeps the watch page from serving the consent interstitial.
func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(cfg.Youtube.TimeoutSecs),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: create http client")
	}
	return NewClientWithDoer(httpClient, cfg.Youtube.Language, logger), nil
}

func NewClientWithDoer(doer Doer, language string, logger *zap.Logger) *Client {
	if language == "" {
		language = "en"
	}
	return &Client{httpClient: doer, language: language, logger: logger}
}

// FetchTranscript returns the ordered caption segments of the video at
// videoURL, preferring a track in the configured language.
func (c *Client) FetchTranscript(ctx context.Context, videoURL string) ([]Segment, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(zap.String("video_id", id))

	page, err := c.get(ctx, watchURL+id)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: fetch watch page")
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(tracks, c.language)
	if !ok {
		return nil, ErrNoTranscript
	}
	log.Debug("caption track selected",
		zap.String("language", track.LanguageCode),
		zap.String("kind", track.Kind),
	)

	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "youtube: fetch captions")
	}

	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrNoTranscript
	}
	return segments, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header = http.Header{
		"accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"accept-language": {c.language + ",en;q=0.8"},
		"user-agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		http.HeaderOrderKey: {
			"accept",
			"accept-language",
			"user-agent",
		},
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("youtube error %d", resp.StatusCode)
	}
	return body, nil
}

// VideoID extracts the video id from watch, short, embed and youtu.be URLs.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		default:
			for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
				if strings.HasPrefix(u.Path, prefix) {
					id = strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
					break
				}
			}
		}
	}

	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if !validID(id) {
		return "", ErrInvalidURL
	}
	return id, nil
}

func validID(id string) bool {
	if len(id) != 11 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

const playerMarker = "ytInitialPlayerResponse"

// captionTracks finds the inline player response on a watch page and
// returns its caption tracks.
func captionTracks(page []byte) ([]captionTrack, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return nil, eris.Wrap(err, "youtube: parse watch page")
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, playerMarker) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, eris.Wrap(ErrNoTranscript, "player response not found")
	}

	start := strings.Index(script, playerMarker)
	brace := strings.IndexByte(script[start:], '{')
	if brace < 0 {
		return nil, eris.Wrap(ErrNoTranscript, "player response not found")
	}

	// Decode stops after the first complete value, so the trailing script
	// text is ignored.
	var pr playerResponse
	if err := json.NewDecoder(strings.NewReader(script[start+brace:])).Decode(&pr); err != nil {
		return nil, eris.Wrap(err, "youtube: decode player response")
	}

	if status := pr.PlayabilityStatus.Status; status != "" && status != "OK" {
		return nil, eris.Wrapf(ErrNoTranscript, "video not playable: %s %s", status, pr.PlayabilityStatus.Reason)
	}
	return pr.Captions.Renderer.CaptionTracks, nil
}

// pickTrack prefers a manual track in language, then an auto-generated
// one, then whatever comes first.
func pickTrack(tracks []captionTrack, language string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	var auto *captionTrack
	for i, t := range tracks {
		if !strings.EqualFold(t.LanguageCode, language) && !strings.HasPrefix(strings.ToLower(t.LanguageCode), strings.ToLower(language)+"-") {
			continue
		}
		if t.Kind != "asr" {
			return t, true
		}
		if auto == nil {
			auto = &tracks[i]
		}
	}
	if auto != nil {
		return *auto, true
	}
	return tracks[0], true
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// ParseTimedText decodes the timedtext XML caption format.
func ParseTimedText(data []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, eris.Wrap(err, "youtube: decode captions")
	}

	segments := make([]Segment, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := strings.Join(strings.Fields(html.UnescapeString(t.Body)), " ")
		if text == "" {
			continue
		}
		offset, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, Segment{Text: text, Offset: offset, Duration: dur})
	}
	return segments, nil
}
