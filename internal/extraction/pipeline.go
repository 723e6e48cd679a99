// Package extraction builds listing drafts from a product website and an
// optional demo video.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/firecrawl"
	"github.com/letieu/agent-directory/internal/llm"
	"github.com/letieu/agent-directory/internal/outcome"
	"github.com/letieu/agent-directory/internal/slug"
	"github.com/letieu/agent-directory/internal/youtube"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrWebsiteURLRequired = eris.New("Website URL is required")
	ErrWebsiteExtraction  = eris.New("Failed to extract data from URL")
)

type Extractor interface {
	Extract(ctx context.Context, req firecrawl.ExtractRequest) (*firecrawl.ExtractResponse, error)
}

type Transcriber interface {
	FetchTranscript(ctx context.Context, videoURL string) ([]youtube.Segment, error)
}

type Input struct {
	WebsiteURL string `json:"websiteUrl"`
	VideoURL   string `json:"videoUrl,omitempty"`
}

// WebsiteData is the record the extraction service returns for a website.
type WebsiteData struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Href         string   `json:"href"`
	Avatar       string   `json:"avatar"`
	Tags         []string `json:"tags"`
	PricingModel string   `json:"pricingModel"`
	Type         string   `json:"type"`
	WhoIsItFor   []string `json:"whoIsItFor"`
	KeyBenefits  []string `json:"keybenefits"`
}

type VideoFeature struct {
	Feature        string  `json:"feature"`
	Description    string  `json:"description"`
	TimestampStart float64 `json:"timestampStart"`
	TimestampEnd   float64 `json:"timestampEnd"`
}

type VideoData struct {
	Features    []VideoFeature `json:"features"`
	KeyBenefits []string       `json:"keybenefits"`
	WhoIsItFor  []string       `json:"whoIsItFor"`
}

// Draft is an unsaved listing awaiting review. The embedded input is what
// gets submitted once a human confirms it.
type Draft struct {
	database.ListingInput

	RunID      string                     `json:"runId"`
	Website    WebsiteData                `json:"website"`
	Video      outcome.Outcome[VideoData] `json:"-"`
	VideoError string                     `json:"videoError,omitempty"`
}

type Pipeline struct {
	extractor   Extractor
	transcriber Transcriber
	completer   llm.Completer
	policy      *bluemonday.Policy
	logger      *zap.Logger
}

func NewPipeline(extractor Extractor, transcriber Transcriber, completer llm.Completer, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transcriber: transcriber,
		completer:   completer,
		policy:      bluemonday.StrictPolicy(),
		logger:      logger,
	}
}

// Run extracts the website and, when given, the video concurrently. A
// website failure fails the run; a video failure only leaves the draft's
// features, benefits and audience empty.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Draft, error) {
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	if in.WebsiteURL == "" {
		return nil, ErrWebsiteURLRequired
	}

	runID := uuid.NewString()
	log := p.logger.With(
		zap.String("run_id", runID),
		zap.String("website_url", in.WebsiteURL),
		zap.String("video_url", in.VideoURL),
	)
	log.Info("extraction started")

	var (
		website WebsiteData
		video   = outcome.Failed[VideoData](errNoVideo)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := p.extractWebsite(gctx, in.WebsiteURL)
		if err != nil {
			return err
		}
		website = *w
		return nil
	})
	if in.VideoURL != "" {
		g.Go(func() error {
			video = p.extractVideo(gctx, in.VideoURL)
			if !video.OK() {
				log.Warn("video extraction failed", zap.Error(video.Err()))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("website extraction failed", zap.Error(err))
		return nil, err
	}

	draft := p.merge(log, in, website, video)
	draft.RunID = runID
	log.Info("extraction finished",
		zap.String("slug", draft.Slug),
		zap.Int("features", len(draft.Features)),
		zap.Bool("video_ok", video.OK()),
	)
	return draft, nil
}

func (p *Pipeline) extractWebsite(ctx context.Context, websiteURL string) (*WebsiteData, error) {
	resp, err := p.extractor.Extract(ctx, firecrawl.ExtractRequest{
		URLs:   []string{websiteURL},
		Prompt: websitePrompt,
		Schema: websiteSchema(),
	})
	if err != nil {
		return nil, eris.Wrap(ErrWebsiteExtraction, err.Error())
	}
	if resp == nil || !resp.Success {
		return nil, ErrWebsiteExtraction
	}

	var w WebsiteData
	if err := json.Unmarshal(resp.Data, &w); err != nil {
		return nil, eris.Wrap(ErrWebsiteExtraction, "decode website data: "+err.Error())
	}
	return &w, nil
}

func (p *Pipeline) extractVideo(ctx context.Context, videoURL string) outcome.Outcome[VideoData] {
	segments, err := p.transcriber.FetchTranscript(ctx, videoURL)
	if err != nil {
		return outcome.Failed[VideoData](eris.Wrap(err, "extraction: fetch transcript"))
	}

	var v VideoData
	err = p.completer.GenerateObject(ctx, llm.Request{
		System:     autofillSystemPrompt,
		Prompt:     videoUserPrompt(videoURL, SerializeTranscript(segments)),
		SchemaName: "video_features",
		Schema:     videoSchema,
	}, &v)
	if err != nil {
		return outcome.Failed[VideoData](eris.Wrap(err, "extraction: summarize transcript"))
	}
	return outcome.Ok(v)
}

func (p *Pipeline) merge(log *zap.Logger, in Input, w WebsiteData, video outcome.Outcome[VideoData]) *Draft {
	draft := &Draft{Website: w, Video: video}
	if !video.OK() && !errors.Is(video.Err(), errNoVideo) {
		draft.VideoError = video.Err().Error()
	}

	li := &draft.ListingInput
	li.Name = p.clean(w.Name)
	li.Slug = slug.Make(firstNonEmpty(w.Slug, w.Name))
	li.Description = p.clean(w.Description)
	li.Href = firstNonEmpty(strings.TrimSpace(w.Href), in.WebsiteURL)
	li.Avatar = strings.TrimSpace(w.Avatar)
	li.Tags = p.tags(w.Tags)
	li.DemoVideo = in.VideoURL
	li.IsNew = true

	if c, err := database.ParseCategory(w.Category); err == nil {
		li.Category = c
	} else {
		log.Info("unknown category, using Other", zap.String("category", w.Category))
		li.Category = database.CategoryOther
	}
	if pm, err := database.ParsePricingModel(w.PricingModel); err == nil {
		li.PricingModel = pm
	} else {
		log.Info("unknown pricing model left for review", zap.String("pricing_model", w.PricingModel))
	}
	if t, err := database.ParseItemType(w.Type); err == nil && t != "" {
		li.Type = t
	} else {
		log.Info("unknown type left for review", zap.String("type", w.Type))
	}

	// Benefits, audience and features only come from the video.
	li.KeyBenefits = []string{}
	li.WhoIsItFor = []string{}
	li.Features = []database.Feature{}
	if video.OK() {
		v := video.Value()
		li.KeyBenefits = p.cleanAll(v.KeyBenefits)
		li.WhoIsItFor = p.cleanAll(v.WhoIsItFor)
		li.Features = p.features(v.Features)
	}
	return draft
}

func (p *Pipeline) features(in []VideoFeature) []database.Feature {
	out := make([]database.Feature, 0, len(in))
	for _, f := range in {
		name := p.clean(f.Feature)
		if name == "" {
			continue
		}
		start, end := FeatureSpan(f.TimestampStart, f.TimestampEnd)
		out = append(out, database.Feature{
			Name:           name,
			Description:    p.clean(f.Description),
			TimestampStart: start,
			TimestampEnd:   end,
		})
	}
	return out
}

// clean strips markup the remote services sometimes echo back.
func (p *Pipeline) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(s)))
}

func (p *Pipeline) cleanAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := p.clean(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (p *Pipeline) tags(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		tag := strings.ToLower(p.clean(v))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

var errNoVideo = eris.New("extraction: no video url")

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
