package database

import (
	"strings"
	"time"
)

// ItemType tells agents (multi-step, handle many tasks) apart from tools
// (single functionality).
type ItemType string

const (
	TypeAgent ItemType = "agent"
	TypeTool  ItemType = "tool"
)

var ItemTypes = []ItemType{TypeAgent, TypeTool}

func (t ItemType) Valid() bool {
	return t == TypeAgent || t == TypeTool
}

// ParseItemType accepts any casing. The empty string and "all" map to "" so
// callers can use it as a "no filter" value.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "agent":
		return TypeAgent, nil
	case "tool":
		return TypeTool, nil
	}
	return "", invalidField("type", s)
}

// PricingModel is the tri-state pricing classification.
//
//	free     - no paid tier at all
//	freemium - free core with paid upgrades
//	paid     - no usable free tier (a trial is allowed)
type PricingModel string

const (
	PricingFree     PricingModel = "free"
	PricingFreemium PricingModel = "freemium"
	PricingPaid     PricingModel = "paid"
)

var PricingModels = []PricingModel{PricingFree, PricingFreemium, PricingPaid}

func (p PricingModel) Valid() bool {
	return p == PricingFree || p == PricingFreemium || p == PricingPaid
}

func ParsePricingModel(s string) (PricingModel, error) {
	p := PricingModel(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", invalidField("pricing_model", s)
	}
	return p, nil
}

type Category string

const (
	CategoryProductivity    Category = "Productivity"
	CategoryWriting         Category = "Writing"
	CategoryCoding          Category = "Coding"
	CategoryDesign          Category = "Design"
	CategoryMarketing       Category = "Marketing"
	CategorySales           Category = "Sales"
	CategoryCustomerSupport Category = "Customer Support"
	CategoryResearch        Category = "Research"
	CategoryDataAnalysis    Category = "Data Analysis"
	CategoryVideo           Category = "Video"
	CategoryAudio           Category = "Audio"
	CategoryImageGeneration Category = "Image Generation"
	CategoryAutomation      Category = "Automation"
	CategoryEducation       Category = "Education"
	CategoryFinance         Category = "Finance"
	CategoryOther           Category = "Other"
)

// Categories is the closed category list. The extraction schema enum is
// built from it, so prompt contract and stored values cannot drift.
var Categories = []Category{
	CategoryProductivity,
	CategoryWriting,
	CategoryCoding,
	CategoryDesign,
	CategoryMarketing,
	CategorySales,
	CategoryCustomerSupport,
	CategoryResearch,
	CategoryDataAnalysis,
	CategoryVideo,
	CategoryAudio,
	CategoryImageGeneration,
	CategoryAutomation,
	CategoryEducation,
	CategoryFinance,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches case-insensitively against Categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", invalidField("category", s)
}

func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}

// Listing is a persisted agent-or-tool directory entry.
type Listing struct {
	ID           int64        `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Category     Category     `json:"category"`
	Href         string       `json:"href"`
	Avatar       string       `json:"avatar,omitempty"`
	Type         ItemType     `json:"type"`
	PricingModel PricingModel `json:"pricingModel"`
	Tags         []string     `json:"tags"`
	KeyBenefits  []string     `json:"keybenefits"`
	WhoIsItFor   []string     `json:"whoIsItFor"`
	IsNew        bool         `json:"isNew"`
	DemoVideo    string       `json:"demoVideo,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`

	// Only set when loaded with features.
	Features []Feature `json:"features,omitempty"`
}

// Feature is a timestamped highlight of a listing's demo video. Timestamps
// are whole seconds into the video.
type Feature struct {
	ID             int64  `json:"id"`
	ListingID      int64  `json:"itemId"`
	Name           string `json:"feature"`
	Description    string `json:"description"`
	TimestampStart int    `json:"timestampStart"`
	TimestampEnd   int    `json:"timestampEnd"`
}

// ListingInput is the writable part of a Listing together with its full
// feature set. Updates replace every stored feature with Features.
type ListingInput struct {
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Category     Category     `json:"category"`
	Href         string       `json:"href"`
	Avatar       string       `json:"avatar,omitempty"`
	Type         ItemType     `json:"type"`
	PricingModel PricingModel `json:"pricingModel"`
	Tags         []string     `json:"tags"`
	KeyBenefits  []string     `json:"keybenefits"`
	WhoIsItFor   []string     `json:"whoIsItFor"`
	IsNew        bool         `json:"isNew"`
	DemoVideo    string       `json:"demoVideo,omitempty"`
	Features     []Feature    `json:"features"`
}

// Input returns the writable view of l, carrying its loaded features.
func (l Listing) Input() ListingInput {
	return ListingInput{
		Slug:         l.Slug,
		Name:         l.Name,
		Description:  l.Description,
		Category:     l.Category,
		Href:         l.Href,
		Avatar:       l.Avatar,
		Type:         l.Type,
		PricingModel: l.PricingModel,
		Tags:         l.Tags,
		KeyBenefits:  l.KeyBenefits,
		WhoIsItFor:   l.WhoIsItFor,
		IsNew:        l.IsNew,
		DemoVideo:    l.DemoVideo,
		Features:     l.Features,
	}
}
