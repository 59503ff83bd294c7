package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownMediaType is returned when a media type string is not one of
	// llm, image, audio or video.
	ErrUnknownMediaType = errors.New("unknown media type")

	// ErrUnknownModel is returned when a model is not present in the catalog
	ErrUnknownModel = errors.New("unknown model")
)

// MediaType selects which catalog subset and response renderer applies
type MediaType string

const (
	MediaLLM   MediaType = "llm"
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// MediaTypes lists every media type in display order
var MediaTypes = []MediaType{MediaLLM, MediaImage, MediaAudio, MediaVideo}

// ParseMediaType converts a form or JSON value into a MediaType.
// An empty string means llm, matching the selector default.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case "", MediaLLM:
		return MediaLLM, nil
	case MediaImage:
		return MediaImage, nil
	case MediaAudio:
		return MediaAudio, nil
	case MediaVideo:
		return MediaVideo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMediaType, s)
}

// Title returns the section heading used by the popover
func (m MediaType) Title() string {
	switch m {
	case MediaLLM:
		return "Text Models"
	case MediaImage:
		return "Image Models"
	case MediaAudio:
		return "Audio Models"
	case MediaVideo:
		return "Video Models"
	}
	return string(m)
}

// Descriptor describes one selectable backend model
type Descriptor struct {
	// Identification
	ModelName    string `json:"model_name" yaml:"model_name"`
	Provider     string `json:"provider" yaml:"provider"`           // lowercase key, e.g. "google"
	ProviderName string `json:"provider_name" yaml:"provider_name"` // display name, e.g. "Google"
	APIName      string `json:"api_name" yaml:"api_name"`

	// Display
	DisplayNameMain string `json:"displayNameMain" yaml:"display_name_main"`
	DisplayNameSub  string `json:"displayNameSub,omitempty" yaml:"display_name_sub"`

	Premium     bool   `json:"premium" yaml:"premium"`
	PremiumIcon string `json:"premium_icon,omitempty" yaml:"premium_icon"`

	// Capabilities maps capability names (vision, reasoning, coding...) to availability
	Capabilities map[string]bool `json:"capabilities,omitempty" yaml:"capabilities"`
}

// EnabledCapabilities returns the capabilities set to true, sorted by name
func (d Descriptor) EnabledCapabilities() []string {
	caps := make([]string, 0, len(d.Capabilities))
	for name, on := range d.Capabilities {
		if on {
			caps = append(caps, name)
		}
	}
	sort.Strings(caps)
	return caps
}

// Catalog is the categorized model list served by the backend.
// Each slice keeps the order the backend returned.
type Catalog struct {
	LLM   []Descriptor `json:"llm_models"`
	Image []Descriptor `json:"image_models"`
	Audio []Descriptor `json:"audio_models"`
	Video []Descriptor `json:"video_models"`
}

// List returns the models of one media type
func (c *Catalog) List(mediaType MediaType) []Descriptor {
	if c == nil {
		return nil
	}
	switch mediaType {
	case MediaLLM:
		return c.LLM
	case MediaImage:
		return c.Image
	case MediaAudio:
		return c.Audio
	case MediaVideo:
		return c.Video
	}
	return nil
}

// Get retrieves a model by media type and model name
func (c *Catalog) Get(mediaType MediaType, modelName string) (Descriptor, bool) {
	for _, d := range c.List(mediaType) {
		if d.ModelName == modelName {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Len returns the total number of models across all media types
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.LLM) + len(c.Image) + len(c.Audio) + len(c.Video)
}

// GroupByProvider groups models by provider display name. Groups keep the
// catalog order of their models.
func GroupByProvider(list []Descriptor) map[string][]Descriptor {
	groups := make(map[string][]Descriptor)
	for _, d := range list {
		groups[d.ProviderName] = append(groups[d.ProviderName], d)
	}
	return groups
}
