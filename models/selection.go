package models

import "fmt"

// Selection is the model currently chosen for a session. The send flow reads
// it to parameterize each chat request.
type Selection struct {
	ModelName string    `json:"model_name" yaml:"model_name"`
	Provider  string    `json:"provider" yaml:"provider"`
	APIName   string    `json:"api_name" yaml:"api_name"`
	MediaType MediaType `json:"mediaType" yaml:"media_type"`
}

// DefaultSelection is used before the catalog has been loaded
var DefaultSelection = Selection{
	ModelName: "Gemini 2.5 Flash",
	Provider:  "google",
	APIName:   "gemini-2.5-flash-preview-05-20",
	MediaType: MediaLLM,
}

// SelectionFor builds the selection that points at a descriptor
func SelectionFor(mediaType MediaType, d Descriptor) Selection {
	return Selection{
		ModelName: d.ModelName,
		Provider:  d.Provider,
		APIName:   d.APIName,
		MediaType: mediaType,
	}
}

// Resolve looks a model up in the catalog and returns the selection for it.
// Only models present in the catalog can be selected.
func (c *Catalog) Resolve(mediaType MediaType, modelName string) (Selection, error) {
	d, ok := c.Get(mediaType, modelName)
	if !ok {
		return Selection{}, fmt.Errorf("%w: %s/%s", ErrUnknownModel, mediaType, modelName)
	}
	return SelectionFor(mediaType, d), nil
}
