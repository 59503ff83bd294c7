package popover

import (
	"fmt"

	"chatui/models"
)

// Select points the selection at a model of the loaded catalog and closes the
// popover. Models missing from the catalog are rejected and nothing changes.
func Select(state *State, cat *models.Catalog, sel *models.Selection, mediaType models.MediaType, modelName string) error {
	if cat == nil {
		return fmt.Errorf("%w: catalog not loaded", models.ErrUnknownModel)
	}
	next, err := cat.Resolve(mediaType, modelName)
	if err != nil {
		return err
	}
	*sel = next
	state.MediaType = mediaType
	state.Open = false
	return nil
}

// Reconcile moves a selection that the catalog no longer offers onto the first
// card of its tab, or of the text tab when its own tab is empty. It reports
// whether the selection changed.
func Reconcile(sel *models.Selection, cat *models.Catalog, opts Options) bool {
	if cat == nil || cat.Len() == 0 {
		return false
	}
	if _, ok := cat.Get(sel.MediaType, sel.ModelName); ok {
		return false
	}
	mediaType := sel.MediaType
	d, ok := firstCard(cat, mediaType, false, opts)
	if !ok {
		mediaType = models.MediaLLM
		if d, ok = firstCard(cat, mediaType, false, opts); !ok {
			return false
		}
	}
	*sel = models.SelectionFor(mediaType, d)
	return true
}
