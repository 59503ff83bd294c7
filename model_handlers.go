package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"chatui/models"
	"chatui/popover"
	"chatui/session"
)

// loadCatalog returns the catalog, fetching it on first use, and records the
// outcome on the session's popover so the view can show the load error.
func (s *Server) loadCatalog(ctx context.Context, sess *session.Session) *models.Catalog {
	cat, err := s.catalog.Get(ctx)
	opts := s.ui().popover
	sess.Update(func(sel *models.Selection, p *popover.State) error {
		p.LoadError = ""
		if err != nil {
			p.LoadError = err.Error()
			return nil
		}
		reconcileSelection(sess.ID, sel, cat, opts)
		return nil
	})
	return cat
}

// syncSelection keeps the session's selection inside the loaded catalog. It
// does nothing before the first successful load.
func (s *Server) syncSelection(sess *session.Session) {
	cat := s.catalog.Peek()
	if cat == nil {
		return
	}
	opts := s.ui().popover
	sess.Update(func(sel *models.Selection, _ *popover.State) error {
		reconcileSelection(sess.ID, sel, cat, opts)
		return nil
	})
}

func reconcileSelection(id string, sel *models.Selection, cat *models.Catalog, opts popover.Options) {
	prev := sel.ModelName
	if popover.Reconcile(sel, cat, opts) {
		log.Printf("[Session] %s: %s is not in the catalog, using %s/%s", id, prev, sel.MediaType, sel.ModelName)
	}
}

// handleToggleModelPopover handles POST /popover/toggle
func (s *Server) handleToggleModelPopover(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}

	var open bool
	sess.Update(func(_ *models.Selection, p *popover.State) error {
		open = p.Toggle()
		return nil
	})
	if open {
		s.loadCatalog(r.Context(), sess)
	}
	backToPage(w, r)
}

// handleTogglePopoverExpanded handles POST /popover/expand
func (s *Server) handleTogglePopoverExpanded(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	sess.Update(func(_ *models.Selection, p *popover.State) error {
		p.ToggleExpanded()
		return nil
	})
	backToPage(w, r)
}

// handleToggleProviderSection handles POST /popover/section
func (s *Server) handleToggleProviderSection(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	provider := r.FormValue("provider")
	if provider == "" {
		http.Error(w, "provider is required", http.StatusBadRequest)
		return
	}
	sess.Update(func(_ *models.Selection, p *popover.State) error {
		p.ToggleSection(provider)
		return nil
	})
	backToPage(w, r)
}

// handleSwitchMediaType handles POST /popover/media
func (s *Server) handleSwitchMediaType(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	mediaType, err := models.ParseMediaType(r.FormValue("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cat := s.loadCatalog(r.Context(), sess)
	opts := s.ui().popover
	sess.Update(func(sel *models.Selection, p *popover.State) error {
		p.SwitchMediaType(mediaType, cat, sel, opts)
		return nil
	})
	backToPage(w, r)
}

// handleSelectModel handles POST /popover/select
func (s *Server) handleSelectModel(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !requirePOST(w, r) {
		return
	}
	mediaType, err := models.ParseMediaType(r.FormValue("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	modelName := r.FormValue("model")

	cat := s.loadCatalog(r.Context(), sess)
	err = sess.Update(func(sel *models.Selection, p *popover.State) error {
		return popover.Select(p, cat, sel, mediaType, modelName)
	})
	if errors.Is(err, models.ErrUnknownModel) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("[HTTP] Failed to select model: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if debugMode {
		log.Printf("[HTTP] Session %s selected %s/%s", sess.ID, mediaType, modelName)
	}
	backToPage(w, r)
}
