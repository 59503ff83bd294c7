package popover

import (
	"sort"
	"strings"

	"chatui/models"
)

const (
	favoritesTitle   = "Favorites"
	loadErrorMessage = "Could not load models."
)

// DefaultPopularNames pick the favorites besides premium models
var DefaultPopularNames = []string{"Claude Sonnet 4", "Gemini 2.5 Flash", "gpt-4o", "o1-mini", "DeepSeek-R1", "Llama 4 Scout"}

// DefaultProviderOrder lists the providers shown first in the expanded view
var DefaultProviderOrder = []string{"Anthropic", "Google", "OpenAI", "DeepSeek", "Meta", "xAI"}

// Options tune how the text models section is laid out
type Options struct {
	PopularNames  []string
	ProviderOrder []string
	MaxFavorites  int
}

// DefaultOptions returns the stock popover layout
func DefaultOptions() Options {
	return Options{
		PopularNames:  DefaultPopularNames,
		ProviderOrder: DefaultProviderOrder,
		MaxFavorites:  12,
	}
}

// Card is one model tile
type Card struct {
	Model        models.Descriptor
	MediaType    models.MediaType
	Label        string
	Sub          string
	Initials     string
	Capabilities []string
	Active       bool
	Hidden       bool
}

// Group is a titled grid of cards. Provider groups can be collapsed.
type Group struct {
	Title    string
	Provider string
	Count    int
	Open     bool
	Hidden   bool
	Cards    []Card
}

// Section is the content of one media tab
type Section struct {
	MediaType models.MediaType
	Title     string
	Active    bool
	Empty     string
	Favorites *Group
	Providers []Group
	Grid      *Group
}

// View is everything needed to render the popover
type View struct {
	Open        bool
	Expanded    bool
	MediaType   models.MediaType
	Query       string
	Loaded      bool
	Error       string
	ExpandLabel string
	Sections    []Section
}

// Build lays the catalog out for the given popover state and selection. A nil
// catalog yields a view with no sections, plus the load error if one is set.
func Build(state State, cat *models.Catalog, sel models.Selection, opts Options) View {
	v := View{
		Open:        state.Open,
		Expanded:    state.Expanded,
		MediaType:   state.MediaType,
		Query:       state.Query,
		Loaded:      cat != nil,
		ExpandLabel: "Show all providers",
	}
	if state.Expanded {
		v.ExpandLabel = "Show less"
	}
	if state.LoadError != "" {
		v.Error = loadErrorMessage
	}
	if cat == nil {
		return v
	}

	for _, mt := range models.MediaTypes {
		sec := Section{
			MediaType: mt,
			Title:     mt.Title(),
			Active:    mt == state.MediaType,
		}
		list := cat.List(mt)
		switch {
		case len(list) == 0:
			sec.Empty = "No " + strings.ToLower(mt.Title()) + " available."
		case mt == models.MediaLLM:
			favs, rest := splitFavorites(list, opts)
			if len(favs) > 0 {
				sec.Favorites = newGroup(favoritesTitle, "", favs, mt, state.Query, sel)
			}
			if state.Expanded {
				sec.Providers = providerGroups(rest, mt, state, sel, opts)
			}
		default:
			sec.Grid = newGroup(mt.Title(), "", list, mt, state.Query, sel)
		}
		v.Sections = append(v.Sections, sec)
	}
	return v
}

// Section returns the section for a media type
func (v View) Section(mediaType models.MediaType) (Section, bool) {
	for _, s := range v.Sections {
		if s.MediaType == mediaType {
			return s, true
		}
	}
	return Section{}, false
}

// ActiveCards returns every active card across all groups of a section
func (s Section) ActiveCards() []Card {
	var out []Card
	for _, g := range s.groups() {
		for _, c := range g.Cards {
			if c.Active {
				out = append(out, c)
			}
		}
	}
	return out
}

func (s Section) groups() []Group {
	var gs []Group
	if s.Favorites != nil {
		gs = append(gs, *s.Favorites)
	}
	gs = append(gs, s.Providers...)
	if s.Grid != nil {
		gs = append(gs, *s.Grid)
	}
	return gs
}

// splitFavorites separates the favorites from the rest of the text models.
// Favorites are premium models or models whose name contains a popular name.
func splitFavorites(list []models.Descriptor, opts Options) (favs, rest []models.Descriptor) {
	limit := opts.MaxFavorites
	if limit <= 0 {
		limit = len(list)
	}
	for _, d := range list {
		if len(favs) < limit && isFavorite(d, opts.PopularNames) {
			favs = append(favs, d)
			continue
		}
		rest = append(rest, d)
	}
	return favs, rest
}

func isFavorite(d models.Descriptor, popular []string) bool {
	if d.Premium {
		return true
	}
	for _, p := range popular {
		if p != "" && strings.Contains(d.ModelName, p) {
			return true
		}
	}
	return false
}

func providerGroups(list []models.Descriptor, mt models.MediaType, state State, sel models.Selection, opts Options) []Group {
	byProvider := models.GroupByProvider(list)
	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}
	sortProviders(names, opts.ProviderOrder)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		g := newGroup(name, byProvider[name][0].Provider, byProvider[name], mt, state.Query, sel)
		g.Open = state.OpenSections[name]
		groups = append(groups, *g)
	}
	return groups
}

// sortProviders puts the configured providers first in their configured
// order and the others after them alphabetically.
func sortProviders(names []string, order []string) {
	rank := make(map[string]int, len(order))
	for i, n := range order {
		rank[n] = i
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		}
		return names[i] < names[j]
	})
}

func newGroup(title, provider string, list []models.Descriptor, mt models.MediaType, query string, sel models.Selection) *Group {
	g := &Group{Title: title, Provider: provider, Count: len(list), Hidden: true}
	for _, d := range list {
		c := newCard(d, mt, sel)
		c.Hidden = !matches(query, d)
		if !c.Hidden {
			g.Hidden = false
		}
		g.Cards = append(g.Cards, c)
	}
	return g
}

func newCard(d models.Descriptor, mt models.MediaType, sel models.Selection) Card {
	label := d.DisplayNameMain
	if label == "" {
		label = d.ModelName
	}
	return Card{
		Model:        d,
		MediaType:    mt,
		Label:        label,
		Sub:          d.DisplayNameSub,
		Initials:     initials(d),
		Capabilities: d.EnabledCapabilities(),
		Active:       d.ModelName == sel.ModelName && mt == sel.MediaType,
	}
}

// initials is the logo fallback text
func initials(d models.Descriptor) string {
	if d.DisplayNameMain != "" {
		r := []rune(d.DisplayNameMain)
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	if d.Provider != "" {
		return strings.ToUpper(string([]rune(d.Provider)[:1]))
	}
	return "?"
}

// firstCard is the card a media switch selects: the first one shown on that
// tab, or the first catalog entry when the text tab shows no card yet.
func firstCard(cat *models.Catalog, mt models.MediaType, expanded bool, opts Options) (models.Descriptor, bool) {
	list := cat.List(mt)
	if len(list) == 0 {
		return models.Descriptor{}, false
	}
	if mt != models.MediaLLM {
		return list[0], true
	}
	favs, rest := splitFavorites(list, opts)
	if len(favs) > 0 {
		return favs[0], true
	}
	if expanded {
		groups := providerGroups(rest, mt, State{}, models.Selection{}, opts)
		if len(groups) > 0 {
			return groups[0].Cards[0].Model, true
		}
	}
	return list[0], true
}
