package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"property-search/internal/dedupe"
	"property-search/internal/markers"
	"property-search/internal/models"
	"property-search/internal/presenter"
	"property-search/internal/query"
	"property-search/internal/selection"
	"property-search/internal/viewport"
)

var (
	ErrPageOutOfRange = errors.New("page out of range")
	ErrUnknownListing = errors.New("listing not in current results")
	ErrNotLoaded      = errors.New("no results loaded yet")
	ErrNoSelection    = errors.New("no listing selected")
)

// ListingsFetcher is the listings collaborator
type ListingsFetcher interface {
	FetchListings(ctx context.Context, s query.State) (*models.ListingsPage, error)
}

// OpinionsFetcher is the opinions collaborator
type OpinionsFetcher interface {
	FetchOpinions(ctx context.Context, listingID string, limit int) (*models.OpinionsResponse, error)
}

// Options configures new sessions
type Options struct {
	Initial       query.State
	Viewport      viewport.Config
	Markers       markers.Colorizer
	Highlight     time.Duration
	OpinionsLimit int
	Now           func() time.Time
}

// Ticket identifies the fetch that must follow a state change. Only the
// response for the newest ticket is ever applied.
type Ticket struct {
	Version uint64
	State   query.State
}

// OpinionsTicket is a Ticket for the opinions of the selected listing
type OpinionsTicket struct {
	Version   uint64
	ListingID string
}

// Session is one user's search: a single authoritative QueryState and
// SelectionState, plus the last successfully fetched page. Every
// exported method is one UI event and runs under the session lock;
// fetches run outside it.
type Session struct {
	ID string

	mu       sync.Mutex
	opts     Options
	listings ListingsFetcher
	opinions OpinionsFetcher

	state    query.State
	version  uint64
	settled  uint64
	page     *models.ListingsPage
	failed   bool
	lastSeen time.Time

	coordinator *selection.Coordinator
	list        *selection.ListView
	mapView     *selection.MapView
	viewport    *viewport.Sync
	remote      *viewport.Remote

	opinionsVersion uint64
	opinionsSettled uint64
	opinionsFor     string
	opinionsData    *models.OpinionsResponse
	opinionsFailed  bool
}

// New creates a session in its initial state. Call Fetch with the
// returned ticket to load the first page.
func New(id string, opts Options, listings ListingsFetcher, opinions OpinionsFetcher) (*Session, Ticket) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OpinionsLimit <= 0 {
		opts.OpinionsLimit = 3
	}

	s := &Session{
		ID:       id,
		opts:     opts,
		listings: listings,
		opinions: opinions,
		state:    opts.Initial.Clone(),
		version:  1,
		lastSeen: opts.Now(),
		viewport: viewport.NewSync(opts.Viewport),
	}
	s.list = selection.NewListView(opts.Highlight, opts.Now)
	s.mapView = selection.NewMapView(s.lookup, presenter.Summary, opts.Markers.Coordinates)
	s.coordinator = selection.NewCoordinator(s.list, s.mapView)

	return s, Ticket{Version: s.version, State: s.state.Clone()}
}

// State returns a copy of the current query
func (s *Session) State() query.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies a filter/sort/page patch. A patch that leaves the query
// unchanged returns the current ticket and changed=false.
func (s *Session) Update(p query.Patch) (Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(p)
}

// SetAmenity toggles one amenity filter with set semantics
func (s *Session) SetAmenity(key string, on bool) (Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := query.SetAmenity(s.state, key, on)
	if err != nil || !changed {
		return s.ticketLocked(), false, err
	}
	return s.replaceLocked(next), true, nil
}

// Retry reissues the current query, superseding anything in flight
func (s *Session) Retry() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.ticketLocked()
}

// Navigate moves one page forward or back, only when the pager allows it
func (s *Session) Navigate(d presenter.Direction) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return s.ticketLocked(), ErrNotLoaded
	}
	target, ok := s.paginationLocked().Request(d)
	if !ok {
		return s.ticketLocked(), fmt.Errorf("%w: %s from page %d", ErrPageOutOfRange, d, s.state.Page)
	}
	t, _, err := s.applyLocked(query.Patch{Page: &target})
	return t, err
}

// GoToPage jumps to page n, rejecting pages outside the known total
func (s *Session) GoToPage(n int) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		return s.ticketLocked(), fmt.Errorf("%w: %d", ErrPageOutOfRange, n)
	}
	if s.page == nil && n != 1 {
		return s.ticketLocked(), ErrNotLoaded
	}
	if s.page != nil && !s.paginationLocked().Allows(n) {
		return s.ticketLocked(), fmt.Errorf("%w: %d", ErrPageOutOfRange, n)
	}
	t, _, err := s.applyLocked(query.Patch{Page: &n})
	return t, err
}

// Fetch loads the page for t and applies it only if t is still the
// newest ticket. Responses for superseded queries are dropped. Failures
// keep the previously rendered page and raise the failure flag.
func (s *Session) Fetch(ctx context.Context, t Ticket) (applied bool, err error) {
	start := s.opts.Now()
	page, err := s.listings.FetchListings(ctx, t.State)

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Version != s.version {
		log.Printf("[session] id=%s version=%d current=%d dropped stale response", s.ID, t.Version, s.version)
		return false, nil
	}
	s.settled = t.Version

	if err != nil {
		s.failed = true
		log.Printf("[session] id=%s version=%d listings fetch failed: %v", s.ID, t.Version, err)
		return true, err
	}

	s.page = page
	s.failed = false
	s.reconcileSelectionLocked()
	s.viewport.Render(s.opts.Markers.Build(page.Items))
	log.Printf("[session] id=%s version=%d duration_ms=%d items=%d total=%d query=%q",
		s.ID, t.Version, s.opts.Now().Sub(start).Milliseconds(), len(page.Items), page.Total, t.State.String())
	return true, nil
}

// MapLoaded attaches a newly loaded browser map and returns how it must
// position itself: fitted to the current results, or the default view.
func (s *Session) MapLoaded() (*viewport.Instruction, markers.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remote = viewport.NewRemote()
	items := s.itemsLocked()
	s.viewport.Load(s.remote, items)
	s.viewport.Render(s.opts.Markers.Build(items))
	return s.remote.Instruction(), s.remote.Layer()
}

// MapSettled records the bounds reported after a pan/zoom and turns them
// into a bbox filter (page reset to 1).
func (s *Session) MapSettled(b models.Bounds) (Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remote == nil {
		return s.ticketLocked(), false, viewport.ErrNoMap
	}
	s.remote.Report(b)
	p, err := s.viewport.Settled()
	if err != nil {
		return s.ticketLocked(), false, err
	}
	return s.applyLocked(p)
}

// Select makes id the selected listing (card or marker click). Selecting
// the current id again re-triggers the highlight. The returned ticket is
// for loading that listing's opinions.
func (s *Session) Select(id string) (OpinionsTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(id); !ok {
		return OpinionsTicket{}, fmt.Errorf("%w: %q", ErrUnknownListing, id)
	}
	s.coordinator.Select(id)

	if s.opinionsFor == id && s.opinionsData != nil {
		return OpinionsTicket{Version: s.opinionsVersion, ListingID: id}, nil
	}
	s.opinionsVersion++
	s.opinionsFor = id
	s.opinionsData = nil
	s.opinionsFailed = false
	return OpinionsTicket{Version: s.opinionsVersion, ListingID: id}, nil
}

// ClearSelection drops the selection and any opinions shown for it
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearSelectionLocked()
}

func (s *Session) clearSelectionLocked() {
	s.coordinator.Clear()
	s.opinionsVersion++
	s.opinionsFor = ""
	s.opinionsData = nil
	s.opinionsFailed = false
}

// reconcileSelectionLocked keeps the selection consistent with a newly
// applied page: a listing that is still present gets its overlay rebuilt
// from the fresh payload, one that dropped out is deselected.
func (s *Session) reconcileSelectionLocked() {
	id, ok := s.coordinator.Selected()
	if !ok {
		return
	}
	if _, found := s.lookup(id); !found {
		log.Printf("[session] id=%s listing_id=%s left the results, selection cleared", s.ID, id)
		s.clearSelectionLocked()
		return
	}
	s.mapView.Selected(id)
}

// OpinionsTicket returns the ticket for the current selection's opinions
func (s *Session) OpinionsTicket() (OpinionsTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opinionsFor == "" {
		return OpinionsTicket{}, ErrNoSelection
	}
	return OpinionsTicket{Version: s.opinionsVersion, ListingID: s.opinionsFor}, nil
}

// FetchOpinions loads opinions for t, dropping the response if the
// selection changed while it was in flight.
func (s *Session) FetchOpinions(ctx context.Context, t OpinionsTicket) (applied bool, err error) {
	if s.opinions == nil {
		return false, nil
	}
	resp, err := s.opinions.FetchOpinions(ctx, t.ListingID, s.opts.OpinionsLimit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Version != s.opinionsVersion {
		log.Printf("[session] id=%s listing_id=%s dropped stale opinions", s.ID, t.ListingID)
		return false, nil
	}
	s.opinionsSettled = t.Version
	if err != nil {
		s.opinionsFailed = true
		log.Printf("[session] id=%s listing_id=%s opinions fetch failed: %v", s.ID, t.ListingID, err)
		return true, err
	}
	s.opinionsData = resp
	s.opinionsFailed = false
	return true, nil
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.opts.Now()
	s.mu.Unlock()
}

// LastSeen is when the session last handled an event
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) applyLocked(p query.Patch) (Ticket, bool, error) {
	next, err := query.Apply(s.state, p)
	if err != nil {
		return s.ticketLocked(), false, err
	}
	if next.Key() == s.state.Key() {
		return s.ticketLocked(), false, nil
	}
	return s.replaceLocked(next), true, nil
}

func (s *Session) replaceLocked(next query.State) Ticket {
	s.state = next
	s.version++
	return s.ticketLocked()
}

func (s *Session) ticketLocked() Ticket {
	return Ticket{Version: s.version, State: s.state.Clone()}
}

func (s *Session) itemsLocked() []models.Listing {
	if s.page == nil {
		return nil
	}
	return dedupe.Listings(s.page.Items)
}

func (s *Session) paginationLocked() presenter.Pagination {
	return presenter.Render(s.page, s.state, nil).Pagination
}

// lookup finds id among the rendered (deduplicated) results
func (s *Session) lookup(id string) (*models.Listing, bool) {
	if id == "" || s.page == nil {
		return nil, false
	}
	items := dedupe.Listings(s.page.Items)
	for i := range items {
		if items[i].ListingID == id {
			return &items[i], true
		}
	}
	return nil, false
}
