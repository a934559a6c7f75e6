package popupclient

import (
	"context"
	"strings"
	"sync"

	"miuhub.app/communityserver/internal/entity"
)

// PageState is the per-visit popup-check state of one screen.
type PageState int

const (
	PageIdle PageState = iota
	PageChecking
	PageShown
	PageSuppressed
)

// Fetcher supplies the reconciled popup list.
type Fetcher interface {
	FetchPopups(ctx context.Context) ([]Popup, error)
}

// PageChecker selects at most one popup per page visit. It owns explicit
// per-session state keyed by page id instead of ambient globals: each page
// moves Idle → Checking → Shown|Suppressed, a navigation away resets it, and
// a single-flight guard absorbs rapid focus events racing each other.
type PageChecker struct {
	fetcher Fetcher
	gate    *DismissalGate

	mu           sync.Mutex
	states       map[string]PageState
	previousPage string
	checking     bool
	current      *Popup
	currentPage  string
}

func NewPageChecker(fetcher Fetcher, gate *DismissalGate) *PageChecker {
	return &PageChecker{
		fetcher: fetcher,
		gate:    gate,
		states:  map[string]PageState{},
	}
}

// Focus runs a popup check for the given page, honoring one-shot-per-visit
// semantics. It returns the popup to present, or nil when nothing should be
// shown. Transient failures resolve to nil so navigation is never blocked.
func (pc *PageChecker) Focus(ctx context.Context, pageID string) (*Popup, error) {
	page := normalizePage(pageID)

	pc.mu.Lock()
	// Page changed: re-arm both sides so returning re-triggers a check.
	if pc.previousPage != "" && pc.previousPage != page {
		delete(pc.states, pc.previousPage)
		delete(pc.states, page)
	}
	pc.previousPage = page

	if pc.current != nil || pc.checking || pc.states[page] != PageIdle {
		pc.mu.Unlock()
		return nil, nil
	}

	pc.checking = true
	pc.states[page] = PageChecking
	pc.mu.Unlock()

	popup, err := pc.selectForPage(ctx, page)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.checking = false

	if err != nil {
		// Fail closed: no popup, but leave the page re-armed for a later
		// focus once the service recovers.
		pc.states[page] = PageIdle
		return nil, err
	}
	if popup == nil {
		pc.states[page] = PageSuppressed
		return nil, nil
	}

	// Commit before anything else can observe this page: the visit is spent.
	pc.states[page] = PageShown
	pc.current = popup
	pc.currentPage = page
	return popup, nil
}

func (pc *PageChecker) selectForPage(ctx context.Context, page string) (*Popup, error) {
	popups, err := pc.fetcher.FetchPopups(ctx)
	if err != nil {
		return nil, err
	}

	for i := range popups {
		popup := &popups[i]
		if !popup.Enabled {
			continue
		}
		if popup.Page() != page {
			continue
		}

		dismissed, err := pc.gate.IsDismissedToday(ctx, popup.ID)
		if err != nil || dismissed {
			// A gate failure counts as dismissed: showing nothing is the safe
			// outcome.
			continue
		}

		// List order is relevance order; the first survivor wins, but an
		// empty popup is never displayed.
		if popup.IsEmpty() {
			return nil, nil
		}
		return popup, nil
	}

	return nil, nil
}

// Blur clears the page's checked mark so that returning re-triggers a check.
// A currently shown popup stays up until it is closed.
func (pc *PageChecker) Blur(pageID string) {
	page := normalizePage(pageID)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.states[page] != PageChecking {
		delete(pc.states, page)
	}
}

// Close dismisses the current popup without recording a daily dismissal. The
// page stays checked for this visit.
func (pc *PageChecker) Close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.current = nil
	pc.currentPage = ""
}

// DismissToday records a daily dismissal for the current popup and closes it.
func (pc *PageChecker) DismissToday(ctx context.Context) error {
	pc.mu.Lock()
	current := pc.current
	pc.mu.Unlock()

	if current == nil {
		return nil
	}
	if err := pc.gate.DismissToday(ctx, current.ID); err != nil {
		return err
	}

	pc.Close()
	return nil
}

// Shown returns the currently presented popup, if any.
func (pc *PageChecker) Shown() *Popup {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.current
}

// State reports the check state of a page, for shells that render debug info.
func (pc *PageChecker) State(pageID string) PageState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.states[normalizePage(pageID)]
}

func normalizePage(pageID string) string {
	page := strings.ToLower(strings.TrimSpace(pageID))
	if page == "" {
		return entity.DefaultPage
	}
	return page
}
