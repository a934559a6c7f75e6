package popupclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miuhub.app/communityserver/internal/entity"
)

type fakeFetcher struct {
	popups []Popup
	err    error
	calls  int
}

func (f *fakeFetcher) FetchPopups(context.Context) ([]Popup, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.popups, nil
}

func textPopup(id uint, page string) Popup {
	return Popup{
		ID:          id,
		Title:       "Popup",
		DisplayPage: page,
		Enabled:     true,
		ContentBlocks: []entity.ContentBlock{
			{ID: "text_1", Type: entity.BlockTypeText, Content: "hello"},
		},
	}
}

func newTestChecker(fetcher Fetcher) (*PageChecker, *DismissalGate) {
	gate := NewDismissalGate(NewMemoryStore())
	return NewPageChecker(fetcher, gate), gate
}

func TestFocusSelectsFirstMatchForPage(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{
		textPopup(1, "board"),
		textPopup(2, "home"),
		textPopup(3, "home"),
	}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(2), popup.ID, "list order decides between matches")
	assert.Equal(t, PageShown, checker.State("home"))
}

func TestFocusNormalizesPageNames(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(1, "board")}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "  Board ")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(1), popup.ID)
}

func TestFocusBlankPopupPageDefaultsToHome(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(1, "")}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "home")
	require.NoError(t, err)
	require.NotNil(t, popup)

	checker.Close()
	checker.Blur("home")

	popup, err = checker.Focus(context.Background(), "board")
	require.NoError(t, err)
	assert.Nil(t, popup, "an unpaged popup belongs to home only")
}

func TestFocusIsOneShotPerVisit(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(1, "home")}}
	checker, _ := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	checker.Close()

	// The visit is spent even after the popup closed.
	popup, err = checker.Focus(ctx, "home")
	require.NoError(t, err)
	assert.Nil(t, popup)
	assert.Equal(t, 1, fetcher.calls)

	// Leaving and returning re-arms the page.
	checker.Blur("home")
	popup, err = checker.Focus(ctx, "home")
	require.NoError(t, err)
	assert.NotNil(t, popup)
	assert.Equal(t, 2, fetcher.calls)
}

func TestFocusShownPopupBlocksOtherPages(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{
		textPopup(1, "home"),
		textPopup(2, "board"),
	}}
	checker, _ := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)

	// While a popup is up, newly focused pages never start a check.
	popup, err = checker.Focus(ctx, "board")
	require.NoError(t, err)
	assert.Nil(t, popup)
	assert.Equal(t, 1, fetcher.calls)
}

func TestFocusPageChangeReArmsBothPages(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{
		textPopup(1, "home"),
		textPopup(2, "board"),
	}}
	checker, _ := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	checker.Close()

	popup, err = checker.Focus(ctx, "board")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(2), popup.ID)
	checker.Close()

	// Coming back to home counts as a fresh visit.
	popup, err = checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(1), popup.ID)
}

func TestFocusSkipsDismissedPopups(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{
		textPopup(42, "home"),
		textPopup(2, "home"),
	}}
	checker, gate := newTestChecker(fetcher)
	ctx := context.Background()

	day1 := time.Date(2025, time.June, 10, 12, 0, 0, 0, kst)
	gate.now = func() time.Time { return day1 }
	require.NoError(t, gate.DismissToday(ctx, 42))

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(2), popup.ID, "dismissal filters candidates, it does not end selection")

	// The next KST day the dismissed popup is eligible again.
	checker.Close()
	checker.Blur("home")
	gate.now = func() time.Time { return day1.Add(24 * time.Hour) }

	popup, err = checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(42), popup.ID)
}

func TestFocusSuppressesWhenNothingMatches(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(1, "board")}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "home")
	require.NoError(t, err)
	assert.Nil(t, popup)
	assert.Equal(t, PageSuppressed, checker.State("home"))
}

func TestFocusNeverShowsEmptyPopup(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{
		{ID: 1, DisplayPage: "home", Enabled: true},
		textPopup(2, "home"),
	}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "home")
	require.NoError(t, err)
	assert.Nil(t, popup, "the winning candidate being empty shows nothing at all")
	assert.Equal(t, PageSuppressed, checker.State("home"))
}

func TestFocusSkipsDisabledPopups(t *testing.T) {
	disabled := textPopup(1, "home")
	disabled.Enabled = false
	fetcher := &fakeFetcher{popups: []Popup{disabled, textPopup(2, "home")}}
	checker, _ := newTestChecker(fetcher)

	popup, err := checker.Focus(context.Background(), "home")
	require.NoError(t, err)
	require.NotNil(t, popup)
	assert.Equal(t, uint(2), popup.ID)
}

func TestFocusFetchErrorLeavesPageReArmed(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	checker, _ := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	assert.Error(t, err)
	assert.Nil(t, popup)
	assert.Equal(t, PageIdle, checker.State("home"))

	// The next focus retries once the service recovers.
	fetcher.err = nil
	fetcher.popups = []Popup{textPopup(1, "home")}
	popup, err = checker.Focus(ctx, "home")
	require.NoError(t, err)
	assert.NotNil(t, popup)
}

func TestDismissTodayClosesAndRecords(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(42, "home")}}
	checker, gate := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)

	require.NoError(t, checker.DismissToday(ctx))
	assert.Nil(t, checker.Shown())

	dismissed, err := gate.IsDismissedToday(ctx, 42)
	require.NoError(t, err)
	assert.True(t, dismissed)
}

func TestCloseDoesNotRecordDismissal(t *testing.T) {
	fetcher := &fakeFetcher{popups: []Popup{textPopup(42, "home")}}
	checker, gate := newTestChecker(fetcher)
	ctx := context.Background()

	popup, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, popup)

	checker.Close()
	assert.Nil(t, checker.Shown())

	dismissed, err := gate.IsDismissedToday(ctx, 42)
	require.NoError(t, err)
	assert.False(t, dismissed)
}
