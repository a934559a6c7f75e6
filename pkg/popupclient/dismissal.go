package popupclient

import (
	"context"
	"fmt"
	"time"
)

// The reference day for "dismiss for today" is always KST, independent of the
// device locale, so the suppression window matches the campaign's audience.
var kst = time.FixedZone("KST", 9*60*60)

// DismissalGate implements per-device, per-popup, per-day suppression. A
// dismissal key stops matching as soon as the KST calendar day changes, so
// entries never need explicit cleanup.
type DismissalGate struct {
	store KVStore
	now   func() time.Time
}

func NewDismissalGate(store KVStore) *DismissalGate {
	return &DismissalGate{
		store: store,
		now:   time.Now,
	}
}

// IsDismissedToday reports whether the popup was dismissed on the current KST
// day on this device.
func (g *DismissalGate) IsDismissedToday(ctx context.Context, popupID uint) (bool, error) {
	value, err := g.store.Get(ctx, g.dayKey(popupID))
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// DismissToday suppresses the popup for the rest of the current KST day.
func (g *DismissalGate) DismissToday(ctx context.Context, popupID uint) error {
	return g.store.Set(ctx, g.dayKey(popupID), "true")
}

func (g *DismissalGate) dayKey(popupID uint) string {
	day := g.now().In(kst).Format("2006-01-02")
	return fmt.Sprintf("popup_dismissed_%d_%s", popupID, day)
}
