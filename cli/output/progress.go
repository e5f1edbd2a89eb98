package output

import (
	"strings"

	"github.com/pterm/pterm"
)

// PartProgress renders a single progress bar that advances once per part
// file. A nil receiver is a no-op so callers can disable rendering.
type PartProgress struct {
	bar *pterm.ProgressbarPrinter
}

// StartPartProgress begins a bar sized to totalParts. Returns nil when the
// total is unknown or zero; callers fall back to plain logging.
func StartPartProgress(title string, totalParts int) *PartProgress {
	if totalParts <= 0 {
		return nil
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(totalParts).
		WithTitle(strings.TrimSpace(title)).
		Start()
	if err != nil {
		return nil
	}
	return &PartProgress{bar: bar}
}

// Increment advances the bar by one part and shows its name.
func (p *PartProgress) Increment(name string) {
	if p == nil || p.bar == nil {
		return
	}
	p.bar.UpdateTitle(name)
	p.bar.Increment()
}

func (p *PartProgress) Stop() {
	if p == nil || p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
}
