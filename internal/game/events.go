package game

import "fmt"

// DeselectReason says why a card left the selection
type DeselectReason string

const (
	ReasonEvicted DeselectReason = "evicted"
	ReasonRemoved DeselectReason = "removed"
	ReasonReset   DeselectReason = "reset"
	// ReasonResync tells the UI to revert a card the engine never held,
	// so a display that drifted out of sync is forced back into agreement.
	ReasonResync DeselectReason = "resync"
)

// Deselection tells observers that a card's visual state must be reverted
type Deselection struct {
	Name   string         `json:"name"`
	Reason DeselectReason `json:"reason"`
}

func (d Deselection) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Reason)
}

// Observer receives deselections synchronously. It must not call back into the engine.
type Observer func(Deselection)
