package domain

import "strings"

// Span attribute keys read by the progress bridge.
const (
	// AttrNamespace prefixes every kiln attribute key.
	AttrNamespace = "kiln."
	// AttrStage names the stage a span belongs to.
	AttrStage = "kiln.stage"
	// AttrTotal is the number of items a stage span will process.
	AttrTotal = "kiln.total"
	// AttrItem names the item an item span processes.
	AttrItem = "kiln.item"
	// AttrRunID identifies one batch build or one watch dispatch.
	AttrRunID = "kiln.run_id"
)

// ItemStatus is the lifecycle state of one unit of work in a stage.
type ItemStatus string

const (
	// ItemStatusPending indicates the item has not started.
	ItemStatusPending ItemStatus = "pending"
	// ItemStatusRunning indicates the item is being processed.
	ItemStatusRunning ItemStatus = "running"
	// ItemStatusDone indicates the item was converted.
	ItemStatusDone ItemStatus = "done"
	// ItemStatusFailed indicates the item recorded at least one error.
	ItemStatusFailed ItemStatus = "failed"
	// ItemStatusSkipped indicates the content hash matched and nothing ran.
	ItemStatusSkipped ItemStatus = "skipped"
)

// IsTerminal checks if a status is a terminal state.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case ItemStatusDone, ItemStatusFailed, ItemStatusSkipped:
		return true
	default:
		return false
	}
}

// NormalizeItemStatus converts a string to an ItemStatus, defaulting to pending if unknown.
func NormalizeItemStatus(s string) ItemStatus {
	switch ItemStatus(strings.ToLower(s)) {
	case ItemStatusRunning:
		return ItemStatusRunning
	case ItemStatusDone:
		return ItemStatusDone
	case ItemStatusFailed:
		return ItemStatusFailed
	case ItemStatusSkipped:
		return ItemStatusSkipped
	default:
		return ItemStatusPending
	}
}
