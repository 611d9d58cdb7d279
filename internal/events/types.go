// Package events provides the in-process event bus that announces render cycles.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// SnapshotUpdated fires after a render cycle swaps in a new snapshot
	SnapshotUpdated EventType = "SNAPSHOT_UPDATED"
	// SectorRotated fires once per sector whose performance label changed between cycles
	SectorRotated EventType = "SECTOR_ROTATED"
	// RefreshFailed fires when a render cycle could not complete
	RefreshFailed EventType = "REFRESH_FAILED"
)

// AllTypes lists every event type a stream client can subscribe to
var AllTypes = []EventType{SnapshotUpdated, SectorRotated, RefreshFailed}

// Event represents a system event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// EventData is implemented by every typed payload
type EventData interface {
	EventType() EventType
}

// SnapshotUpdatedData summarizes a freshly built snapshot
type SnapshotUpdatedData struct {
	CycleID         string    `json:"cycle_id"`
	BuiltAt         time.Time `json:"built_at"`
	Sectors         int       `json:"sectors"`
	ExcludedRecords int       `json:"excluded_records"`
	Nodes           int       `json:"nodes"`
	Edges           int       `json:"edges"`
	ExcludedFlows   int       `json:"excluded_flows"`
	Rotations       int       `json:"rotations"`
}

// EventType returns the event type for SnapshotUpdatedData
func (d *SnapshotUpdatedData) EventType() EventType {
	return SnapshotUpdated
}

// SectorRotatedData describes one sector's label change
type SectorRotatedData struct {
	CycleID   string `json:"cycle_id"`
	Sector    string `json:"sector"`
	From      string `json:"from"`
	To        string `json:"to"`
	Direction string `json:"direction"`
}

// EventType returns the event type for SectorRotatedData
func (d *SectorRotatedData) EventType() EventType {
	return SectorRotated
}

// RefreshFailedData carries the reason a render cycle was abandoned
type RefreshFailedData struct {
	Error string `json:"error"`
}

// EventType returns the event type for RefreshFailedData
func (d *RefreshFailedData) EventType() EventType {
	return RefreshFailed
}
