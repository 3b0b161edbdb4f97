package store

import (
	"github.com/roach88/mlmdq/internal/ir"
)

// Properties maps property names to values. Only Int, Double and String
// values can be stored.
type Properties map[string]ir.Value

// Artifact is a stored artifact record.
type Artifact struct {
	ID         int64
	TypeID     int64
	URI        string
	State      int
	Name       string
	ExternalID string

	// Times are milliseconds since the epoch. Zero means now.
	CreateTime     int64
	LastUpdateTime int64

	Properties       Properties
	CustomProperties Properties
}

// Execution is a stored execution record.
type Execution struct {
	ID             int64
	TypeID         int64
	LastKnownState int
	Name           string
	ExternalID     string
	CreateTime     int64
	LastUpdateTime int64

	Properties       Properties
	CustomProperties Properties
}

// Context is a stored context record. Name is required.
type Context struct {
	ID             int64
	TypeID         int64
	Name           string
	ExternalID     string
	CreateTime     int64
	LastUpdateTime int64

	Properties       Properties
	CustomProperties Properties
}

// EventType is the direction of an event between an artifact and an execution.
type EventType int

const (
	EventUnknown EventType = iota
	EventDeclaredOutput
	EventDeclaredInput
	EventInput
	EventOutput
	EventInternalInput
	EventInternalOutput
	EventPendingOutput
)

// Event links an artifact to an execution.
type Event struct {
	ArtifactID  int64
	ExecutionID int64
	Type        EventType
	// Time is milliseconds since the epoch. Zero means now.
	Time int64
}
