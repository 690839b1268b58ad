// Package operations implements spec §4.5's Operation Registry: every
// mutating compute/VPC request is wrapped in a pollable Operation record.
// This core's state machine is synchronous (the domain call completes
// before Wrap returns), so every Operation is created already DONE —
// spec §4.5's "pollable record" contract without an actually-async
// execution engine behind it. Grounded on aistore's xaction/xreg registry
// of named, trackable jobs, collapsed to this core's synchronous model.
package operations

import "github.com/cloudcore/cloudcore/wire"

// Scope is an Operation's addressing domain (spec §3).
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRegion Scope = "region"
	ScopeZone   Scope = "zone"
)

// Operation is the persisted record behind spec §3's Operation entity.
type Operation struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	Scope         Scope  `json:"scope"`
	ScopeName     string `json:"scopeName,omitempty"` // zone or region name; empty for global
	OperationType string `json:"operationType"`
	TargetLink    string `json:"targetLink,omitempty"`
	Status        string `json:"status"`
	Progress      int32  `json:"progress"`
	InsertTime    string `json:"insertTime"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// ToWire renders op as the wire.Operation shape the HTTP layer returns.
func (op Operation) ToWire() wire.Operation {
	w := wire.Operation{
		Name:          op.ID,
		OperationType: op.OperationType,
		TargetLink:    op.TargetLink,
		Status:        op.Status,
		Progress:      op.Progress,
		InsertTime:    op.InsertTime,
		StartTime:     op.StartTime,
		EndTime:       op.EndTime,
	}
	if op.ErrorMessage != "" {
		w.Error = &wire.OperationError{
			Errors: []wire.OperationErrorItem{{Code: op.ErrorCode, Message: op.ErrorMessage}},
		}
	}
	return w
}
