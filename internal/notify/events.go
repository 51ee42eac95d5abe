// internal/notify/events.go
package notify

// Event types consumed by the live dashboard.
const (
	TypeAssign                  = "assign"
	TypeStatus                  = "status"
	TypeScan                    = "scan"
	TypeManual                  = "manual"
	TypeReassign                = "reassign"
	TypeCancel                  = "cancel"
	TypeRequisitionStatusUpdate = "requisition_status_update"
)

// AssignEvent is sent after a batch of assignments is created.
type AssignEvent struct {
	Type           string   `json:"type"`
	DocumentNumber string   `json:"documentNumber"`
	AssignmentIDs  []string `json:"assignmentIDs"`
}

// StatusEvent is sent after an assignment status change.
type StatusEvent struct {
	Type         string `json:"type"`
	AssignmentID string `json:"assignmentID"`
	Status       string `json:"status"`
}

// ProgressEvent is sent after every successful scan or manual entry. Manual
// entries use TypeManual, barcode scans TypeScan.
type ProgressEvent struct {
	Type             string  `json:"type"`
	AssignmentID     string  `json:"assignmentID"`
	AssignmentItemID string  `json:"assignmentItemID"`
	ProgressPct      float64 `json:"progressPct"`
}

// ReassignEvent is sent when an assignment moves to another worker.
type ReassignEvent struct {
	Type         string `json:"type"`
	AssignmentID string `json:"assignmentID"`
	FromWorkerID string `json:"fromWorkerID"`
	ToWorkerID   string `json:"toWorkerID"`
}

// CancelEvent is sent when a requisition's assignment wave is undone.
type CancelEvent struct {
	Type           string   `json:"type"`
	DocumentNumber string   `json:"documentNumber"`
	AssignmentIDs  []string `json:"assignmentIDs"`
}

// RequisitionStatusEvent is sent when a requisition-level status or item
// completion changes.
type RequisitionStatusEvent struct {
	Type           string  `json:"type"`
	DocumentNumber string  `json:"documentNumber"`
	Status         string  `json:"status"`
	ProgressPct    float64 `json:"progressPct,omitempty"`
}
