// internal/notify/notifier.go
package notify

import (
	"encoding/json"
	"log"
)

// Broadcaster is the transport the notifier fans events out on. The socket
// hub satisfies it; the dashboard is the only consumer.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Notifier publishes typed events to the live dashboard. Callers emit only
// after their transaction has committed.
type Notifier interface {
	Assign(e AssignEvent)
	Status(e StatusEvent)
	Progress(e ProgressEvent)
	Reassign(e ReassignEvent)
	Cancel(e CancelEvent)
	RequisitionStatus(e RequisitionStatusEvent)
}

// HubNotifier serializes events to JSON and broadcasts them on the hub.
type HubNotifier struct {
	hub Broadcaster
}

var _ Notifier = (*HubNotifier)(nil)

func NewHubNotifier(hub Broadcaster) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) publish(typ string, e interface{}) {
	payload, err := json.Marshal(e)
	if err != nil {
		// An event struct that fails to marshal is a programming error;
		// dropping it must not fail the business operation.
		log.Printf("notify: failed to marshal %s event: %v", typ, err)
		return
	}
	n.hub.Broadcast(payload)
}

func (n *HubNotifier) Assign(e AssignEvent) {
	e.Type = TypeAssign
	n.publish(e.Type, e)
}

func (n *HubNotifier) Status(e StatusEvent) {
	e.Type = TypeStatus
	n.publish(e.Type, e)
}

func (n *HubNotifier) Progress(e ProgressEvent) {
	if e.Type != TypeManual {
		e.Type = TypeScan
	}
	n.publish(e.Type, e)
}

func (n *HubNotifier) Reassign(e ReassignEvent) {
	e.Type = TypeReassign
	n.publish(e.Type, e)
}

func (n *HubNotifier) Cancel(e CancelEvent) {
	e.Type = TypeCancel
	n.publish(e.Type, e)
}

func (n *HubNotifier) RequisitionStatus(e RequisitionStatusEvent) {
	e.Type = TypeRequisitionStatusUpdate
	n.publish(e.Type, e)
}

// NoopNotifier discards every event; used in tests.
type NoopNotifier struct{}

var _ Notifier = NoopNotifier{}

func (NoopNotifier) Assign(AssignEvent)                       {}
func (NoopNotifier) Status(StatusEvent)                       {}
func (NoopNotifier) Progress(ProgressEvent)                   {}
func (NoopNotifier) Reassign(ReassignEvent)                   {}
func (NoopNotifier) Cancel(CancelEvent)                       {}
func (NoopNotifier) RequisitionStatus(RequisitionStatusEvent) {}
