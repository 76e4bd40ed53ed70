// Package item defines the payloads flowing through the work-item queue.
package item

import "fmt"

// WorkItem is one unit of business data created by the producer and
// processed exactly once by the consumer. The ID is assigned by the queue;
// the payload is an opaque field mapping.
type WorkItem struct {
	ID      string
	Payload map[string]any
}

// Payload keys of a reporter item on the wire.
const (
	keyFailedItemID      = "failed_item_id"
	keyFailedItemCode    = "failed_item_code"
	keyFailedItemPayload = "failed_item_payload"
)

// ReporterItem correlates a reportable business failure back to the work
// item it occurred on. It holds the originating item's queue id as a lookup
// key, never a live reference; the queue stays the source of truth for the
// item itself.
type ReporterItem struct {
	FailedItemID      string
	FailedItemCode    string
	FailedItemPayload map[string]any
}

// NewReporterItem builds a reporter item for a failed work item.
func NewReporterItem(failedID, code string, payload map[string]any) *ReporterItem {
	return &ReporterItem{
		FailedItemID:      failedID,
		FailedItemCode:    code,
		FailedItemPayload: payload,
	}
}

// Payload renders the reporter item as a queue payload.
func (r *ReporterItem) Payload() map[string]any {
	return map[string]any{
		keyFailedItemID:      r.FailedItemID,
		keyFailedItemCode:    r.FailedItemCode,
		keyFailedItemPayload: r.FailedItemPayload,
	}
}

// ReporterItemFromPayload parses a queue payload back into a reporter item.
func ReporterItemFromPayload(p map[string]any) (*ReporterItem, error) {
	id, ok := p[keyFailedItemID].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("reporter item payload missing %s", keyFailedItemID)
	}
	code, ok := p[keyFailedItemCode].(string)
	if !ok || code == "" {
		return nil, fmt.Errorf("reporter item payload missing %s", keyFailedItemCode)
	}

	var payload map[string]any
	if raw, ok := p[keyFailedItemPayload]; ok && raw != nil {
		payload, ok = raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("reporter item payload has invalid %s", keyFailedItemPayload)
		}
	}

	return &ReporterItem{
		FailedItemID:      id,
		FailedItemCode:    code,
		FailedItemPayload: payload,
	}, nil
}
