package core

import (
	"encoding/json"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// EventTimePrecision is the timestamp resolution every store can persist losslessly.
const EventTimePrecision = time.Microsecond

// EventCID returns the CIDv1 (raw, sha2-256) of the event's canonical JSON form.
// The CID field itself is excluded from the encoding.
func EventCID(event AuditEvent) (string, error) {
	payload, err := canonicalEventBytes(event)
	if err != nil {
		return "", err
	}
	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return "", AuditChainBrokenError("core: hash audit event: %v", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

func canonicalEventBytes(event AuditEvent) ([]byte, error) {
	event.CID = ""
	event.CreatedAt = event.CreatedAt.UTC().Truncate(EventTimePrecision)
	if len(event.Metadata) == 0 {
		event.Metadata = nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, AuditChainBrokenError("core: encode audit event: %v", err)
	}
	return payload, nil
}

// SealEvent links event to prevCID and stamps its content identifier.
func SealEvent(prevCID string, event AuditEvent) (AuditEvent, error) {
	event.PrevCID = prevCID
	event.CreatedAt = event.CreatedAt.UTC().Truncate(EventTimePrecision)
	id, err := EventCID(event)
	if err != nil {
		return AuditEvent{}, err
	}
	event.CID = id
	return event, nil
}

// VerifyChain recomputes every identifier and link of a record's events in
// sequence order and checks that the last one matches head.
func VerifyChain(configID string, events []AuditEvent, head string) (ChainReport, error) {
	report := ChainReport{ConfigID: configID, Events: len(events)}
	prev := ""
	for index, event := range events {
		expectedSeq := uint64(index + 1)
		if event.Sequence != expectedSeq {
			return report, AuditChainBrokenError("core: audit event %d of %q has sequence %d", expectedSeq, configID, event.Sequence)
		}
		if event.ConfigID != configID {
			return report, AuditChainBrokenError("core: audit event %d belongs to %q, not %q", expectedSeq, event.ConfigID, configID)
		}
		if event.PrevCID != prev {
			return report, AuditChainBrokenError("core: audit event %d of %q does not link to its predecessor", expectedSeq, configID)
		}
		recomputed, err := EventCID(event)
		if err != nil {
			return report, err
		}
		if recomputed != event.CID {
			return report, AuditChainBrokenError("core: audit event %d of %q was altered: %s != %s", expectedSeq, configID, recomputed, event.CID)
		}
		prev = event.CID
	}
	if head != "" && prev != head {
		return report, AuditChainBrokenError("core: audit head of %q is %s but chain ends at %s", configID, head, prev)
	}
	report.HeadCID = prev
	report.Valid = true
	return report, nil
}
