// Package core holds the issuance domain: the record and audit event types,
// reserve ratio arithmetic, the dual authority guard, the proof of reserve
// gate, the lifecycle state machine and the Service that orchestrates them.
// Storage, ledger and transport adapters depend on this package, never the
// other way around.
package core
