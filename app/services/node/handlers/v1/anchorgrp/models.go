package anchorgrp

import "github.com/medchain/medchain/foundation/ledger/state"

// AnchorRequest is the payload callers submit for anchoring. The type names
// the kind of event being anchored (medical_record_hash, consent,
// tampering_detection); everything in the payload is opaque to the ledger.
type AnchorRequest struct {
	Type    string         `json:"type" validate:"required"`
	Payload map[string]any `json:"payload"`
}

// ValidateResponse reports the chain validation outcome with one structured
// reason per failing block.
type ValidateResponse struct {
	IsValid bool          `json:"is_valid"`
	Faults  []state.Fault `json:"faults,omitempty"`
}
