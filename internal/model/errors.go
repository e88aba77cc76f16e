package model

import "github.com/rotisserie/eris"

// Sentinel errors for the failure modes that abort a stage. Row-level
// cleaning failures are not errors — they are dropped and counted.
var (
	// ErrSchema indicates an artifact's columns do not match what a stage
	// expects. Fatal for the stage.
	ErrSchema = eris.New("schema mismatch")

	// ErrJoinIntegrity indicates the feature assembler produced a row set
	// diverging from the cleaned layer. Always a bug, never tolerated.
	ErrJoinIntegrity = eris.New("join integrity violation")
)
