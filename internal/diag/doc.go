// Package diag defines the error model shared by every generator phase.
//
// Every condition that makes generation impossible is reported as an *Error
// carrying a stable Code. There is no warning tier: a registry that cannot be
// turned into consistent dispatch code halts the run, so callers only ever
// see the first failure.
//
// Codes are grouped by the phase that detects them:
//
//   - REG: registry ingestion (malformed XML, missing names, unknown commands).
//   - ALS: alias resolution (dangling targets, cycles, transitive aliasing).
//   - PRV: provider synthesis and enumeration (unknown API family,
//     inconsistent redefinition of a provider label, token collisions).
//   - EMT: emission.
//   - CFG: configuration file problems.
//   - IO : reading inputs and writing outputs.
//
// Use errors.Is(err, diag.ProvRedefined) to test for a code; errors.As
// recovers the full *Error.
package diag
