// Package dispatch turns a parsed registry into a dispatch Target: the set of
// functions the generated library exports, each alias group collapsed onto one
// canonical root, and every distinct way of obtaining a function pointer
// (a Provider) numbered once.
//
// Build runs the phases in a fixed order:
//
//  1. functions are created from registry commands;
//  2. providers are synthesized from feature and extension blocks using the
//     per-family rules in synth.go;
//  3. the exclusion predicate drops functions the target platform cannot
//     declare;
//  4. alias chains are compressed so every alias points at a root;
//  5. bootstrap overrides replace the providers of the functions the runtime
//     resolver itself calls;
//  6. providers are enumerated in first-encounter order over functions sorted
//     by name.
//
// Every inconsistency is fatal and reported as a *diag.Error. A Target that
// Build returns is read-only from then on.
package dispatch
