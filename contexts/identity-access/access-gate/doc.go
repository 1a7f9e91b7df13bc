// Package accessgate implements the identity and capability model inside the
// identity-access context.
//
// The module resolves a caller's trust level into explicit capability
// predicates and applies workspace visibility rules against them. It is the
// single gate other modules consult before any participating or mutating
// operation; capability logic lives in domain/services so it stays testable
// in isolation.
package accessgate
