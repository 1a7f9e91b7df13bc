// Package votinglifecycle implements the proposal voting lifecycle engine
// inside the civic-governance context.
//
// The module owns the proposal state machine, time-boxed voting sessions with
// their options, the single-vote-per-user ledger, and tally/outcome
// resolution. Proposal creation and session opening are one atomic operation;
// session expiry is converged lazily on access with an optional sweeper
// worker. Business rules live in application/domain layers and infrastructure
// stays behind ports and adapters.
package votinglifecycle
