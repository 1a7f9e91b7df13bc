package errors

import "errors"

var (
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrSessionNotFound      = errors.New("voting session not found")
	ErrInvalidProposalInput = errors.New("invalid proposal input")
	ErrProposalNotInVoting  = errors.New("proposal is not in voting")
	ErrProposalTerminal     = errors.New("proposal is in a terminal state")
	ErrNoOpenSession        = errors.New("no open voting session for proposal")
	ErrVotingNotStarted     = errors.New("voting session has not started")
	ErrVotingExpired        = errors.New("voting session has expired")
	ErrAlreadyVoted         = errors.New("user already voted in this session")
	ErrInvalidOption        = errors.New("option does not belong to session")
	ErrSessionNotActive     = errors.New("voting session is not active")
	ErrConflict             = errors.New("conflict")
)
