package services

import (
	"sort"
	"strings"

	"agora/contexts/civic-governance/voting-lifecycle/domain/entities"
)

// OptionTally is the per-option result of a count.
type OptionTally struct {
	Option entities.VotingOption
	Count  int
}

// Outcome is the terminal verdict of a session for simple-method ballots.
type Outcome struct {
	Tallies        []OptionTally
	TotalVotes     int
	QuorumRequired int
	QuorumMet      bool
	Winner         *entities.VotingOption
	Approved       bool
}

// TallyVotes counts votes per option in option order. Every option appears in
// the result, including zero-count ones. Votes referencing an unknown option
// are ignored rather than failing the whole count.
func TallyVotes(options []entities.VotingOption, votes []entities.Vote) []OptionTally {
	byID := make(map[string]int, len(options))
	tallies := make([]OptionTally, len(options))
	for i, opt := range options {
		tallies[i] = OptionTally{Option: opt}
		byID[opt.OptionID] = i
	}
	for _, v := range votes {
		if i, ok := byID[v.OptionID]; ok {
			tallies[i].Count++
		}
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].Option.Order < tallies[j].Option.Order
	})
	return tallies
}

// ResolveWinner picks the highest-count non-abstain option. Ties resolve to
// the lowest display order. A ballot with no countable votes has no winner.
func ResolveWinner(tallies []OptionTally) *entities.VotingOption {
	var winner *entities.VotingOption
	best := 0
	for i := range tallies {
		t := tallies[i]
		if strings.EqualFold(t.Option.Value, entities.OptionValueAbstain) {
			continue
		}
		if t.Count == 0 {
			continue
		}
		if winner == nil || t.Count > best || (t.Count == best && t.Option.Order < winner.Order) {
			opt := t.Option
			winner = &opt
			best = t.Count
		}
	}
	return winner
}

// QuorumMet reports whether total participation reaches the required floor.
// A non-positive requirement means no quorum applies.
func QuorumMet(quorumRequired, totalVotes int) bool {
	if quorumRequired <= 0 {
		return true
	}
	return totalVotes >= quorumRequired
}

// ResolveOutcome computes the full verdict for a simple-method session.
// Approved means quorum was met and the winning option is "yes". Abstentions
// count toward quorum but never toward a winner.
func ResolveOutcome(session entities.VotingSession, options []entities.VotingOption, votes []entities.Vote) Outcome {
	tallies := TallyVotes(options, votes)
	total := len(votes)
	winner := ResolveWinner(tallies)
	quorum := QuorumMet(session.QuorumRequired, total)
	approved := quorum && winner != nil && strings.EqualFold(winner.Value, entities.OptionValueYes)
	return Outcome{
		Tallies:        tallies,
		TotalVotes:     total,
		QuorumRequired: session.QuorumRequired,
		QuorumMet:      quorum,
		Winner:         winner,
		Approved:       approved,
	}
}

// FindOption matches a caller-supplied choice against the session's options,
// by option id first and then case-insensitively by value.
func FindOption(options []entities.VotingOption, choice string) (entities.VotingOption, bool) {
	for _, opt := range options {
		if opt.OptionID == choice {
			return opt, true
		}
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Value, choice) {
			return opt, true
		}
	}
	return entities.VotingOption{}, false
}
