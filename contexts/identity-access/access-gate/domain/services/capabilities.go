package services

import "agora/contexts/identity-access/access-gate/domain/entities"

// ResolveCapabilities derives the effective capability set for a caller.
// A nil user is an anonymous caller and resolves to the empty set. The
// function blends the ordinal level with the independent superuser and
// legacy verified overrides in one place so callers never repeat the rules.
func ResolveCapabilities(user *entities.User) entities.Capabilities {
	if user == nil {
		return entities.Capabilities{}
	}
	return entities.Capabilities{
		CanViewPrivate: user.IsAffiliate(),
		CanParticipate: user.IsRegistered(),
		// Voting deliberately ignores the legacy verified flag: only a real
		// affiliate-or-higher level or the superuser override grants a ballot.
		CanVote:     user.Level >= entities.LevelAffiliate || user.IsSuperuser,
		CanModerate: user.Level == entities.LevelSpecial || user.IsSuperuser,
	}
}

// CanViewWorkspace applies the visibility rule of a workspace against a
// caller's capabilities. Public workspaces are visible to everyone including
// anonymous callers.
func CanViewWorkspace(caps entities.Capabilities, workspace entities.Workspace) bool {
	if workspace.Visibility == entities.VisibilityPublic {
		return true
	}
	return caps.CanViewPrivate
}
