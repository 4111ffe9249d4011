package utils

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// HasCapability checks whether a member holding the given roles was granted
// the capability through any of the configured role grants.
func HasCapability(memberRoleIDs, grantedRoleIDs []string) bool {
	for _, roleID := range memberRoleIDs {
		if contains(grantedRoleIDs, roleID) {
			return true
		}
	}
	return false
}
