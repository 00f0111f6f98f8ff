package domain

// CanAccess reports whether the user may see and use the room. It is pure and
// gates both the visible room list and whether incoming push/poll data for the
// room is applied to the user's local state.
func CanAccess(room Room, user User) bool {
	// Admins can access everything.
	if user.Role == RoleAdmin {
		return true
	}

	allowed := room.AllowedRoles
	if len(allowed) == 0 {
		allowed = AllRoles()
	}
	roleAllowed := false
	for _, role := range allowed {
		if role == user.Role {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return false
	}

	level := room.AccessLevel
	if level == "" {
		level = AccessPublic
	}
	switch level {
	case AccessPublic:
		return true
	case AccessMembersOnly:
		return room.HasMember(user.ID)
	case AccessStaffOnly:
		return user.Role == RoleStaff || user.Role == RoleManager
	case AccessAdminOnly:
		return room.IsRoomAdmin(user.ID)
	default:
		return room.HasMember(user.ID)
	}
}
