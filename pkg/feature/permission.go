package feature

// Permission names a capability checked by the admin views.
type Permission string

const (
	CreateFeature  Permission = "CREATE_FEATURE"
	UpdateFeature  Permission = "UPDATE_FEATURE"
	DeleteFeature  Permission = "DELETE_FEATURE"
	CreateStrategy Permission = "CREATE_STRATEGY"
	DeleteStrategy Permission = "DELETE_STRATEGY"
)

// Permissions lists every known permission key.
func Permissions() []Permission {
	return []Permission{CreateFeature, UpdateFeature, DeleteFeature, CreateStrategy, DeleteStrategy}
}

// PermissionChecker answers synchronous capability checks.
type PermissionChecker interface {
	HasPermission(Permission) bool
}

// PermissionFunc adapts a function into a PermissionChecker.
type PermissionFunc func(Permission) bool

// HasPermission calls the underlying function.
func (fn PermissionFunc) HasPermission(p Permission) bool {
	if fn == nil {
		return false
	}
	return fn(p)
}

// PermissionSet grants every permission it contains.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given keys.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// HasPermission reports membership.
func (s PermissionSet) HasPermission(p Permission) bool {
	_, ok := s[p]
	return ok
}
