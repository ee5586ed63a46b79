package service

import "github.com/technest/technest-api/internal/domain"

// Policy holds the authorization switches of the event rules.
type Policy struct {
	// AnyAuthenticatedUserMayOrganize lets every signed-in user create events.
	// When false only ORGANIZER and ADMIN accounts may.
	AnyAuthenticatedUserMayOrganize bool
}

func DefaultPolicy() Policy {
	return Policy{AnyAuthenticatedUserMayOrganize: true}
}

func (p Policy) MayOrganize(identity *domain.Identity) bool {
	if identity == nil {
		return false
	}
	if p.AnyAuthenticatedUserMayOrganize {
		return true
	}
	return identity.Role == domain.RoleOrganizer || identity.Role == domain.RoleAdmin
}

// MayManage reports whether identity may change or remove event.
func (p Policy) MayManage(identity *domain.Identity, event domain.Event) bool {
	return canManage(identity, event)
}

// MayView reports whether identity may see event. Unpublished events exist
// only for the people who manage them.
func (p Policy) MayView(identity *domain.Identity, event domain.Event) bool {
	return canView(identity, event)
}

func canView(identity *domain.Identity, event domain.Event) bool {
	return event.Published || canManage(identity, event)
}

func canManage(identity *domain.Identity, event domain.Event) bool {
	return identity != nil && (event.IsOrganizedBy(identity.UserID) || identity.IsAdmin())
}
