package auth

import "postboard/internal/models"

// Action is something a caller may try to do with posts.
type Action string

const (
	ActionViewApproved   Action = "view_approved"
	ActionSubmit         Action = "submit"
	ActionViewModeration Action = "view_moderation"
	ActionDecide         Action = "decide"
)

var capabilityTable = map[models.Role]map[Action]bool{
	models.RoleAnonymous: {ActionViewApproved: true},
	models.RoleStudent:   {ActionViewApproved: true, ActionSubmit: true},
	models.RoleAdmin:     {ActionViewApproved: true, ActionViewModeration: true, ActionDecide: true},
}

// Can reports whether role may perform action. Unknown roles may do nothing.
func Can(role models.Role, action Action) bool {
	return capabilityTable[role][action]
}

// RoleOf returns the identity's role, or RoleAnonymous for nil.
func RoleOf(identity *models.Identity) models.Role {
	if identity == nil {
		return models.RoleAnonymous
	}
	return identity.Role
}

// Capabilities lists the actions granted to role in a stable order.
func Capabilities(role models.Role) []Action {
	var out []Action
	for _, a := range []Action{ActionViewApproved, ActionSubmit, ActionViewModeration, ActionDecide} {
		if Can(role, a) {
			out = append(out, a)
		}
	}
	return out
}
