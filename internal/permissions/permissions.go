// Package permissions holds the role/action table consulted on every
// privileged request.
package permissions

import "github.com/yukikurage/cse-council-api/internal/models"

type Action string

const (
	CreateMeeting     Action = "CREATE_MEETING"
	EditMeeting       Action = "EDIT_MEETING"
	DeleteMeeting     Action = "DELETE_MEETING"
	SendConvocation   Action = "SEND_CONVOCATION"
	SubmitFeedback    Action = "SUBMIT_FEEDBACK"
	EditOwnFeedback   Action = "EDIT_OWN_FEEDBACK"
	DeleteOwnFeedback Action = "DELETE_OWN_FEEDBACK"
	ViewAllFeedbacks  Action = "VIEW_ALL_FEEDBACKS"
	CreateMinute      Action = "CREATE_MINUTE"
	EditMinute        Action = "EDIT_MINUTE"
	PublishMinute     Action = "PUBLISH_MINUTE"
	SignMinute        Action = "SIGN_MINUTE"
	ViewMembers       Action = "VIEW_MEMBERS"
	AddMember         Action = "ADD_MEMBER"
	EditMember        Action = "EDIT_MEMBER"
	RemoveMember      Action = "REMOVE_MEMBER"
)

var (
	managers = []models.UserRole{models.UserRolePresident, models.UserRoleAdmin}
	everyone = []models.UserRole{models.UserRolePresident, models.UserRoleAdmin, models.UserRoleMember}
)

var table = map[Action][]models.UserRole{
	CreateMeeting:     managers,
	EditMeeting:       managers,
	DeleteMeeting:     managers,
	SendConvocation:   managers,
	SubmitFeedback:    everyone,
	EditOwnFeedback:   everyone,
	DeleteOwnFeedback: everyone,
	ViewAllFeedbacks:  managers,
	CreateMinute:      managers,
	EditMinute:        managers,
	PublishMinute:     managers,
	SignMinute:        everyone,
	ViewMembers:       everyone,
	AddMember:         managers,
	EditMember:        managers,
	RemoveMember:      managers,
}

// HasPermission reports whether role may perform action. Unknown actions
// and roles are denied.
func HasPermission(role models.UserRole, action Action) bool {
	for _, r := range table[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Actions returns every action in the table.
func Actions() []Action {
	actions := make([]Action, 0, len(table))
	for a := range table {
		actions = append(actions, a)
	}
	return actions
}

// IsManager reports whether role is ADMIN or PRESIDENT.
func IsManager(role models.UserRole) bool {
	return role.IsManager()
}
