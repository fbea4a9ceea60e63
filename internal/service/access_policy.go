package service

import "orderdesk/models"

// Action is an operation gated by the access policy.
type Action int

const (
	ActionViewStaffLists Action = iota
	ActionViewMyLists
	ActionViewOrder
	ActionCreateOrder
	ActionEditOrder
	ActionAssignOrder
	ActionCompleteOrder
	ActionCancelOrder
	ActionDeleteOrder
	ActionExportReport
	ActionViewUserList
)

// AccessPolicy decides what a role may do. It is a pure table: no request
// context, no storage access.
type AccessPolicy struct{}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// employeeRules lists what a regular employee may do. Absent actions are
// staff-only. The order argument is nil for actions that do not target a
// single order.
var employeeRules = map[Action]func(actor *models.User, order *models.Order) bool{
	ActionViewMyLists:   allowAlways,
	ActionViewOrder:     allowAlways,
	ActionEditOrder:     allowAssignee,
	ActionCompleteOrder: allowAssignee,
	ActionCancelOrder:   allowAssignee,
}

// Authorize returns nil when actor may perform action on order.
// Staff/superusers may do everything; anonymous actors nothing.
func (p *AccessPolicy) Authorize(actor *models.User, action Action, order *models.Order) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.Elevated() {
		return nil
	}

	rule, ok := employeeRules[action]
	if !ok || !rule(actor, order) {
		return ErrForbidden
	}
	return nil
}

func allowAlways(*models.User, *models.Order) bool {
	return true
}

func allowAssignee(actor *models.User, order *models.Order) bool {
	return order != nil && order.AssignedTo(actor.ID)
}
