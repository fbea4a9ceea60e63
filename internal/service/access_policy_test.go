package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orderdesk/models"
)

func TestAccessPolicy_AnonymousIsUnauthenticated(t *testing.T) {
	policy := NewAccessPolicy()

	actions := []Action{
		ActionViewStaffLists, ActionViewMyLists, ActionViewOrder,
		ActionCreateOrder, ActionEditOrder, ActionAssignOrder,
		ActionCompleteOrder, ActionCancelOrder, ActionDeleteOrder,
		ActionExportReport, ActionViewUserList,
	}

	for _, action := range actions {
		assert.ErrorIs(t, policy.Authorize(nil, action, nil), ErrUnauthenticated)
	}
}

func TestAccessPolicy_StaffMayDoEverything(t *testing.T) {
	policy := NewAccessPolicy()
	staff := staffUser()

	actions := []Action{
		ActionViewStaffLists, ActionViewMyLists, ActionViewOrder,
		ActionCreateOrder, ActionEditOrder, ActionAssignOrder,
		ActionCompleteOrder, ActionCancelOrder, ActionDeleteOrder,
		ActionExportReport, ActionViewUserList,
	}

	for _, action := range actions {
		assert.NoError(t, policy.Authorize(staff, action, nil))
	}
}

func TestAccessPolicy_SuperuserCountsAsStaff(t *testing.T) {
	policy := NewAccessPolicy()
	super := &models.User{ID: 1, IsSuperuser: true}

	assert.NoError(t, policy.Authorize(super, ActionDeleteOrder, nil))
	assert.NoError(t, policy.Authorize(super, ActionExportReport, nil))
}

func TestAccessPolicy_EmployeeRules(t *testing.T) {
	policy := NewAccessPolicy()
	employee := employeeUser(7)

	mine := &models.Order{ID: 1, EmployeeID: &employee.ID}
	otherID := int64(8)
	foreign := &models.Order{ID: 2, EmployeeID: &otherID}
	unassigned := &models.Order{ID: 3}

	tests := []struct {
		name    string
		action  Action
		order   *models.Order
		allowed bool
	}{
		{"view my lists", ActionViewMyLists, nil, true},
		{"view any order", ActionViewOrder, nil, true},
		{"edit own order", ActionEditOrder, mine, true},
		{"edit foreign order", ActionEditOrder, foreign, false},
		{"edit unassigned order", ActionEditOrder, unassigned, false},
		{"complete own order", ActionCompleteOrder, mine, true},
		{"complete foreign order", ActionCompleteOrder, foreign, false},
		{"cancel own order", ActionCancelOrder, mine, true},
		{"cancel foreign order", ActionCancelOrder, foreign, false},
		{"staff lists", ActionViewStaffLists, nil, false},
		{"create order", ActionCreateOrder, nil, false},
		{"assign order", ActionAssignOrder, mine, false},
		{"delete own order", ActionDeleteOrder, mine, false},
		{"export report", ActionExportReport, nil, false},
		{"user list", ActionViewUserList, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(employee, tt.action, tt.order)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}
