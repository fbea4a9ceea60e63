package models

import (
	"time"

	"github.com/shopspring/decimal"

	"orderdesk/pkg/phone"
)

// PaymentMethod is how the client pays for an order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentPrepaid        PaymentMethod = "prepaid"
)

// PaymentMethods lists the accepted payment methods, used by the create/edit forms.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCashOnDelivery, PaymentPrepaid}
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentPrepaid:
		return true
	}
	return false
}

// Order is one unit of delivery work. Status false means open/in-progress,
// true means done. EmployeeID is nil while the order is unassigned.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Client        string          `json:"client" db:"client"`
	ContactNumber string          `json:"contact_number" db:"contact_number"`
	Address       string          `json:"address" db:"address"`
	Description   *string         `json:"description,omitempty" db:"description"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Status        bool            `json:"status" db:"status"`
	EmployeeID    *int64          `json:"employee_id,omitempty" db:"employee_id"`
	CreationTime  time.Time       `json:"creation_time" db:"creation_time"`
	DeliveryDate  *time.Time      `json:"delivery_date,omitempty" db:"delivery_date"`

	// Employee is populated by queries that join the users table.
	Employee *User `json:"employee,omitempty" db:"-"`
}

const (
	maxOrderNameLen   = 100
	maxClientLen      = 150
	maxAddressLen     = 120
	maxDescriptionLen = 10000
)

// Validate checks every field constraint. It never mutates the order; phone
// normalization happens at save time, after validation passes.
func (o *Order) Validate() error {
	errs := ValidationErrors{}

	if o.Name == "" {
		errs.Add("name", "this field is required")
	} else if len(o.Name) > maxOrderNameLen {
		errs.Add("name", "must be at most 100 characters")
	}

	if o.Client == "" {
		errs.Add("client", "this field is required")
	} else if len(o.Client) > maxClientLen {
		errs.Add("client", "must be at most 150 characters")
	}

	if o.Address == "" {
		errs.Add("address", "this field is required")
	} else if len(o.Address) > maxAddressLen {
		errs.Add("address", "must be at most 120 characters")
	}

	if o.Description != nil && len(*o.Description) > maxDescriptionLen {
		errs.Add("description", "must be at most 10000 characters")
	}

	if o.ContactNumber == "" {
		errs.Add("contact_number", "this field is required")
	} else if _, err := phone.Validate(o.ContactNumber); err != nil {
		errs.Add("contact_number", "invalid phone number format")
	}

	if !o.PaymentMethod.Valid() {
		errs.Add("payment_method", "select a valid payment method")
	}

	if o.Price.IsNegative() {
		errs.Add("price", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Assigned reports whether the order has an employee.
func (o *Order) Assigned() bool {
	return o.EmployeeID != nil
}

// AssignedTo reports whether the order is assigned to the given user.
func (o *Order) AssignedTo(userID int64) bool {
	return o.EmployeeID != nil && *o.EmployeeID == userID
}
