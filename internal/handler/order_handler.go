package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"orderdesk/internal/service"
	"orderdesk/models"
	"orderdesk/pkg/logger"
)

// OrderHandler serves the /order endpoints.
type OrderHandler struct {
	orders service.OrderServiceInterface
	users  service.UserServiceInterface
	policy *service.AccessPolicy
	logger *logger.Logger
}

func NewOrderHandler(orders service.OrderServiceInterface, users service.UserServiceInterface, policy *service.AccessPolicy, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		users:  users,
		policy: policy,
		logger: log.WithComponent("order_handler"),
	}
}

// List handles GET /order/list: the staff view of every order, bucketed.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.orders.StaffBuckets(r.Context(), CurrentUser(r))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, buckets)
}

// My handles GET /order/my: the caller's assigned and done orders.
func (h *OrderHandler) My(w http.ResponseWriter, r *http.Request) {
	my, err := h.orders.MyOrders(r.Context(), CurrentUser(r))
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, my)
}

// Details handles GET /order/details/{id}.
func (h *OrderHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), CurrentUser(r), id)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, order)
}

// CreateForm handles GET /order/create: the data the create form needs.
func (h *OrderHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	if err := h.policy.Authorize(actor, service.ActionCreateOrder, nil); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.formMeta(r, actor))
}

// Create handles POST /order/create.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := parseOrderForm(r)
	if err != nil {
		h.logger.Warn("Invalid order form", "error", err)
		handleServiceError(w, r, err, h.logger)
		return
	}

	if _, err := h.orders.Create(r.Context(), CurrentUser(r), fields); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, string(service.RedirectStaffList), http.StatusSeeOther)
}

// EditForm handles GET /order/edit/{id}: the order plus form metadata.
func (h *OrderHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	actor := CurrentUser(r)
	order, err := h.orders.Get(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	if err := h.policy.Authorize(actor, service.ActionEditOrder, order); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}

	meta := h.formMeta(r, actor)
	meta["order"] = order
	writeJSONResponse(w, http.StatusOK, meta)
}

// Edit handles POST /order/edit/{id}.
func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	fields, err := parseOrderForm(r)
	if err != nil {
		h.logger.Warn("Invalid order form", "error", err, "order_id", id)
		handleServiceError(w, r, err, h.logger)
		return
	}

	if _, err := h.orders.Edit(r.Context(), CurrentUser(r), id, fields); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, string(service.RedirectStaffList), http.StatusSeeOther)
}

// Complete handles GET /order/complete/{id}. Staff land back on the staff
// list, employees on their own list.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.toggleStatus(w, r, h.orders.Complete)
}

// Cancel handles GET /order/cancel/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.toggleStatus(w, r, h.orders.Cancel)
}

func (h *OrderHandler) toggleStatus(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, actor *models.User, id int64) (service.Redirect, error)) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	redirect, err := toggle(r.Context(), CurrentUser(r), id)
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, string(redirect), http.StatusSeeOther)
}

// Assign handles POST /order/assign/{id}: a quick reassignment without going
// through the full edit form. An empty employee field unassigns.
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var employeeID *int64
	if raw := r.PostFormValue("employee"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			handleServiceError(w, r, models.ValidationErrors{"employee": "select a valid employee"}, h.logger)
			return
		}
		employeeID = &parsed
	}

	if _, err := h.orders.Assign(r.Context(), CurrentUser(r), id, employeeID); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, string(service.RedirectStaffList), http.StatusSeeOther)
}

// Delete handles GET /order/delete/{id}, then returns to the staff list.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), CurrentUser(r), id); err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, string(service.RedirectStaffList), http.StatusSeeOther)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Order not found")
		return 0, false
	}
	return id, true
}

// formMeta is the shared create/edit form payload. The employee picker is
// staff-only; for an assigned employee editing their order it is omitted.
func (h *OrderHandler) formMeta(r *http.Request, actor *models.User) map[string]interface{} {
	meta := map[string]interface{}{
		"payment_methods": models.PaymentMethods(),
	}
	if employees, err := h.users.Employees(r.Context(), actor); err == nil {
		meta["employees"] = employees
	}
	return meta
}

const (
	deliveryDateLayout     = "2006-01-02T15:04"
	deliveryDateOnlyLayout = "2006-01-02"
)

// parseOrderForm reads the urlencoded order form. Parse problems come back
// as field-level validation errors, same shape as the model's own.
func parseOrderForm(r *http.Request) (service.OrderFields, error) {
	if err := r.ParseForm(); err != nil {
		return service.OrderFields{}, models.ValidationErrors{models.NonFieldError: "malformed form data"}
	}

	errs := models.ValidationErrors{}
	fields := service.OrderFields{
		Name:          strings.TrimSpace(r.PostFormValue("name")),
		Client:        strings.TrimSpace(r.PostFormValue("client")),
		ContactNumber: strings.TrimSpace(r.PostFormValue("contact_number")),
		Address:       strings.TrimSpace(r.PostFormValue("address")),
		PaymentMethod: models.PaymentMethod(r.PostFormValue("payment_method")),
	}

	if description := r.PostFormValue("description"); description != "" {
		fields.Description = &description
	}

	if raw := strings.TrimSpace(r.PostFormValue("price")); raw == "" {
		errs.Add("price", "this field is required")
	} else if price, err := decimal.NewFromString(raw); err != nil {
		errs.Add("price", "enter a valid number")
	} else {
		fields.Price = price
	}

	if raw := r.PostFormValue("employee"); raw != "" {
		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("employee", "select a valid employee")
		} else {
			fields.EmployeeID = &employeeID
		}
	}

	if raw := r.PostFormValue("delivery_date"); raw != "" {
		parsed, err := time.ParseInLocation(deliveryDateLayout, raw, time.Local)
		if err != nil {
			parsed, err = time.ParseInLocation(deliveryDateOnlyLayout, raw, time.Local)
		}
		if err != nil {
			errs.Add("delivery_date", "enter a valid date and time")
		} else {
			fields.DeliveryDate = &parsed
		}
	}

	if len(errs) > 0 {
		return fields, errs
	}
	return fields, nil
}
