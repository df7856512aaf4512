package service

import (
	"errors"
	"testing"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderEnv struct {
	users       *fakeUserRepo
	requests    *fakeRequestRepo
	orders      *fakeOrderRepo
	departments *fakeDepartmentRepo
	alerts      *fakeAlertRepo
	notifs      *fakeNotificationRepo
	svc         OrderService
}

func newOrderEnv() *orderEnv {
	env := &orderEnv{
		users:       &fakeUserRepo{},
		requests:    newFakeRequestRepo(),
		orders:      newFakeOrderRepo(),
		departments: newFakeDepartmentRepo(),
		alerts:      newFakeAlertRepo(),
		notifs:      &fakeNotificationRepo{},
	}
	notifier := NewNotificationService(env.notifs, env.users, &fakePusher{}, &fakeMailer{})
	monitor := NewBudgetMonitor(env.departments, env.orders, env.alerts, env.users, notifier)
	env.svc = NewOrderService(env.orders, env.requests, env.users, monitor, syncQueue{})
	return env
}

func TestCreateOrderAgainstApprovedRequest(t *testing.T) {
	env := newOrderEnv()
	dept := env.departments.add(&model.Department{Name: "Engineering", Budget: decimal.NewFromInt(10000)})
	requester := env.users.add(&model.User{Email: "alice@corp.test", Role: model.RoleMember, DepartmentID: &dept.ID})
	req := env.requests.add(&model.PurchaseRequest{RequesterID: requester.ID, Requester: requester, Status: model.StatusApproved})

	order, err := env.svc.CreateOrder(&CreateOrderInput{
		RequestID: req.ID,
		Amount:    decimal.NewFromInt(1200),
	}, requester.ID)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != model.OrderOpen {
		t.Fatalf("status = %s, want OPEN", order.Status)
	}
	if len(env.orders.orders) != 1 {
		t.Fatalf("persisted orders = %d, want 1", len(env.orders.orders))
	}
}

func TestCreateOrderRejectsUnapprovedRequest(t *testing.T) {
	env := newOrderEnv()
	requester := env.users.add(&model.User{Email: "alice@corp.test", Role: model.RoleMember})
	req := env.requests.add(&model.PurchaseRequest{RequesterID: requester.ID, Requester: requester, Status: model.StatusPending})

	_, err := env.svc.CreateOrder(&CreateOrderInput{RequestID: req.ID, Amount: decimal.NewFromInt(100)}, requester.ID)
	if !errors.Is(err, ErrRequestNotApproved) {
		t.Fatalf("expected ErrRequestNotApproved, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	env := newOrderEnv()

	_, err := env.svc.CreateOrder(&CreateOrderInput{RequestID: uuid.New(), Amount: decimal.Zero}, uuid.New())
	if !errors.Is(err, ErrInvalidOrderAmount) {
		t.Fatalf("expected ErrInvalidOrderAmount, got %v", err)
	}
}

func TestCreateOrderTriggersThresholdCheck(t *testing.T) {
	env := newOrderEnv()
	dept := env.departments.add(&model.Department{Name: "Engineering", Budget: decimal.NewFromInt(10000)})
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	requester := env.users.add(&model.User{Email: "alice@corp.test", Role: model.RoleMember, DepartmentID: &dept.ID})
	req := env.requests.add(&model.PurchaseRequest{RequesterID: requester.ID, Requester: requester, Status: model.StatusApproved})

	// Committed spend sits at 85% once the order lands.
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(8500)

	if _, err := env.svc.CreateOrder(&CreateOrderInput{RequestID: req.ID, Amount: decimal.NewFromInt(500)}, requester.ID); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if got := len(env.notifs.byType(model.NotifBudgetWarning)); got != 1 {
		t.Fatalf("budget warnings = %d, want 1 after the order", got)
	}
}
