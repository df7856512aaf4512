package service

import (
	"errors"
	"testing"
	"time"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type monitorEnv struct {
	users       *fakeUserRepo
	departments *fakeDepartmentRepo
	orders      *fakeOrderRepo
	alerts      *fakeAlertRepo
	notifs      *fakeNotificationRepo
	mail        *fakeMailer
	monitor     *budgetMonitor
	clock       time.Time
}

func newMonitorEnv() *monitorEnv {
	env := &monitorEnv{
		users:       &fakeUserRepo{},
		departments: newFakeDepartmentRepo(),
		orders:      newFakeOrderRepo(),
		alerts:      newFakeAlertRepo(),
		notifs:      &fakeNotificationRepo{},
		mail:        &fakeMailer{},
		clock:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	notifier := NewNotificationService(env.notifs, env.users, &fakePusher{}, env.mail)
	env.monitor = NewBudgetMonitor(env.departments, env.orders, env.alerts, env.users, notifier).(*budgetMonitor)
	env.monitor.now = func() time.Time { return env.clock }
	return env
}

func (env *monitorEnv) seedDepartment(budget int64) *model.Department {
	return env.departments.add(&model.Department{Name: "Engineering", Budget: decimal.NewFromInt(budget)})
}

func TestThresholdWarningFiresOnce(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	admin := env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	senior := env.users.add(&model.User{Email: "senior@corp.test", Role: model.RoleSeniorManager, DepartmentID: &dept.ID})
	otherDeptID := uuid.New()
	otherSenior := env.users.add(&model.User{Email: "other@corp.test", Role: model.RoleSeniorManager, DepartmentID: &otherDeptID})

	// 8,500 committed against a 10,000 budget: 85%, warning tier.
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(8500)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}

	warnings := env.notifs.byType(model.NotifBudgetWarning)
	recipients := map[uuid.UUID]bool{}
	for _, n := range warnings {
		recipients[n.UserID] = true
		if n.Metadata["department_id"] != dept.ID.String() {
			t.Fatalf("metadata department_id = %v", n.Metadata["department_id"])
		}
		if n.Metadata["percentage"] != "85" {
			t.Fatalf("metadata percentage = %v, want 85", n.Metadata["percentage"])
		}
	}
	if !recipients[admin.ID] || !recipients[senior.ID] {
		t.Fatalf("warning should reach admin and department senior, got %v", recipients)
	}
	if recipients[otherSenior.ID] {
		t.Fatal("senior of another department should not be alerted")
	}
	if got := env.mail.sentTo(admin.Email); got != 1 {
		t.Fatalf("emails to admin = %d, want 1", got)
	}

	// A second qualifying event inside the window stays silent.
	env.clock = env.clock.Add(2 * time.Hour)
	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if got := len(env.notifs.byType(model.NotifBudgetWarning)); got != len(warnings) {
		t.Fatalf("duplicate warning inside the 24h window: %d vs %d", got, len(warnings))
	}
}

func TestThresholdRefiresAfterWindow(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(8500)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("first check: %v", err)
	}
	env.clock = env.clock.Add(25 * time.Hour)
	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("second check: %v", err)
	}

	if got := len(env.notifs.byType(model.NotifBudgetWarning)); got != 2 {
		t.Fatalf("warnings = %d, want 2 across separate windows", got)
	}
}

func TestThresholdSingleHighestTierFires(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})

	// 95% crosses both warning and critical; only critical fires.
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(9500)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}
	if got := len(env.notifs.byType(model.NotifBudgetCritical)); got != 1 {
		t.Fatalf("critical alerts = %d, want 1", got)
	}
	if got := len(env.notifs.byType(model.NotifBudgetWarning)); got != 0 {
		t.Fatalf("warning alerts = %d, want 0 when critical fires", got)
	}
}

func TestThresholdExceededAtFullSpend(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(10000)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}
	if got := len(env.notifs.byType(model.NotifBudgetExceeded)); got != 1 {
		t.Fatalf("exceeded alerts = %d, want 1", got)
	}
}

func TestThresholdBelowWarningStaysSilent(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(7999)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}
	if got := len(env.notifs.notifications); got != 0 {
		t.Fatalf("notifications = %d, want 0 below the warning line", got)
	}
}

func TestThresholdZeroBudgetDisablesMonitoring(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(0)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(5000)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}
	if got := len(env.notifs.notifications); got != 0 {
		t.Fatalf("zero-budget department alerted %d times", got)
	}
}

func TestThresholdUsesLargerOfTwoSums(t *testing.T) {
	env := newMonitorEnv()
	dept := env.seedDepartment(10000)
	env.users.add(&model.User{Email: "admin@corp.test", Role: model.RoleSystemAdmin})

	// Department attribution sees only 3,000 but the legacy free-text
	// category carries 8,500; the larger sum drives the check.
	env.orders.byDepartment[dept.ID] = decimal.NewFromInt(3000)
	env.orders.byCategory[dept.Name] = decimal.NewFromInt(8500)

	if err := env.monitor.CheckDepartmentThreshold(dept.ID); err != nil {
		t.Fatalf("CheckDepartmentThreshold: %v", err)
	}
	if got := len(env.notifs.byType(model.NotifBudgetWarning)); got != 1 {
		t.Fatalf("warnings = %d, want 1 from the category sum", got)
	}
}

func TestThresholdUnknownDepartment(t *testing.T) {
	env := newMonitorEnv()
	err := env.monitor.CheckDepartmentThreshold(uuid.New())
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}
