package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrDepartmentNotFound = errors.New("department not found")

// alertWindow is the rolling window inside which a tier fires at most once
// per department.
const alertWindow = 24 * time.Hour

// tierThreshold pairs a tier with the spend/budget ratio that crosses it.
// Ordered highest-first; only the first crossed tier fires per check.
type tierThreshold struct {
	tier  model.ThresholdTier
	ratio decimal.Decimal
}

var tierThresholds = []tierThreshold{
	{model.TierExceeded, decimal.NewFromFloat(1.0)},
	{model.TierCritical, decimal.NewFromFloat(0.9)},
	{model.TierWarning, decimal.NewFromFloat(0.8)},
}

// BudgetMonitor recomputes a department's spend-to-budget ratio after
// qualifying events and alerts admins and department senior managers when a
// threshold tier is newly crossed.
type BudgetMonitor interface {
	CheckDepartmentThreshold(departmentID uuid.UUID) error
}

type budgetMonitor struct {
	departmentRepo repository.DepartmentRepository
	orderRepo      repository.OrderRepository
	alertRepo      repository.BudgetAlertRepository
	userRepo       repository.UserRepository
	notifier       NotificationService
	now            func() time.Time
}

func NewBudgetMonitor(
	departmentRepo repository.DepartmentRepository,
	orderRepo repository.OrderRepository,
	alertRepo repository.BudgetAlertRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
) BudgetMonitor {
	return &budgetMonitor{
		departmentRepo: departmentRepo,
		orderRepo:      orderRepo,
		alertRepo:      alertRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (m *budgetMonitor) CheckDepartmentThreshold(departmentID uuid.UUID) error {
	dept, err := m.departmentRepo.FindByID(departmentID)
	if err != nil {
		return ErrDepartmentNotFound
	}

	// Zero budget disables monitoring.
	if dept.Budget.IsZero() {
		return nil
	}

	spend, err := m.currentSpend(dept)
	if err != nil {
		return err
	}

	ratio := spend.Div(dept.Budget)
	tier, crossed := classify(ratio)
	if !crossed {
		return nil
	}

	// One alert per (department, tier) per rolling window.
	last, err := m.alertRepo.LastAlertedAt(dept.ID, tier)
	if err != nil {
		return err
	}
	now := m.now()
	if last != nil && now.Sub(*last) < alertWindow {
		return nil
	}

	m.alert(dept, tier, spend, ratio)

	return m.alertRepo.Touch(dept.ID, tier, now)
}

// currentSpend takes the larger of two independently-computed sums: orders
// attributed via the requester's department, and orders attributed via the
// legacy free-text budget category. The maximum avoids double counting when
// both signals agree but tolerates either being the authoritative one.
func (m *budgetMonitor) currentSpend(dept *model.Department) (decimal.Decimal, error) {
	byDepartment, err := m.orderRepo.SumByRequesterDepartment(dept.ID)
	if err != nil {
		return decimal.Zero, err
	}
	byCategory, err := m.orderRepo.SumByBudgetCategory(dept.Name)
	if err != nil {
		return decimal.Zero, err
	}
	if byCategory.GreaterThan(byDepartment) {
		return byCategory, nil
	}
	return byDepartment, nil
}

func classify(ratio decimal.Decimal) (model.ThresholdTier, bool) {
	for _, t := range tierThresholds {
		if ratio.GreaterThanOrEqual(t.ratio) {
			return t.tier, true
		}
	}
	return "", false
}

func (m *budgetMonitor) alert(dept *model.Department, tier model.ThresholdTier, spend, ratio decimal.Decimal) {
	percentage := ratio.Mul(decimal.NewFromInt(100)).Round(1)

	event := Event{
		Type:    tier.NotificationType(),
		Title:   tierTitle(tier, dept.Name),
		Message: fmt.Sprintf("%s has committed %s of its %s budget (%s%%)", dept.Name, spend.StringFixed(2), dept.Budget.StringFixed(2), percentage.String()),
		Metadata: model.Metadata{
			"department_id":   dept.ID.String(),
			"department_name": dept.Name,
			"current_spend":   spend.String(),
			"budget_limit":    dept.Budget.String(),
			"percentage":      percentage.String(),
		},
		Email: true,
	}

	for _, recipient := range m.alertRecipients(dept.ID) {
		perUser := event
		perUser.EmailTo = recipient.Email
		if err := m.notifier.Notify(recipient.ID, perUser); err != nil {
			log.Printf("budget: notify %s: %v", recipient.ID, err)
		}
	}
}

// alertRecipients is every system admin plus every senior manager of the
// department, deduplicated by user id.
func (m *budgetMonitor) alertRecipients(departmentID uuid.UUID) []model.User {
	seen := map[uuid.UUID]bool{}
	var recipients []model.User

	admins, err := m.userRepo.FindByRole(model.RoleSystemAdmin)
	if err != nil {
		log.Printf("budget: system admins: %v", err)
	}
	for _, u := range admins {
		if !seen[u.ID] {
			seen[u.ID] = true
			recipients = append(recipients, u)
		}
	}

	seniors, err := m.userRepo.FindByRole(model.RoleSeniorManager)
	if err != nil {
		log.Printf("budget: senior managers: %v", err)
	}
	for _, u := range seniors {
		if u.DepartmentID == nil || *u.DepartmentID != departmentID {
			continue
		}
		if !seen[u.ID] {
			seen[u.ID] = true
			recipients = append(recipients, u)
		}
	}

	return recipients
}

func tierTitle(tier model.ThresholdTier, deptName string) string {
	switch tier {
	case model.TierExceeded:
		return fmt.Sprintf("Budget exceeded: %s", deptName)
	case model.TierCritical:
		return fmt.Sprintf("Budget critical: %s", deptName)
	default:
		return fmt.Sprintf("Budget warning: %s", deptName)
	}
}
