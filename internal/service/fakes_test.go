package service

import (
	"sync"
	"time"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/mailer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes for the repository and channel interfaces, standing in
// for the transactional store and outbound channels.

type fakeUserRepo struct {
	users []*model.User // creation order
}

func (f *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if !u.IsActive {
		u.IsActive = true
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			if u.ManagerID != nil && u.Manager == nil {
				u.Manager, _ = f.FindByID(*u.ManagerID)
			}
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(user *model.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepo) Update(user *model.User) error { return nil }

func (f *fakeUserRepo) Delete(id uuid.UUID) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error { return nil }

func (f *fakeUserRepo) FindAll() ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateTokenVersion(userID uuid.UUID, version string) error { return nil }
func (f *fakeUserRepo) UpdateLastSeen(userID uuid.UUID) error                     { return nil }

func (f *fakeUserRepo) FindSeniorManagerByDepartment(departmentID uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.Role == model.RoleSeniorManager && u.IsActive &&
			u.DepartmentID != nil && *u.DepartmentID == departmentID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindFirstByRole(role model.Role) (*model.User, error) {
	for _, u := range f.users {
		if u.Role == role && u.IsActive {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByRole(role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if u.Role == role && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FindDepartmentApprovers(departmentID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if !u.IsActive {
			continue
		}
		primary := (u.Role == model.RoleManager || u.Role == model.RoleSeniorManager) &&
			u.DepartmentID != nil && *u.DepartmentID == departmentID
		if primary || u.HasGrantIn(departmentID, model.RoleManager, model.RoleSeniorManager) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ReplaceRoleGrants(userID uuid.UUID, grants []model.RoleGrant) error {
	u, err := f.FindByID(userID)
	if err != nil {
		return err
	}
	u.RoleGrants = grants
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.PurchaseRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uuid.UUID]*model.PurchaseRequest{}}
}

func (f *fakeRequestRepo) add(req *model.PurchaseRequest) *model.PurchaseRequest {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = model.StatusInProgress
	}
	f.requests[req.ID] = req
	return req
}

func (f *fakeRequestRepo) Create(req *model.PurchaseRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(req)
	return nil
}

func (f *fakeRequestRepo) FindByID(id uuid.UUID) (*model.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestRepo) FindAll() ([]model.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PurchaseRequest
	for _, req := range f.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeRequestRepo) FindByRequester(requesterID uuid.UUID) ([]model.PurchaseRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PurchaseRequest
	for _, req := range f.requests {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) CountByStatus(status model.RequestStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, req := range f.requests {
		if req.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRequestRepo) SetRouting(id uuid.UUID, status model.RequestStatus, currentApproverID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if req.Status.Terminal() {
		return repository.ErrStatusConflict
	}
	req.Status = status
	req.CurrentApproverID = currentApproverID
	return nil
}

func (f *fakeRequestRepo) Transition(id uuid.UUID, from, to model.RequestStatus, approverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if req.Status != from {
		return repository.ErrStatusConflict
	}
	req.Status = to
	req.ApproverID = &approverID
	req.CurrentApproverID = nil
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: map[uuid.UUID]*model.Supplier{}}
}

func (f *fakeSupplierRepo) add(s *model.Supplier) *model.Supplier {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.suppliers[s.ID] = s
	return s
}

func (f *fakeSupplierRepo) Create(s *model.Supplier) error { f.add(s); return nil }
func (f *fakeSupplierRepo) Update(s *model.Supplier) error { return nil }

func (f *fakeSupplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSupplierRepo) FindAll() ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range f.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []model.ApprovalHistory
	failing bool
}

func (f *fakeHistoryRepo) Create(entry *model.ApprovalHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return gorm.ErrInvalidDB
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) FindByRequest(requestID uuid.UUID) ([]model.ApprovalHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ApprovalHistory
	for _, e := range f.entries {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	failing       bool
}

func (f *fakeNotificationRepo) Create(n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return gorm.ErrInvalidDB
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) FindByUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(id uuid.UUID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) byType(t model.NotificationType) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.notifications {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fakeDepartmentRepo struct {
	departments map[uuid.UUID]*model.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: map[uuid.UUID]*model.Department{}}
}

func (f *fakeDepartmentRepo) add(d *model.Department) *model.Department {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.departments[d.ID] = d
	return d
}

func (f *fakeDepartmentRepo) Create(d *model.Department) error { f.add(d); return nil }
func (f *fakeDepartmentRepo) Update(d *model.Department) error { return nil }
func (f *fakeDepartmentRepo) Delete(id uuid.UUID) error        { delete(f.departments, id); return nil }

func (f *fakeDepartmentRepo) FindByID(id uuid.UUID) (*model.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (f *fakeDepartmentRepo) FindByName(name string) (*model.Department, error) {
	for _, d := range f.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDepartmentRepo) FindAll() ([]model.Department, error) {
	var out []model.Department
	for _, d := range f.departments {
		out = append(out, *d)
	}
	return out, nil
}

type fakeOrderRepo struct {
	byDepartment map[uuid.UUID]decimal.Decimal
	byCategory   map[string]decimal.Decimal
	orders       []model.PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byDepartment: map[uuid.UUID]decimal.Decimal{},
		byCategory:   map[string]decimal.Decimal{},
	}
}

func (f *fakeOrderRepo) Create(order *model.PurchaseOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) FindAll() ([]model.PurchaseOrder, error) { return f.orders, nil }

func (f *fakeOrderRepo) UpdateStatus(id uuid.UUID, status model.OrderStatus) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) SumByRequesterDepartment(departmentID uuid.UUID) (decimal.Decimal, error) {
	return f.byDepartment[departmentID], nil
}

func (f *fakeOrderRepo) SumByBudgetCategory(category string) (decimal.Decimal, error) {
	return f.byCategory[category], nil
}

type fakeAlertRepo struct {
	alerts map[string]time.Time
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[string]time.Time{}}
}

func alertKey(departmentID uuid.UUID, tier model.ThresholdTier) string {
	return departmentID.String() + "/" + string(tier)
}

func (f *fakeAlertRepo) LastAlertedAt(departmentID uuid.UUID, tier model.ThresholdTier) (*time.Time, error) {
	at, ok := f.alerts[alertKey(departmentID, tier)]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func (f *fakeAlertRepo) Touch(departmentID uuid.UUID, tier model.ThresholdTier, at time.Time) error {
	f.alerts[alertKey(departmentID, tier)] = at
	return nil
}

type pushRecord struct {
	UserID  uuid.UUID
	Payload interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []pushRecord
}

func (f *fakePusher) Publish(userID uuid.UUID, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushRecord{UserID: userID, Payload: payload})
}

func (f *fakePusher) pushesFor(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, p := range f.pushes {
		if p.UserID == userID {
			n++
		}
	}
	return n
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failing bool
}

func (f *fakeMailer) Send(to, subject, htmlBody, textBody string) mailer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return mailer.Result{Sent: false, Error: "smtp unreachable"}
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject})
	return mailer.Result{Sent: true}
}

func (f *fakeMailer) sentTo(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, m := range f.sent {
		if m.To == to {
			n++
		}
	}
	return n
}

// syncQueue runs dispatched tasks inline so tests observe side effects
// deterministically.
type syncQueue struct{}

func (syncQueue) Enqueue(name string, run func()) { run() }
