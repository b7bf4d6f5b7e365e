package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grocery-service/internal/domain"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/repository"
)

var errStoreDown = errors.New("connection refused")

type fakeCustomers struct {
	rows      map[string]*domain.Customer
	lookupErr error
	lookups   int
}

func newFakeCustomers(customers ...domain.Customer) *fakeCustomers {
	f := &fakeCustomers{rows: map[string]*domain.Customer{}}
	for i := range customers {
		c := customers[i]
		f.rows[c.ID] = &c
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, c *domain.Customer) error {
	c.ID = fmt.Sprintf("cust-%d", len(f.rows)+1)
	c.AuthUID = "uid-" + c.ID
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	if c, ok := f.rows[id]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	f.lookups++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, c := range f.rows {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeCustomers) SetActive(_ context.Context, id string, active bool) error {
	c, ok := f.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Active = active
	return nil
}

func (f *fakeCustomers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	c, ok := f.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.PasswordHash = passwordHash
	return nil
}

type fakeStaff struct {
	rows    map[string]*domain.StaffMember
	lookups int
}

func newFakeStaff(members ...domain.StaffMember) *fakeStaff {
	f := &fakeStaff{rows: map[string]*domain.StaffMember{}}
	for i := range members {
		m := members[i]
		f.rows[m.ID] = &m
	}
	return f
}

func (f *fakeStaff) Create(_ context.Context, m *domain.StaffMember) error {
	m.ID = fmt.Sprintf("staff-%d", len(f.rows)+1)
	m.AuthUID = "uid-" + m.ID
	f.rows[m.ID] = m
	return nil
}

func (f *fakeStaff) Update(_ context.Context, m *domain.StaffMember) error {
	if _, ok := f.rows[m.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.rows[m.ID] = m
	return nil
}

func (f *fakeStaff) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	if m, ok := f.rows[id]; ok {
		return m, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStaff) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	f.lookups++
	for _, m := range f.rows {
		if strings.EqualFold(m.CorporateEmail, email) {
			return m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStaff) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStaff) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	out := []domain.StaffMember{}
	for _, m := range f.rows {
		if filter.Active != nil && m.Active != *filter.Active {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRoles struct {
	rows []domain.StaffRole
}

func (f *fakeRoles) List(context.Context) ([]domain.StaffRole, error) { return f.rows, nil }

func (f *fakeRoles) GetByID(_ context.Context, id int) (*domain.StaffRole, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoles) GetByName(_ context.Context, name string) (*domain.StaffRole, error) {
	for _, r := range f.rows {
		if strings.EqualFold(r.Name, name) {
			return &r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoles) Ensure(_ context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		if _, err := f.GetByName(context.Background(), name); err == nil {
			continue
		}
		f.rows = append(f.rows, domain.StaffRole{ID: len(f.rows) + 1, Name: name})
		added++
	}
	return added, nil
}

type fakeProducts struct {
	rows         map[string]*domain.Product
	readErr      error
	decrementErr error
	decremented  map[string]int
}

func newFakeProducts(products ...domain.Product) *fakeProducts {
	f := &fakeProducts{rows: map[string]*domain.Product{}, decremented: map[string]int{}}
	for i := range products {
		p := products[i]
		f.rows[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) Create(_ context.Context, p *domain.Product) error {
	p.ID = fmt.Sprintf("prod-%d", len(f.rows)+1)
	f.rows[p.ID] = p
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *domain.Product) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProducts) GetByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := map[string]domain.Product{}
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (f *fakeProducts) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range f.rows {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.MaxStock != nil && p.Stock > *filter.MaxStock {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, id string, quantity int) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}
	f.decremented[id] += quantity
	if p, ok := f.rows[id]; ok {
		p.Stock -= quantity
	}
	return nil
}

type fakeCategories struct {
	rows map[int]*domain.Category
}

func (f *fakeCategories) Create(_ context.Context, c *domain.Category) error {
	c.ID = len(f.rows) + 1
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCategories) Update(_ context.Context, c *domain.Category) error {
	f.rows[c.ID] = c
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int) (*domain.Category, error) {
	if c, ok := f.rows[id]; ok {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategories) ListActive(ctx context.Context) ([]domain.Category, error) {
	all, _ := f.ListAll(ctx)
	out := []domain.Category{}
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) ListAll(context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range f.rows {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeAddresses struct {
	rows map[string]*domain.Address
}

func (f *fakeAddresses) Create(_ context.Context, a *domain.Address) error {
	a.ID = fmt.Sprintf("addr-%d", len(f.rows)+1)
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAddresses) GetByID(_ context.Context, id string) (*domain.Address, error) {
	if a, ok := f.rows[id]; ok {
		return a, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAddresses) ListByCustomer(_ context.Context, customerID string) ([]domain.Address, error) {
	out := []domain.Address{}
	for _, a := range f.rows {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu            sync.Mutex
	rows          map[string]*domain.Order
	legacy        map[string]string
	seq           int
	createErrs    []error
	createCalls   int
	deleteErr     error
	deleted       []string
	lastFilter    repository.OrderFilter
	deliveredSeen *string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{rows: map[string]*domain.Order{}, legacy: map[string]string{}}
}

func (f *fakeOrders) put(o domain.Order) {
	f.rows[o.ID] = &o
}

func (f *fakeOrders) CreateHeader(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.seq++
	o.ID = fmt.Sprintf("order-%d", f.seq)
	o.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.seq, 0, time.UTC)
	stored := *o
	stored.Lines = nil
	f.rows[o.ID] = &stored
	return nil
}

func (f *fakeOrders) DeleteHeader(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.rows, id)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := f.rows[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOrders) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	f.lastFilter = filter
	out := []domain.Order{}
	for _, o := range f.rows {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.CourierID != nil && (o.CourierID == nil || *o.CourierID != *filter.CourierID) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, o *domain.Order) error {
	stored, ok := f.rows[o.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = o.Status
	stored.DeliveredAt = o.DeliveredAt
	return nil
}

func (f *fakeOrders) AssignCourier(_ context.Context, id, courierID string) error {
	stored, ok := f.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.CourierID = &courierID
	return nil
}

func (f *fakeOrders) CountByStatus(context.Context) (map[domain.OrderStatus]int, error) {
	out := map[domain.OrderStatus]int{}
	for _, o := range f.rows {
		out[o.Status]++
	}
	return out, nil
}

func (f *fakeOrders) CountDeliveredSince(_ context.Context, since time.Time, courierID *string) (int, error) {
	f.deliveredSeen = courierID
	count := 0
	for _, o := range f.rows {
		if o.Status != domain.OrderStatusDelivered || o.DeliveredAt == nil || o.DeliveredAt.Before(since) {
			continue
		}
		if courierID != nil && (o.CourierID == nil || *o.CourierID != *courierID) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeOrders) ListLegacyNotes(_ context.Context, limit int) ([]repository.LegacyNote, error) {
	ids := make([]string, 0, len(f.legacy))
	for id := range f.legacy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []repository.LegacyNote{}
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		out = append(out, repository.LegacyNote{OrderID: id, Notes: f.legacy[id]})
	}
	return out, nil
}

func (f *fakeOrders) SetDeliveryInfo(_ context.Context, id string, info domain.DeliveryInfo) error {
	delete(f.legacy, id)
	if o, ok := f.rows[id]; ok {
		o.Delivery = info
	}
	return nil
}

func containsStatus(list []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeLines struct {
	rows      map[string][]domain.OrderLine
	insertErr error
}

func (f *fakeLines) InsertLines(_ context.Context, orderID string, lines []domain.OrderLine) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	f.rows[orderID] = append([]domain.OrderLine{}, lines...)
	return nil
}

func (f *fakeLines) ListByOrder(_ context.Context, orderID string) ([]domain.OrderLine, error) {
	return f.rows[orderID], nil
}

func (f *fakeLines) ListByOrders(_ context.Context, ids []string) (map[string][]domain.OrderLine, error) {
	out := map[string][]domain.OrderLine{}
	for _, id := range ids {
		out[id] = f.rows[id]
	}
	return out, nil
}

type fakeHistory struct {
	entries []domain.OrderStatusChange
	err     error
}

func (f *fakeHistory) Create(_ context.Context, c *domain.OrderStatusChange) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *c)
	return nil
}

func (f *fakeHistory) ListByOrder(_ context.Context, orderID string) ([]domain.OrderStatusChange, error) {
	out := []domain.OrderStatusChange{}
	for _, e := range f.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeResets struct {
	rows map[string]*repository.PasswordResetToken
}

func newFakeResets() *fakeResets {
	return &fakeResets{rows: map[string]*repository.PasswordResetToken{}}
}

func (f *fakeResets) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = fmt.Sprintf("reset-%d", len(f.rows)+1)
	token.CreatedAt = time.Now()
	f.rows[token.ID] = token
	return nil
}

func (f *fakeResets) GetByHash(_ context.Context, tokenHash string) (*repository.PasswordResetToken, error) {
	for _, t := range f.rows {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResets) MarkUsed(_ context.Context, id string) error {
	t, ok := f.rows[id]
	if !ok || t.UsedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	t.UsedAt = &now
	return nil
}

type recordingDispatcher struct {
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type failingDispatcher struct{}

func (failingDispatcher) Publish(context.Context, events.Event) error { return errStoreDown }

func (failingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func duplicateCodeErr() error {
	return fmt.Errorf("%w: PED-TEST", repository.ErrDuplicateOrderCode)
}

func customerIdentity(id string) domain.Identity {
	return domain.CustomerIdentity{Customer: domain.Customer{ID: id, AuthUID: "uid-" + id, Email: id + "@example.com", Active: true}}
}

func staffIdentity(id, roleName string) domain.Identity {
	return domain.NewStaffIdentity(domain.StaffMember{ID: id, AuthUID: "uid-" + id, CorporateEmail: id + "@store.test", RoleName: roleName, Active: true})
}
