package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStore = errors.New("store unavailable")

func nullLogger() (logrus.FieldLogger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

// fakeUsers is an in-memory users collection serving both ReferralGraph and ReferralWriter
type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	clock time.Time

	referrerReads int
	codeLookups   int
	failReads     bool
	takenCodes    map[string]bool
	allCodesTaken bool
	rejectSetCode bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:      make(map[primitive.ObjectID]*models.User),
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		takenCodes: make(map[string]bool),
	}
}

// add creates an mlm-active user referred by referrer (zero id for none)
func (f *fakeUsers) add(name string, referrer primitive.ObjectID) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = f.clock.Add(time.Minute)
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     name + "@example.com",
		MLMActive: true,
		CreatedAt: f.clock,
	}
	if !referrer.IsZero() {
		ref := referrer
		u.ReferredBy = &ref
		at := f.clock
		u.ReferredAt = &at
	}
	f.users[u.ID] = u
	return u.ID
}

func (f *fakeUsers) get(id primitive.ObjectID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeUsers) setReferrer(id, referrer primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := referrer
	f.users[id].ReferredBy = &ref
}

func (f *fakeUsers) setActive(id primitive.ObjectID, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].MLMActive = active
}

func (f *fakeUsers) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.referrerReads
}

func member(u *models.User) models.ReferralMember {
	return models.ReferralMember{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ReferralCode: u.ReferralCode,
		Avatar:       u.Avatar,
		MLMActive:    u.MLMActive,
		ReferredAt:   u.ReferredAt,
	}
}

func (f *fakeUsers) GetDirectReferrer(_ context.Context, userID primitive.ObjectID) (*models.ReferralNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.referrerReads++
	if f.failReads {
		return nil, errStore
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return &models.ReferralNode{ID: u.ID, ReferredBy: u.ReferredBy, MLMActive: u.MLMActive}, nil
}

func (f *fakeUsers) GetDirectChildren(_ context.Context, userID primitive.ObjectID, limit int) ([]models.ReferralMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var kids []*models.User
	for _, u := range f.users {
		if u.ReferredBy != nil && *u.ReferredBy == userID {
			kids = append(kids, u)
		}
	}
	sort.Slice(kids, func(i, j int) bool { return kids[i].CreatedAt.After(kids[j].CreatedAt) })

	out := []models.ReferralMember{}
	for i, u := range kids {
		if i >= limit {
			break
		}
		out = append(out, member(u))
	}
	return out, nil
}

func (f *fakeUsers) CountDirectChildren(_ context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, u := range f.users {
		if u.ReferredBy != nil && *u.ReferredBy == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) ResolveUserByIdentifier(_ context.Context, identifier string) (*models.ReferralMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, err := primitive.ObjectIDFromHex(identifier); err == nil {
		if u, ok := f.users[id]; ok {
			m := member(u)
			return &m, nil
		}
	}
	for _, u := range f.users {
		if u.ReferralCode != "" && u.ReferralCode == identifier {
			m := member(u)
			return &m, nil
		}
	}
	for _, u := range f.users {
		if u.Email == identifier {
			m := member(u)
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, userID primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindActiveByReferralCode(_ context.Context, code string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.codeLookups++

	for _, u := range f.users {
		if u.ReferralCode == code && u.MLMActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ReferralCodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allCodesTaken || f.takenCodes[code] {
		return true, nil
	}
	for _, u := range f.users {
		if u.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) SetReferralCode(_ context.Context, userID primitive.ObjectID, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rejectSetCode {
		return false, nil
	}
	u, ok := f.users[userID]
	if !ok || u.ReferralCode != "" {
		return false, nil
	}
	u.ReferralCode = code
	return true, nil
}

func (f *fakeUsers) SetReferredBy(_ context.Context, userID, referrerID primitive.ObjectID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || u.ReferredBy != nil {
		return false, nil
	}
	ref := referrerID
	u.ReferredBy = &ref
	u.ReferredAt = &at
	return true, nil
}

// fakeLedger is an in-memory commission ledger keyed on (order, earner)
type fakeLedger struct {
	mu         sync.Mutex
	rows       []models.Commission
	failInsert bool
	failAfter  int
}

func (l *fakeLedger) ExistsForOrder(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.rows {
		if r.Order == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) InsertIfAbsent(_ context.Context, c *models.Commission) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failInsert && len(l.rows) >= l.failAfter {
		return false, errStore
	}
	for _, r := range l.rows {
		if r.Order == c.Order && r.EarnerID == c.EarnerID {
			return false, nil
		}
	}
	c.ID = primitive.NewObjectID()
	l.rows = append(l.rows, *c)
	return true, nil
}

func (l *fakeLedger) AggregateByStatus(_ context.Context, earnerID primitive.ObjectID) ([]models.StatusAggregate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byStatus := map[string]*models.StatusAggregate{}
	var out []models.StatusAggregate
	for _, r := range l.rows {
		if r.EarnerID != earnerID {
			continue
		}
		agg, ok := byStatus[string(r.Status)]
		if !ok {
			agg = &models.StatusAggregate{Status: string(r.Status)}
			byStatus[string(r.Status)] = agg
		}
		agg.Amount += r.Amount
		agg.Count++
	}
	for _, agg := range byStatus {
		out = append(out, *agg)
	}
	return out, nil
}

func (l *fakeLedger) RecentForEarner(_ context.Context, earnerID primitive.ObjectID, limit int) ([]models.CommissionView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.CommissionView
	for i := len(l.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if l.rows[i].EarnerID == earnerID {
			out = append(out, models.CommissionView{Commission: l.rows[i]})
		}
	}
	return out, nil
}

func (l *fakeLedger) List(_ context.Context, status *models.CommissionStatus) ([]models.CommissionView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.CommissionView
	for i := len(l.rows) - 1; i >= 0; i-- {
		if status == nil || l.rows[i].Status == *status {
			out = append(out, models.CommissionView{Commission: l.rows[i]})
		}
	}
	return out, nil
}

func (l *fakeLedger) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.CommissionStatus, note *string) (*models.Commission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.rows {
		if l.rows[i].ID == id {
			l.rows[i].Status = status
			if note != nil {
				l.rows[i].Note = *note
			}
			cp := l.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) all() []models.Commission {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Commission(nil), l.rows...)
}

// fakeSettingsStore applies $set / $setOnInsert the way an upsert does
type fakeSettingsStore struct {
	doc      *models.MLMSettings
	failFind bool
	upserts  int
}

func (s *fakeSettingsStore) Find(context.Context) (*models.MLMSettings, error) {
	if s.failFind {
		return nil, errStore
	}
	if s.doc == nil {
		return nil, nil
	}
	cp := *s.doc
	return &cp, nil
}

func (s *fakeSettingsStore) Upsert(_ context.Context, set map[string]interface{}, setOnInsert map[string]interface{}) (*models.MLMSettings, error) {
	s.upserts++
	if s.doc == nil {
		s.doc = &models.MLMSettings{ID: primitive.NewObjectID()}
		applySettingsFields(s.doc, setOnInsert)
	}
	applySettingsFields(s.doc, set)
	cp := *s.doc
	return &cp, nil
}

func applySettingsFields(doc *models.MLMSettings, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "isEnabled":
			doc.IsEnabled = v.(bool)
		case "levels":
			doc.Levels = v.([]models.CommissionLevel)
		case "minOrderAmount":
			doc.MinOrderAmount = v.(float64)
		case "preventSelfReferral":
			doc.PreventSelfReferral = v.(bool)
		case "oneCommissionPerOrder":
			doc.OneCommissionPerOrder = v.(bool)
		case "createdAt":
			doc.CreatedAt = v.(time.Time)
		case "updatedAt":
			doc.UpdatedAt = v.(time.Time)
		}
	}
}

// staticSettings always yields the same settings
type staticSettings struct {
	s   models.MLMSettings
	err error
}

func (s staticSettings) Load(context.Context) (models.MLMSettings, error) {
	return s.s, s.err
}

// recordingNotifier remembers every published commission
type recordingNotifier struct {
	mu   sync.Mutex
	seen []models.Commission
}

func (n *recordingNotifier) NotifyCommissionCreated(c models.Commission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, c)
}

// fakeOrders is an in-memory order store
type fakeOrders struct {
	orders     map[primitive.ObjectID]*models.Order
	failUpdate bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (f *fakeOrders) add(buyer *primitive.ObjectID, subtotal, total *float64, status string) primitive.ObjectID {
	o := &models.Order{
		ID:          primitive.NewObjectID(),
		UserID:      buyer,
		Subtotal:    subtotal,
		TotalAmount: total,
		Status:      status,
	}
	f.orders[o.ID] = o
	return o.ID
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) error {
	if f.failUpdate {
		return errStore
	}
	f.orders[id].Status = status
	return nil
}

// fakeEngine records invocations of the commission creator
type fakeEngine struct {
	calls  []models.OrderRef
	bases  []float64
	result CommissionResult
	err    error
}

func (e *fakeEngine) CreateCommissionsForOrder(_ context.Context, order models.OrderRef, eligibleAmount float64) (CommissionResult, error) {
	e.calls = append(e.calls, order)
	e.bases = append(e.bases, eligibleAmount)
	return e.result, e.err
}

func float(v float64) *float64 {
	return &v
}
