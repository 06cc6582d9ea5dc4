package shift

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medshift/medshift/internal/platform/apperr"
)

// memStore backs every repository the shift service needs. memTx snapshots
// it on entry and restores the snapshot when the callback fails, which is
// what a rolled back transaction looks like to later reads.
type memStore struct {
	doctors     map[int64]bool
	patients    map[int64]bool
	pathologies map[int64]bool
	unspecified int64

	types       map[int64]*ShiftType
	shifts      map[int64]*Shift
	attentions  map[int64]*Attention
	links       map[int64]map[int64]bool
	deletedSh   map[int64]bool
	deletedAtt  map[int64]bool
	nextType    int64
	nextShift   int64
	nextAtt     int64
	writes      int
	lockedDocs  []int64
	failAttach  bool
	failOverlap error
}

func newMemStore() *memStore {
	return &memStore{
		doctors:     map[int64]bool{1: true, 2: true},
		patients:    map[int64]bool{10: true, 11: true, 12: true},
		pathologies: map[int64]bool{1: true, 2: true, 3: true},
		unspecified: 1,
		types:       map[int64]*ShiftType{},
		shifts:      map[int64]*Shift{},
		attentions:  map[int64]*Attention{},
		links:       map[int64]map[int64]bool{},
		deletedSh:   map[int64]bool{},
		deletedAtt:  map[int64]bool{},
	}
}

type memSnapshot struct {
	types      map[int64]ShiftType
	shifts     map[int64]Shift
	attentions map[int64]Attention
	links      map[int64]map[int64]bool
	deletedSh  map[int64]bool
	deletedAtt map[int64]bool
	writes     int
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		types:      map[int64]ShiftType{},
		shifts:     map[int64]Shift{},
		attentions: map[int64]Attention{},
		links:      map[int64]map[int64]bool{},
		deletedSh:  map[int64]bool{},
		deletedAtt: map[int64]bool{},
		writes:     m.writes,
	}
	for k, v := range m.types {
		s.types[k] = *v
	}
	for k, v := range m.shifts {
		s.shifts[k] = *v
	}
	for k, v := range m.attentions {
		s.attentions[k] = *v
	}
	for k, set := range m.links {
		cp := map[int64]bool{}
		for p := range set {
			cp[p] = true
		}
		s.links[k] = cp
	}
	for k := range m.deletedSh {
		s.deletedSh[k] = true
	}
	for k := range m.deletedAtt {
		s.deletedAtt[k] = true
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.types = map[int64]*ShiftType{}
	for k, v := range s.types {
		v := v
		m.types[k] = &v
	}
	m.shifts = map[int64]*Shift{}
	for k, v := range s.shifts {
		v := v
		m.shifts[k] = &v
	}
	m.attentions = map[int64]*Attention{}
	for k, v := range s.attentions {
		v := v
		m.attentions[k] = &v
	}
	m.links = s.links
	m.deletedSh = s.deletedSh
	m.deletedAtt = s.deletedAtt
	m.writes = s.writes
}

// liveShifts counts shifts that are not soft-deleted.
func (m *memStore) liveShifts() int {
	n := 0
	for id := range m.shifts {
		if !m.deletedSh[id] {
			n++
		}
	}
	return n
}

func (m *memStore) liveAttentions(shiftID int64) []*Attention {
	var out []*Attention
	for id, a := range m.attentions {
		if a.ShiftID == shiftID && !m.deletedAtt[id] {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) linkCount() int {
	n := 0
	for _, set := range m.links {
		n += len(set)
	}
	return n
}

// -- TxManager --

type memTx struct{ store *memStore }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// -- ShiftTypeRepository --

type memTypes struct{ *memStore }

func (m memTypes) Create(_ context.Context, st *ShiftType) error {
	m.nextType++
	st.ID = m.nextType
	cp := *st
	m.types[st.ID] = &cp
	return nil
}

func (m memTypes) GetByID(_ context.Context, id int64) (*ShiftType, error) {
	st, ok := m.types[id]
	if !ok {
		return nil, apperr.NotFound("shift type not found")
	}
	cp := *st
	return &cp, nil
}

func (m memTypes) Update(_ context.Context, st *ShiftType) error {
	if _, ok := m.types[st.ID]; !ok {
		return apperr.NotFound("shift type not found")
	}
	cp := *st
	m.types[st.ID] = &cp
	return nil
}

func (m memTypes) Delete(_ context.Context, id int64) error {
	if _, ok := m.types[id]; !ok {
		return apperr.NotFound("shift type not found")
	}
	delete(m.types, id)
	return nil
}

func (m memTypes) List(_ context.Context, _, _ int) ([]*ShiftType, int, error) {
	var out []*ShiftType
	for _, st := range m.types {
		out = append(out, st)
	}
	return out, len(out), nil
}

// -- ShiftRepository --

type memShifts struct{ *memStore }

func (m memShifts) Create(_ context.Context, s *Shift) error {
	m.writes++
	m.nextShift++
	s.ID = m.nextShift
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	cp.Attentions = nil
	m.shifts[s.ID] = &cp
	return nil
}

func (m memShifts) GetByID(_ context.Context, id int64) (*Shift, error) {
	s, ok := m.shifts[id]
	if !ok || m.deletedSh[id] {
		return nil, apperr.NotFound("shift not found")
	}
	cp := *s
	return &cp, nil
}

func (m memShifts) Update(_ context.Context, s *Shift) error {
	if _, ok := m.shifts[s.ID]; !ok || m.deletedSh[s.ID] {
		return apperr.NotFound("shift not found")
	}
	m.writes++
	cp := *s
	cp.Attentions = nil
	m.shifts[s.ID] = &cp
	return nil
}

func (m memShifts) Delete(_ context.Context, id int64) error {
	if _, ok := m.shifts[id]; !ok || m.deletedSh[id] {
		return apperr.NotFound("shift not found")
	}
	m.writes++
	m.deletedSh[id] = true
	return nil
}

func (m memShifts) MarkPaid(_ context.Context, id int64, at time.Time) error {
	s, ok := m.shifts[id]
	if !ok || m.deletedSh[id] {
		return apperr.NotFound("shift not found")
	}
	m.writes++
	s.PaidAt = &at
	return nil
}

func (m memShifts) List(_ context.Context, f ListFilter, _, _ int) ([]*Shift, int, error) {
	from, to, byMonth := f.Range()
	var out []*Shift
	for id, s := range m.shifts {
		if m.deletedSh[id] {
			continue
		}
		if f.DoctorID != nil && s.DoctorID != *f.DoctorID {
			continue
		}
		if f.Paid != nil && s.IsPaid() != *f.Paid {
			continue
		}
		if byMonth && (s.StartsAt.Before(from) || !s.StartsAt.Before(to)) {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m memShifts) FindOverlapping(_ context.Context, doctorID int64, startsAt, endsAt time.Time, excludeID int64) ([]int64, error) {
	if m.failOverlap != nil {
		return nil, m.failOverlap
	}
	var ids []int64
	for id, s := range m.shifts {
		if m.deletedSh[id] || s.DoctorID != doctorID || id == excludeID {
			continue
		}
		if Overlaps(startsAt, endsAt, s.StartsAt, s.EndsAt) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m memShifts) LockDoctor(_ context.Context, doctorID int64) error {
	if !m.doctors[doctorID] {
		return apperr.NotFound("doctor not found")
	}
	m.lockedDocs = append(m.lockedDocs, doctorID)
	return nil
}

// -- AttentionRepository --

type memAttentions struct{ *memStore }

var errAttach = errors.New("attach failed")

func (m memAttentions) Create(_ context.Context, a *Attention) error {
	m.writes++
	m.nextAtt++
	a.ID = m.nextAtt
	cp := *a
	m.attentions[a.ID] = &cp
	return nil
}

func (m memAttentions) Delete(_ context.Context, id int64) error {
	if _, ok := m.attentions[id]; !ok || m.deletedAtt[id] {
		return apperr.NotFound("attention not found")
	}
	m.writes++
	m.deletedAtt[id] = true
	return nil
}

func (m memAttentions) ListByShift(_ context.Context, shiftID int64) ([]*Attention, error) {
	var out []*Attention
	for _, a := range m.liveAttentions(shiftID) {
		cp := *a
		cp.PathologyIDs = nil
		for p := range m.links[a.ID] {
			cp.PathologyIDs = append(cp.PathologyIDs, p)
		}
		sort.Slice(cp.PathologyIDs, func(i, j int) bool { return cp.PathologyIDs[i] < cp.PathologyIDs[j] })
		out = append(out, &cp)
	}
	return out, nil
}

func (m memAttentions) AttachPathologies(_ context.Context, attentionID int64, ids []int64) error {
	if m.failAttach {
		return errAttach
	}
	m.writes++
	if m.links[attentionID] == nil {
		m.links[attentionID] = map[int64]bool{}
	}
	for _, id := range ids {
		m.links[attentionID][id] = true
	}
	return nil
}

func (m memAttentions) DetachPathologies(_ context.Context, attentionID int64, ids []int64) error {
	m.writes++
	if len(ids) == 0 {
		delete(m.links, attentionID)
		return nil
	}
	for _, id := range ids {
		delete(m.links[attentionID], id)
	}
	return nil
}

// -- PatientDirectory and PathologyCatalog --

type memRefs struct{ *memStore }

func missingFrom(ids []int64, set map[int64]bool) []int64 {
	var out []int64
	for _, id := range ids {
		if !set[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m memRefs) MissingPatients(_ context.Context, ids []int64) ([]int64, error) {
	return missingFrom(ids, m.patients), nil
}

func (m memRefs) MissingPathologies(_ context.Context, ids []int64) ([]int64, error) {
	return missingFrom(ids, m.pathologies), nil
}

func (m memRefs) UnspecifiedPathologyID(_ context.Context) (int64, error) {
	if m.unspecified == 0 {
		return 0, apperr.NotFound("protected pathology not found")
	}
	return m.unspecified, nil
}

// -- helpers --

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 10, 7, hour, minute, 0, 0, time.UTC)
}

