package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medshift/medshift/internal/platform/apperr"
)

// -- Mock Repositories --

type mockPatientRepo struct {
	patients map[int64]*Patient
	nextID   int64
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[int64]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperr.NotFound("patient not found")
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.NotFound("patient not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id int64) error {
	p, ok := m.patients[id]
	if !ok || p.DeletedAt != nil {
		return apperr.NotFound("patient not found")
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, _ string, _, _ int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockPatientRepo) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	found := map[int64]bool{}
	for id, p := range m.patients {
		if p.DeletedAt == nil {
			found[id] = true
		}
	}
	return missingIDs(ids, found), nil
}

type mockPathologyRepo struct {
	items          map[int64]*Pathology
	nextID         int64
	writes         int
	protectedCalls int
}

func newMockPathologyRepo() *mockPathologyRepo {
	m := &mockPathologyRepo{items: make(map[int64]*Pathology)}
	m.items[1] = &Pathology{ID: 1, Name: "Patología no especificada", Description: "sin especificar", IsProtected: true}
	m.nextID = 1
	return m
}

func (m *mockPathologyRepo) Create(_ context.Context, p *Pathology) error {
	m.writes++
	m.nextID++
	p.ID = m.nextID
	m.items[p.ID] = p
	return nil
}

func (m *mockPathologyRepo) GetByID(_ context.Context, id int64) (*Pathology, error) {
	p, ok := m.items[id]
	if !ok || p.DeletedAt != nil {
		return nil, apperr.NotFound("pathology not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockPathologyRepo) Update(_ context.Context, p *Pathology) error {
	m.writes++
	m.items[p.ID] = p
	return nil
}

func (m *mockPathologyRepo) Delete(_ context.Context, id int64) error {
	m.writes++
	now := time.Now()
	m.items[id].DeletedAt = &now
	return nil
}

func (m *mockPathologyRepo) List(_ context.Context, _ string, _, _ int) ([]*Pathology, int, error) {
	var out []*Pathology
	for _, p := range m.items {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockPathologyRepo) MissingIDs(_ context.Context, ids []int64) ([]int64, error) {
	found := map[int64]bool{}
	for id, p := range m.items {
		if p.DeletedAt == nil {
			found[id] = true
		}
	}
	return missingIDs(ids, found), nil
}

func (m *mockPathologyRepo) FirstProtected(_ context.Context) (*Pathology, error) {
	m.protectedCalls++
	var best *Pathology
	for _, p := range m.items {
		if p.IsProtected && p.DeletedAt == nil && (best == nil || p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return nil, apperr.NotFound("protected pathology not found")
	}
	return best, nil
}

func ptrStr(s string) *string { return &s }

func newTestService() (*Service, *mockPathologyRepo) {
	paths := newMockPathologyRepo()
	return NewService(newMockPatientRepo(), paths, zerolog.Nop()), paths
}

// -- Patient --

func TestCreatePatient(t *testing.T) {
	svc, _ := newTestService()
	p := &Patient{Name: ptrStr("Juana"), DNI: ptrStr(" 30111222 "), Gender: "female"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if *p.DNI != "30111222" {
		t.Errorf("expected trimmed DNI, got %q", *p.DNI)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc, _ := newTestService()
	future := &Date{Time: time.Now().AddDate(1, 0, 0)}
	tests := []struct {
		name string
		p    *Patient
	}{
		{"missing gender", &Patient{}},
		{"unknown gender", &Patient{Gender: "other"}},
		{"bad email", &Patient{Gender: "male", Email: ptrStr("nope")}},
		{"future birth date", &Patient{Gender: "male", BirthDate: future}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreatePatient(context.Background(), tt.p); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestMissingPatients(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	p := &Patient{Gender: "male"}
	svc.CreatePatient(ctx, p)

	missing, err := svc.MissingPatients(ctx, []int64{p.ID, 77, 77, 78})
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 2 || missing[0] != 77 || missing[1] != 78 {
		t.Errorf("expected [77 78], got %v", missing)
	}
}

// -- Pathology --

func TestUpdatePathology_Protected(t *testing.T) {
	svc, repo := newTestService()
	err := svc.UpdatePathology(context.Background(), &Pathology{ID: 1, Name: "x", Description: "y"})
	if !errors.Is(err, apperr.ErrProtected) {
		t.Fatalf("expected protected error, got %v", err)
	}
	if repo.writes != 0 {
		t.Errorf("expected zero writes, got %d", repo.writes)
	}
	if repo.items[1].Name != "Patología no especificada" {
		t.Error("protected pathology was modified")
	}
}

func TestDeletePathology_Protected(t *testing.T) {
	svc, repo := newTestService()
	err := svc.DeletePathology(context.Background(), 1)
	if !errors.Is(err, apperr.ErrProtected) {
		t.Fatalf("expected protected error, got %v", err)
	}
	if repo.writes != 0 {
		t.Errorf("expected zero writes, got %d", repo.writes)
	}
	if repo.items[1].DeletedAt != nil {
		t.Error("protected pathology was deleted")
	}
}

func TestProtectionFollowsFlagNotID(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.items[1].IsProtected = false
	repo.items[5] = &Pathology{ID: 5, Name: "Sentinel", Description: "d", IsProtected: true}

	if err := svc.UpdatePathology(ctx, &Pathology{ID: 1, Name: "Renamed", Description: "d"}); err != nil {
		t.Errorf("unflagged pathology 1 should be editable, got %v", err)
	}
	if err := svc.DeletePathology(ctx, 5); !errors.Is(err, apperr.ErrProtected) {
		t.Errorf("flagged pathology should be protected, got %v", err)
	}
}

func TestUpdatePathology(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	p := &Pathology{Name: "Gripe", Description: "Influenza"}
	if err := svc.CreatePathology(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Name = "Gripe A"
	if err := svc.UpdatePathology(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[p.ID].Name != "Gripe A" {
		t.Error("expected update to persist")
	}
}

func TestDeletePathology_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.DeletePathology(context.Background(), 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreatePathology_Validation(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.CreatePathology(context.Background(), &Pathology{Name: "Gripe"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing description, got %v", err)
	}
}

func TestUnspecifiedPathologyID_Cached(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		id, err := svc.UnspecifiedPathologyID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if id != 1 {
			t.Errorf("expected id 1, got %d", id)
		}
	}
	if repo.protectedCalls != 1 {
		t.Errorf("expected one lookup, got %d", repo.protectedCalls)
	}
}

func TestUnspecifiedPathologyID_Missing(t *testing.T) {
	svc, repo := newTestService()
	delete(repo.items, 1)
	if _, err := svc.UnspecifiedPathologyID(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
