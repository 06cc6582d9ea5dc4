package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medshift/medshift/internal/platform/apperr"
)

type mockRepo struct {
	doctors map[int64]*Doctor
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[int64]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok || d.DeletedAt != nil {
		return nil, apperr.NotFound("doctor not found")
	}
	return d, nil
}

func (m *mockRepo) Update(_ context.Context, d *Doctor) error {
	existing, ok := m.doctors[d.ID]
	if !ok || existing.DeletedAt != nil {
		return apperr.NotFound("doctor not found")
	}
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	d, ok := m.doctors[id]
	if !ok || d.DeletedAt != nil {
		return apperr.NotFound("doctor not found")
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if d.DeletedAt != nil {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.IsResident != nil && d.IsResident != *f.IsResident {
			continue
		}
		result = append(result, d)
	}
	return result, len(result), nil
}

func ptrStr(s string) *string { return &s }
func ptrInt(i int) *int       { return &i }

func newTestService() *Service {
	return NewService(newMockRepo(), zerolog.Nop())
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	d := &Doctor{Name: "  Ana Pérez ", Age: ptrInt(40), Email: ptrStr("ana@clinic.test")}
	if err := svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if d.Name != "Ana Pérez" {
		t.Errorf("expected trimmed name, got %q", d.Name)
	}
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		d    *Doctor
	}{
		{"missing name", &Doctor{}},
		{"blank name", &Doctor{Name: "   "}},
		{"too young", &Doctor{Name: "A", Age: ptrInt(17)}},
		{"too old", &Doctor{Name: "A", Age: ptrInt(101)}},
		{"bad email", &Doctor{Name: "A", Email: ptrStr("not-an-email")}},
	}
	svc := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), tt.d)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_DeleteThenGet(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	d := &Doctor{Name: "Luis"}
	if err := svc.Create(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found after soft delete, got %v", err)
	}
	if err := svc.Delete(ctx, d.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := newTestService()
	err := svc.Update(context.Background(), &Doctor{ID: 99, Name: "Nadie"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_List_Filters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, d := range []*Doctor{{Name: "Ana", IsResident: true}, {Name: "Bruno"}, {Name: "Anabel"}} {
		if err := svc.Create(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	_, total, err := svc.List(ctx, ListFilter{Query: "ana"}, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("expected 2 matches for 'ana', got %d", total)
	}

	resident := true
	_, total, _ = svc.List(ctx, ListFilter{IsResident: &resident}, 20, 0)
	if total != 1 {
		t.Errorf("expected 1 resident, got %d", total)
	}
}
