package shift

import (
	"context"
)

// PathologyCatalog is what attentions need to know about pathologies.
type PathologyCatalog interface {
	UnspecifiedPathologyID(ctx context.Context) (int64, error)
	MissingPathologies(ctx context.Context, ids []int64) ([]int64, error)
}

// AttentionManager creates and removes the attentions of a shift together
// with their pathology links.
type AttentionManager struct {
	attentions AttentionRepository
	catalog    PathologyCatalog
}

func NewAttentionManager(attentions AttentionRepository, catalog PathologyCatalog) *AttentionManager {
	return &AttentionManager{attentions: attentions, catalog: catalog}
}

// Create persists one attention per input. An input without pathologies is
// tagged with the unspecified pathology only.
func (m *AttentionManager) Create(ctx context.Context, shiftID int64, inputs []AttentionInput) ([]*Attention, error) {
	created := make([]*Attention, 0, len(inputs))
	for _, in := range inputs {
		a := &Attention{
			ShiftID:          shiftID,
			PatientID:        in.PatientID,
			AttendedAt:       in.AttendedAt,
			Notes:            in.Notes,
			PerPatientAmount: in.PerPatientAmount,
		}
		if err := m.attentions.Create(ctx, a); err != nil {
			return nil, err
		}

		tags := dedupe(in.Pathologies)
		if len(tags) == 0 {
			id, err := m.catalog.UnspecifiedPathologyID(ctx)
			if err != nil {
				return nil, err
			}
			tags = []int64{id}
		}
		if err := m.attentions.AttachPathologies(ctx, a.ID, tags); err != nil {
			return nil, err
		}
		a.PathologyIDs = tags
		created = append(created, a)
	}
	return created, nil
}

// Teardown detaches every pathology link of each attention before deleting
// the attention itself.
func (m *AttentionManager) Teardown(ctx context.Context, attentions []*Attention) error {
	for _, a := range attentions {
		if err := m.attentions.DetachPathologies(ctx, a.ID, nil); err != nil {
			return err
		}
		if err := m.attentions.Delete(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
