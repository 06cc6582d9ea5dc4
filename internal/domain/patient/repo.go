package patient

import "context"

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	// MissingIDs returns the ids that do not match a live patient.
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type PathologyRepository interface {
	Create(ctx context.Context, p *Pathology) error
	GetByID(ctx context.Context, id int64) (*Pathology, error)
	Update(ctx context.Context, p *Pathology) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query string, limit, offset int) ([]*Pathology, int, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
	// FirstProtected returns the lowest-id protected pathology.
	FirstProtected(ctx context.Context) (*Pathology, error)
}
