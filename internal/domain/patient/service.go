package patient

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medshift/medshift/internal/platform/apperr"
)

type Service struct {
	patients    PatientRepository
	pathologies PathologyRepository
	logger      zerolog.Logger

	mu          sync.Mutex
	unspecified int64
}

func NewService(patients PatientRepository, pathologies PathologyRepository, logger zerolog.Logger) *Service {
	return &Service{
		patients:    patients,
		pathologies: pathologies,
		logger:      logger.With().Str("component", "patient").Logger(),
	}
}

// -- Patient --

func validatePatient(p *Patient) error {
	if !validGenders[p.Gender] {
		return apperr.Validation("gender must be one of: male, female")
	}
	if p.Email != nil && *p.Email != "" {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			return apperr.Validation("email is not a valid address")
		}
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		return apperr.Validation("birth_date cannot be in the future")
	}
	if p.DNI != nil {
		dni := strings.TrimSpace(*p.DNI)
		p.DNI = &dni
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := validatePatient(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, query, limit, offset)
}

func (s *Service) MissingPatients(ctx context.Context, ids []int64) ([]int64, error) {
	return s.patients.MissingIDs(ctx, ids)
}

// -- Pathology --

func validatePathology(p *Pathology) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Name == "" {
		return apperr.Validation("name is required")
	}
	if p.Description == "" {
		return apperr.Validation("description is required")
	}
	return nil
}

func (s *Service) CreatePathology(ctx context.Context, p *Pathology) error {
	if err := validatePathology(p); err != nil {
		return err
	}
	return s.pathologies.Create(ctx, p)
}

func (s *Service) GetPathology(ctx context.Context, id int64) (*Pathology, error) {
	return s.pathologies.GetByID(ctx, id)
}

func (s *Service) UpdatePathology(ctx context.Context, p *Pathology) error {
	existing, err := s.pathologies.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.IsProtected {
		s.logger.Warn().Int64("pathology_id", p.ID).Msg("rejected edit of protected pathology")
		return apperr.Protected("this pathology cannot be edited")
	}
	if err := validatePathology(p); err != nil {
		return err
	}
	return s.pathologies.Update(ctx, p)
}

func (s *Service) DeletePathology(ctx context.Context, id int64) error {
	existing, err := s.pathologies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsProtected {
		s.logger.Warn().Int64("pathology_id", id).Msg("rejected delete of protected pathology")
		return apperr.Protected("this pathology cannot be deleted")
	}
	return s.pathologies.Delete(ctx, id)
}

func (s *Service) ListPathologies(ctx context.Context, query string, limit, offset int) ([]*Pathology, int, error) {
	return s.pathologies.List(ctx, query, limit, offset)
}

func (s *Service) MissingPathologies(ctx context.Context, ids []int64) ([]int64, error) {
	return s.pathologies.MissingIDs(ctx, ids)
}

// UnspecifiedPathologyID returns the id of the protected "unspecified"
// pathology attached to attentions that carry no tags. The id is looked up
// once and then remembered.
func (s *Service) UnspecifiedPathologyID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unspecified != 0 {
		return s.unspecified, nil
	}
	p, err := s.pathologies.FirstProtected(ctx)
	if err != nil {
		return 0, err
	}
	s.unspecified = p.ID
	return p.ID, nil
}
