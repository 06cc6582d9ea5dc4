package doctor

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medshift/medshift/internal/platform/apperr"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "doctor").Logger()}
}

func validate(d *Doctor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperr.Validation("name is required")
	}
	if d.Age != nil && (*d.Age < 18 || *d.Age > 100) {
		return apperr.Validation("age must be between 18 and 100")
	}
	if d.Email != nil && *d.Email != "" {
		if _, err := mail.ParseAddress(*d.Email); err != nil {
			return apperr.Validation("email is not a valid address")
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Msg("doctor created")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// Delete soft-deletes the doctor. Their past shifts stay in place.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("doctor_id", id).Msg("doctor deleted")
	return nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}
