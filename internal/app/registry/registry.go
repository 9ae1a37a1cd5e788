// Package registry is the donor registry service. It composes field
// validation with a DonorRepository and is the only path the HTTP layer
// uses to read or change donors.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/donorval"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.uber.org/zap"
)

// DonorRepository is implemented by the Mongo, Postgres and memory stores.
type DonorRepository interface {
	Create(ctx context.Context, in models.DonorInput) (models.Donor, error)
	Update(ctx context.Context, id int64, in models.DonorInput) (models.Donor, error)
	GetByID(ctx context.Context, id int64) (models.Donor, error)
	Search(ctx context.Context, q string) ([]models.Donor, error)
	Delete(ctx context.Context, id int64) error
}

// Service carries out donor operations. Audit and Metrics may be nil.
type Service struct {
	repo    DonorRepository
	audit   *auditlog.Logger
	metrics *metrics.Metrics
	log     *zap.Logger
}

func New(repo DonorRepository, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{repo: repo, audit: audit, metrics: m, log: log}
}

// Register validates raw and stores a new donor.
func (s *Service) Register(ctx context.Context, actor auditlog.Actor, raw donorval.Fields) (models.Donor, error) {
	in, err := donorval.Validate(raw)
	if err != nil {
		s.metrics.DonorOp("create", metrics.OutcomeInvalid)
		return models.Donor{}, err
	}

	d, err := s.repo.Create(ctx, in)
	s.metrics.DonorOp("create", outcome(err))
	if err != nil {
		s.logFailure("create", 0, err)
		return models.Donor{}, err
	}

	s.audit.DonorCreated(ctx, actor, d.ID)
	return d, nil
}

// Edit validates raw and overwrites donor id's mutable fields.
func (s *Service) Edit(ctx context.Context, id int64, actor auditlog.Actor, raw donorval.Fields) (models.Donor, error) {
	in, err := donorval.Validate(raw)
	if err != nil {
		s.metrics.DonorOp("update", metrics.OutcomeInvalid)
		return models.Donor{}, err
	}

	d, err := s.repo.Update(ctx, id, in)
	s.metrics.DonorOp("update", outcome(err))
	if err != nil {
		s.logFailure("update", id, err)
		return models.Donor{}, err
	}

	s.audit.DonorUpdated(ctx, actor, d.ID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Donor, error) {
	d, err := s.repo.GetByID(ctx, id)
	s.metrics.DonorOp("get", outcome(err))
	if err != nil {
		s.logFailure("get", id, err)
	}
	return d, err
}

// Search lists donors matching q, newest first. An empty q lists all.
func (s *Service) Search(ctx context.Context, q string) ([]models.Donor, error) {
	start := time.Now()
	out, err := s.repo.Search(ctx, q)
	s.metrics.ObserveSearch(start)
	s.metrics.DonorOp("search", outcome(err))
	if err != nil {
		s.logFailure("search", 0, err)
		return nil, err
	}
	return out, nil
}

// Remove deletes donor id. Removing a donor that does not exist succeeds.
func (s *Service) Remove(ctx context.Context, actor auditlog.Actor, id int64) error {
	err := s.repo.Delete(ctx, id)
	s.metrics.DonorOp("delete", outcome(err))
	if err != nil {
		s.logFailure("delete", id, err)
		return err
	}
	s.audit.DonorDeleted(ctx, actor, id)
	return nil
}

// logFailure logs infrastructure errors only; not-found and duplicates are
// ordinary outcomes.
func (s *Service) logFailure(op string, id int64, err error) {
	var se *apperr.StoreError
	if s.log == nil || !errors.As(err, &se) {
		return
	}
	s.log.Error("donor store operation failed",
		zap.String("op", op),
		zap.Int64("donor_id", id),
		zap.Error(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperr.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, apperr.ErrDuplicateKey):
		return metrics.OutcomeDuplicate
	default:
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return metrics.OutcomeInvalid
		}
		return metrics.OutcomeError
	}
}
