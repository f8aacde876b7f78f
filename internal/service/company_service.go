package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"invoicing/internal/model"
	"invoicing/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyService keeps the singleton company profile.
type CompanyService interface {
	GetCompany(ctx context.Context) (model.CompanyProfile, error)
	SaveCompany(ctx context.Context, profile model.CompanyProfile) (model.CompanyProfile, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
	txManager   repository.TransactionManager
	logger      *zap.Logger
}

func NewCompanyService(companyRepo repository.CompanyRepository, txManager repository.TransactionManager, logger *zap.Logger) CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &companyService{
		companyRepo: companyRepo,
		txManager:   txManager,
		logger:      logger.Named("company_service"),
	}
}

func (s *companyService) GetCompany(ctx context.Context) (model.CompanyProfile, error) {
	record, err := s.companyRepo.Find(ctx)
	if err != nil {
		return model.CompanyProfile{}, fmt.Errorf("company profile: %w", err)
	}
	return decodeCompany(record)
}

// SaveCompany creates the profile or replaces the existing one in place.
func (s *companyService) SaveCompany(ctx context.Context, profile model.CompanyProfile) (model.CompanyProfile, error) {
	if err := profile.Validate(); err != nil {
		return model.CompanyProfile{}, err
	}
	profile.ApplyDefaults()

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		record, findErr := s.companyRepo.Find(txCtx)
		switch {
		case errors.Is(findErr, repository.ErrNotFound):
			record = &model.CompanyRecord{ID: uuid.New()}
		case findErr != nil:
			return fmt.Errorf("failed to load company profile: %w", findErr)
		}

		profile.ID = record.ID.String()
		doc, encErr := json.Marshal(profile)
		if encErr != nil {
			return fmt.Errorf("failed to encode company profile: %w", encErr)
		}
		record.Document = string(doc)

		if saveErr := s.companyRepo.Save(txCtx, record); saveErr != nil {
			return fmt.Errorf("failed to save company profile: %w", saveErr)
		}
		return nil
	})
	if err != nil {
		return model.CompanyProfile{}, err
	}

	s.logger.Info("company profile saved", zap.String("id", profile.ID))
	return profile, nil
}

func decodeCompany(record *model.CompanyRecord) (model.CompanyProfile, error) {
	var profile model.CompanyProfile
	if err := json.Unmarshal([]byte(record.Document), &profile); err != nil {
		return model.CompanyProfile{}, fmt.Errorf("failed to decode company profile: %w", err)
	}
	profile.ID = record.ID.String()
	return profile, nil
}
