package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// CatalogService serves the read-only reference tables.
type CatalogService interface {
	Options(ctx context.Context) (*models.Options, error)
	ListWells(ctx context.Context) ([]*models.Well, error)
	ListPumps(ctx context.Context) ([]*models.Pump, error)
	ListSampleTypes(ctx context.Context) ([]*models.SampleType, error)
	ListPeople(ctx context.Context) ([]*models.Person, error)
}

type catalogService struct {
	catalogRepo repositories.CatalogRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalogRepo repositories.CatalogRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		logger:      logger.Named("catalog"),
	}
}

var _ CatalogService = (*catalogService)(nil)

// Options gathers every catalog for the front end's select boxes.
func (s *catalogService) Options(ctx context.Context) (*models.Options, error) {
	wells, err := s.ListWells(ctx)
	if err != nil {
		return nil, err
	}
	pumps, err := s.ListPumps(ctx)
	if err != nil {
		return nil, err
	}
	sampleTypes, err := s.ListSampleTypes(ctx)
	if err != nil {
		return nil, err
	}
	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Options{
		Wells:       wells,
		Pumps:       pumps,
		SampleTypes: sampleTypes,
		People:      people,
	}, nil
}

func (s *catalogService) ListWells(ctx context.Context) ([]*models.Well, error) {
	wells, err := s.catalogRepo.ListWells(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wells: %w", err)
	}
	return wells, nil
}

func (s *catalogService) ListPumps(ctx context.Context) ([]*models.Pump, error) {
	pumps, err := s.catalogRepo.ListPumps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pumps: %w", err)
	}
	return pumps, nil
}

func (s *catalogService) ListSampleTypes(ctx context.Context) ([]*models.SampleType, error) {
	types, err := s.catalogRepo.ListSampleTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sample types: %w", err)
	}
	return types, nil
}

func (s *catalogService) ListPeople(ctx context.Context) ([]*models.Person, error) {
	people, err := s.catalogRepo.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}
