package services

import (
	"context"
	"encoding/json"
	"log"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/cache"
)

// AssignmentService resolves which jobs and tasks a resource may book time
// against. Assignments come from BC planning lines and change rarely, so
// results are cached.
type AssignmentService struct {
	CompanyRepo CompanyStore
	TenantRepo  TenantStore
	NewGateway  GatewayFactory
}

func NewAssignmentService(companyRepo CompanyStore, tenantRepo TenantStore, newGateway GatewayFactory) *AssignmentService {
	return &AssignmentService{CompanyRepo: companyRepo, TenantRepo: tenantRepo, NewGateway: newGateway}
}

func (s *AssignmentService) GetAssignments(ctx context.Context, companyID int, resourceNo string) (*bc.ResourceAssignments, error) {
	if data, ok := cache.GetCachedAssignments(ctx, companyID, resourceNo); ok {
		var cached bc.ResourceAssignments
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		// Unreadable cache payload; fall through to BC.
	}

	company, err := s.CompanyRepo.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.TenantRepo.Get(ctx, company.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IntegrationEnabled {
		return nil, ErrIntegrationDisabled
	}

	assignments, err := s.NewGateway(tenant, company).GetResourceAssignments(ctx, resourceNo)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(assignments); err == nil {
		cache.CacheAssignments(ctx, companyID, resourceNo, data)
	} else {
		log.Printf("[Assignments] failed to serialize assignments for cache: %v", err)
	}
	return assignments, nil
}
