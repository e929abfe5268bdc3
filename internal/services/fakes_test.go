package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timetrack-backend/internal/bc"
	"timetrack-backend/internal/models"
)

// In-memory stores and a scriptable gateway for service tests.

type fakeEntryStore struct {
	entries map[string]*models.TimeEntry
	nextID  int

	failMarkSynced map[string]error
	failUpdate     error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]*models.TimeEntry)}
}

func (s *fakeEntryStore) add(e *models.TimeEntry) *models.TimeEntry {
	if e.ID == "" {
		s.nextID++
		e.ID = fmt.Sprintf("entry-%d", s.nextID)
	}
	if e.SyncState == "" {
		e.SyncState = models.SyncStateNotSynced
	}
	if e.ApprovalStatus == "" {
		e.ApprovalStatus = models.ApprovalStatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.nextID) * time.Minute)
	}
	s.entries[e.ID] = e
	return e
}

func (s *fakeEntryStore) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("time entry %s not found", id)
	}
	copied := *e
	return &copied, nil
}

func (s *fakeEntryStore) Create(ctx context.Context, e *models.TimeEntry) error {
	s.add(e)
	return nil
}

func (s *fakeEntryStore) Update(ctx context.Context, e *models.TimeEntry) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	if _, ok := s.entries[e.ID]; !ok {
		return fmt.Errorf("time entry %s not found", e.ID)
	}
	e.SyncState = models.NormalizeSyncState(string(e.SyncState))
	copied := *e
	s.entries[e.ID] = &copied
	return nil
}

func (s *fakeEntryStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("time entry %s not found", id)
	}
	delete(s.entries, id)
	return nil
}

func (s *fakeEntryStore) GetPendingSync(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error) {
	var pending []*models.TimeEntry
	for _, e := range s.entries {
		if e.CompanyID != companyID || !e.IsEditable || !e.SyncState.IsPending() {
			continue
		}
		if resourceNo != "" && e.ResourceNo != resourceNo {
			continue
		}
		copied := *e
		pending = append(pending, &copied)
	}
	sortByCreatedAt(pending)
	return pending, nil
}

func (s *fakeEntryStore) ListByKey(ctx context.Context, companyID int, resourceNo, jobNo, jobTaskNo string, date time.Time) ([]*models.TimeEntry, error) {
	var matched []*models.TimeEntry
	for _, e := range s.entries {
		if e.CompanyID == companyID && e.ResourceNo == resourceNo &&
			e.JobNo == jobNo && e.JobTaskNo == jobTaskNo && e.EntryDate.Equal(date) {
			copied := *e
			matched = append(matched, &copied)
		}
	}
	sortByCreatedAt(matched)
	return matched, nil
}

func (s *fakeEntryStore) ListSyncedWithJournalID(ctx context.Context, companyID int, resourceNo string) ([]*models.TimeEntry, error) {
	var matched []*models.TimeEntry
	for _, e := range s.entries {
		if e.CompanyID != companyID || e.SyncState != models.SyncStateSynced || !e.HasJournalLine() {
			continue
		}
		if resourceNo != "" && e.ResourceNo != resourceNo {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sortByCreatedAt(matched)
	return matched, nil
}

func (s *fakeEntryStore) MarkSynced(ctx context.Context, id, journalID, batchName string, lineNo int, syncedAt time.Time) error {
	if err := s.failMarkSynced[id]; err != nil {
		return err
	}
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("time entry %s not found", id)
	}
	e.SyncState = models.SyncStateSynced
	e.BCJournalID = &journalID
	e.BCBatchName = &batchName
	e.BCLineNo = &lineNo
	e.SyncedAt = &syncedAt
	return nil
}

func (s *fakeEntryStore) MarkSyncError(ctx context.Context, id string, syncedAt time.Time) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("time entry %s not found", id)
	}
	e.SyncState = models.SyncStateError
	e.SyncedAt = &syncedAt
	return nil
}

func (s *fakeEntryStore) UpdateApproval(ctx context.Context, id, approvalStatus, comments string) error {
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("time entry %s not found", id)
	}
	e.ApprovalStatus = approvalStatus
	e.BCComments = comments
	return nil
}

func sortByCreatedAt(entries []*models.TimeEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].CreatedAt.Before(entries[j-1].CreatedAt); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

type fakeBatchStore struct {
	batches []*models.SyncBatch
}

func (s *fakeBatchStore) Create(ctx context.Context, b *models.SyncBatch) error {
	s.batches = append(s.batches, b)
	return nil
}

type fakeAuditStore struct {
	logs []*models.SyncLog
}

func (s *fakeAuditStore) Create(ctx context.Context, l *models.SyncLog) error {
	s.logs = append(s.logs, l)
	return nil
}

func (s *fakeAuditStore) byLevel(level string) []*models.SyncLog {
	var matched []*models.SyncLog
	for _, l := range s.logs {
		if l.Level == level {
			matched = append(matched, l)
		}
	}
	return matched
}

type fakeCompanyStore struct {
	companies map[int]*models.Company
}

func (s *fakeCompanyStore) Get(ctx context.Context, id int) (*models.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, fmt.Errorf("company %d not found", id)
	}
	return c, nil
}

type fakeTenantStore struct {
	tenants map[int]*models.Tenant
}

func (s *fakeTenantStore) Get(ctx context.Context, id int) (*models.Tenant, error) {
	t, ok := s.tenants[id]
	if !ok {
		return nil, fmt.Errorf("tenant %d not found", id)
	}
	return t, nil
}

// fakeGateway records calls and can be scripted to fail per journal line.
type fakeGateway struct {
	createCalls []bc.JournalLineSpec
	updateCalls []bc.JournalLineSpec
	deleteCalls []string
	nextLineNo  int

	failCreateFor map[string]error // keyed by description
	failUpdate    error
	failDelete    error

	statuses    map[string]bc.LineStatus
	assignments *bc.ResourceAssignments
	failStatus  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failCreateFor: make(map[string]error)}
}

func (g *fakeGateway) CreateJournalLine(ctx context.Context, spec bc.JournalLineSpec) (*bc.JournalLine, error) {
	g.createCalls = append(g.createCalls, spec)
	if err := g.failCreateFor[spec.Description]; err != nil {
		return nil, err
	}
	g.nextLineNo += 10000
	return &bc.JournalLine{
		ID:     fmt.Sprintf("bc-line-%d", len(g.createCalls)),
		LineNo: g.nextLineNo,
	}, nil
}

func (g *fakeGateway) UpdateJournalLine(ctx context.Context, spec bc.JournalLineSpec) (*bc.JournalLine, error) {
	g.updateCalls = append(g.updateCalls, spec)
	if g.failUpdate != nil {
		return nil, g.failUpdate
	}
	lineNo := spec.LineNo
	if lineNo == 0 {
		lineNo = 10000
	}
	return &bc.JournalLine{ID: spec.ID, LineNo: lineNo}, nil
}

func (g *fakeGateway) DeleteJournalLine(ctx context.Context, id string) error {
	g.deleteCalls = append(g.deleteCalls, id)
	return g.failDelete
}

func (g *fakeGateway) GetLineStatuses(ctx context.Context, ids []string) (map[string]bc.LineStatus, error) {
	if g.failStatus != nil {
		return nil, g.failStatus
	}
	result := make(map[string]bc.LineStatus)
	for _, id := range ids {
		if status, ok := g.statuses[id]; ok {
			result[id] = status
		}
	}
	return result, nil
}

func (g *fakeGateway) GetResourceAssignments(ctx context.Context, resourceNo string) (*bc.ResourceAssignments, error) {
	if g.assignments == nil {
		return nil, errors.New("no assignments scripted")
	}
	return g.assignments, nil
}

// testEnv bundles the fakes behind a configured service wiring.
type testEnv struct {
	entries *fakeEntryStore
	batches *fakeBatchStore
	audit   *fakeAuditStore
	gateway *fakeGateway
}

func newTestEnv() *testEnv {
	return &testEnv{
		entries: newFakeEntryStore(),
		batches: &fakeBatchStore{},
		audit:   &fakeAuditStore{},
		gateway: newFakeGateway(),
	}
}

func (env *testEnv) companyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: map[int]*models.Company{
		1: {
			ID:                  1,
			TenantID:            1,
			Name:                "Contoso GmbH",
			BCCompanyID:         "company-guid",
			JournalTemplateName: "RESSOURCE",
			JournalBatchName:    "ZEIT",
		},
	}}
}

func (env *testEnv) tenantStore(enabled bool) *fakeTenantStore {
	return &fakeTenantStore{tenants: map[int]*models.Tenant{
		1: {
			ID:                 1,
			Name:               "Contoso",
			BCTenantID:         "tenant-guid",
			BCClientID:         "client-id",
			BCClientSecret:     "client-secret",
			BCEnvironment:      "production",
			IntegrationEnabled: enabled,
		},
	}}
}

func (env *testEnv) gatewayFactory() GatewayFactory {
	return func(tenant *models.Tenant, company *models.Company) Gateway {
		return env.gateway
	}
}

func (env *testEnv) syncService(integrationEnabled bool) *SyncService {
	return NewSyncService(env.entries, env.batches, env.audit,
		env.companyStore(), env.tenantStore(integrationEnabled), env.gatewayFactory())
}

func (env *testEnv) statusService() *StatusService {
	return NewStatusService(env.entries, env.audit,
		env.companyStore(), env.tenantStore(true), env.gatewayFactory())
}

func (env *testEnv) entryService() *EntryService {
	return NewEntryService(env.entries, env.audit,
		env.companyStore(), env.tenantStore(true), env.gatewayFactory())
}

func (env *testEnv) timesheetService() *TimesheetService {
	return NewTimesheetService(env.entries, env.audit, env.companyStore())
}

func strPtr(s string) *string { return &s }
