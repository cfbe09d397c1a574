package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/destekhq/ticket-core/internal/config"
	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/repository"
	"github.com/destekhq/ticket-core/pkg/util"
)

type stubStatusRepo struct {
	statuses []domain.Status
}

func (s *stubStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	for i := range s.statuses {
		if s.statuses[i].ID == id {
			status := s.statuses[i]
			return &status, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStatusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	for i := range s.statuses {
		if s.statuses[i].Name == name {
			status := s.statuses[i]
			return &status, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubStatusRepo) First(_ context.Context) (*domain.Status, error) {
	if len(s.statuses) == 0 {
		return nil, repository.ErrNotFound
	}
	lowest := s.statuses[0]
	for _, status := range s.statuses[1:] {
		if status.ID < lowest.ID {
			lowest = status
		}
	}
	return &lowest, nil
}

func (s *stubStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	return append([]domain.Status{}, s.statuses...), nil
}

func lifecycleConfig() config.LifecycleConfig {
	return config.LifecycleConfig{
		OpenName:             "Open",
		AssignedName:         "Assigned",
		InProgressName:       "InProgress",
		ClosedName:           "Closed",
		OpenFallbackID:       1,
		AssignedFallbackID:   2,
		InProgressFallbackID: 3,
		ClosedFallbackID:     6,
	}
}

func TestLoadCatalogResolvesByName(t *testing.T) {
	repo := &stubStatusRepo{statuses: []domain.Status{
		{ID: 10, Name: "Open"},
		{ID: 20, Name: "Assigned"},
		{ID: 30, Name: "InProgress"},
		{ID: 60, Name: "Closed"},
	}}

	catalog, err := LoadCatalog(context.Background(), repo, lifecycleConfig())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Open.ID != 10 || catalog.Assigned.ID != 20 || catalog.InProgress.ID != 30 || catalog.Closed.ID != 60 {
		t.Fatalf("unexpected role ids: %+v", catalog)
	}
}

func TestLoadCatalogFallsBackToConfiguredID(t *testing.T) {
	// No canonical names; the configured fallback ids must win over First.
	repo := &stubStatusRepo{statuses: []domain.Status{
		{ID: 1, Name: "Yeni"},
		{ID: 2, Name: "Atandi"},
		{ID: 3, Name: "Islemde"},
		{ID: 6, Name: "Kapandi"},
	}}

	catalog, err := LoadCatalog(context.Background(), repo, lifecycleConfig())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Open.Name != "Yeni" {
		t.Fatalf("open = %q, want fallback id 1 (Yeni)", catalog.Open.Name)
	}
	if catalog.Closed.Name != "Kapandi" {
		t.Fatalf("closed = %q, want fallback id 6 (Kapandi)", catalog.Closed.Name)
	}
}

func TestLoadCatalogFallsBackToLowestID(t *testing.T) {
	// Neither names nor fallback ids exist; every role lands on the lowest id.
	repo := &stubStatusRepo{statuses: []domain.Status{
		{ID: 77, Name: "Something"},
		{ID: 90, Name: "Else"},
	}}

	catalog, err := LoadCatalog(context.Background(), repo, lifecycleConfig())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if catalog.Open.ID != 77 || catalog.Closed.ID != 77 {
		t.Fatalf("expected lowest id 77 for all roles, got open=%d closed=%d", catalog.Open.ID, catalog.Closed.ID)
	}
}

func TestLoadCatalogEmptyCatalogIsConfigurationError(t *testing.T) {
	_, err := LoadCatalog(context.Background(), &stubStatusRepo{}, lifecycleConfig())
	if err == nil {
		t.Fatal("expected error for empty catalog")
	}
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFIGURATION_ERROR" {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	repo := &stubStatusRepo{statuses: []domain.Status{
		{ID: 1, Name: "Open"},
		{ID: 2, Name: "Assigned"},
		{ID: 3, Name: "InProgress"},
		{ID: 6, Name: "Closed"},
	}}
	catalog, err := LoadCatalog(context.Background(), repo, lifecycleConfig())
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	tests := []struct {
		name   string
		status domain.Status
		want   bool
	}{
		{"exact name", domain.Status{ID: 6, Name: "Closed"}, true},
		{"case insensitive", domain.Status{ID: 99, Name: "CLOSED"}, true},
		{"lowercase", domain.Status{ID: 99, Name: "closed"}, true},
		{"closed role id under other name", domain.Status{ID: 6, Name: "Kapandi"}, true},
		{"open", domain.Status{ID: 1, Name: "Open"}, false},
		{"in progress", domain.Status{ID: 3, Name: "InProgress"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.IsTerminal(tt.status); got != tt.want {
				t.Fatalf("IsTerminal(%+v) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
