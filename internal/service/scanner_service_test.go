package service

import (
	"context"
	"strings"
	"testing"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/manifest"
)

func TestScanDiscoversAndRescansWithoutDuplicates(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	repo := store.addRepository(domain.Repository{
		Owner: "acme", Name: "platform", RemoteID: 1001, Active: true,
	})

	for _, fixture := range []struct {
		path string
		name string
	}{
		{"services/auth/vibe.json", "auth-service"},
		{"services/billing/vibe.json", "billing-service"},
	} {
		content, err := manifest.Encode(testManifest(fixture.name, domain.StatusInProgress, 50))
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		gw.putFile(fixture.path, content)
	}
	// unrelated file that must not be picked up
	gw.putFile("services/auth/config.json", []byte("{}"))

	sc := NewScannerService(store, gw, "")

	result, err := sc.Scan(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.ManifestsFound != 2 {
		t.Errorf("ManifestsFound = %d, want 2", result.ManifestsFound)
	}
	if result.Created != 2 || result.Updated != 0 {
		t.Errorf("Created/Updated = %d/%d, want 2/0", result.Created, result.Updated)
	}

	services, err := store.ListServicesByRepository(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("ListServicesByRepository: %v", err)
	}
	if len(services) != 2 {
		t.Fatalf("tracked services = %d, want 2", len(services))
	}

	// a rescan of the unchanged repository refreshes, never duplicates
	result, err = sc.Scan(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if result.Created != 0 || result.Updated != 2 {
		t.Errorf("rescan Created/Updated = %d/%d, want 0/2", result.Created, result.Updated)
	}
	services, _ = store.ListServicesByRepository(context.Background(), repo.ID)
	if len(services) != 2 {
		t.Errorf("tracked services after rescan = %d, want 2", len(services))
	}
}

func TestScanRemoteWinsOverLocalState(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	repo := store.addRepository(domain.Repository{Owner: "acme", Name: "platform", Active: true})

	m := testManifest("auth-service", domain.StatusInProgress, 40)
	content, err := manifest.Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw.putFile("vibe.json", content)

	stale := &domain.TrackedService{RepositoryID: repo.ID, ManifestPath: "vibe.json"}
	staleManifest := m
	staleManifest.Status = domain.StatusDone
	staleManifest.Progress = 100
	stale.ApplyManifest(staleManifest)
	stale = store.addService(*stale)

	sc := NewScannerService(store, gw, "")
	if _, err := sc.Scan(context.Background(), repo.ID); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	refreshed, err := store.GetServiceByID(context.Background(), stale.ID)
	if err != nil {
		t.Fatalf("GetServiceByID: %v", err)
	}
	if refreshed.Status != domain.StatusInProgress || refreshed.Progress != 40 {
		t.Errorf("service = %q/%d, want remote values In Progress/40", refreshed.Status, refreshed.Progress)
	}
}

func TestScanReportsInvalidManifestsAndContinues(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	repo := store.addRepository(domain.Repository{Owner: "acme", Name: "platform", Active: true})

	content, err := manifest.Encode(testManifest("auth-service", domain.StatusTesting, 90))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw.putFile("services/auth/vibe.json", content)
	gw.putFile("services/billing/vibe.json", []byte(`{"serviceName":"billing","status":"Shipped"}`))

	sc := NewScannerService(store, gw, "")
	result, err := sc.Scan(context.Background(), repo.ID)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("Created = %d, want 1", result.Created)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "services/billing/vibe.json") {
		t.Errorf("Errors = %v, want one naming the invalid manifest", result.Errors)
	}
	if _, err := store.GetServiceByPath(context.Background(), repo.ID, "services/billing/vibe.json"); err == nil {
		t.Error("invalid manifest must not become a tracked service")
	}
}
