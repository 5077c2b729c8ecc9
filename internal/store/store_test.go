package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/veilmark/semdom/audit"
	"github.com/veilmark/semdom/delegate"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(id string, generatedAt int64) *audit.Report {
	return &audit.Report{
		ID:          id,
		GeneratedAt: generatedAt,
		Policy:      delegate.DefaultPolicy(),
		ShadowRoots: []audit.ShadowRootInfo{
			{HostPath: "/html/body/x-field", HostTag: "x-field", Mode: "open", State: audit.StateSet, DelegateID: "i"},
		},
		Summary: audit.Summary{ShadowRoots: 1, Delegates: 1},
	}
}

func TestStore_InsertGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	want := sampleReport("rep_1", 1000)
	if err := s.InsertReport(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetReport(ctx, "rep_1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("report not found")
	}
	if got.ID != want.ID || got.GeneratedAt != want.GeneratedAt {
		t.Errorf("round trip: got %+v", got)
	}
	if len(got.ShadowRoots) != 1 || got.ShadowRoots[0].DelegateID != "i" {
		t.Errorf("body round trip: got %+v", got.ShadowRoots)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTest(t)
	got, err := s.GetReport(context.Background(), "rep_none")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("missing report: got %+v, want nil", got)
	}
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.InsertReport(ctx, sampleReport("rep_dup", 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertReport(ctx, sampleReport("rep_dup", 2)); err == nil {
		t.Error("duplicate primary key: expected error")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for i, id := range []string{"rep_a", "rep_b", "rep_c"} {
		if err := s.InsertReport(ctx, sampleReport(id, int64(100+i))); err != nil {
			t.Fatal(err)
		}
	}

	metas, err := s.ListReports(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 {
		t.Fatalf("limit: got %d entries", len(metas))
	}
	if metas[0].ID != "rep_c" || metas[1].ID != "rep_b" {
		t.Errorf("order: got %s, %s", metas[0].ID, metas[1].ID)
	}
	if metas[0].ShadowRoots != 1 || metas[0].Delegates != 1 {
		t.Errorf("meta counts: got %+v", metas[0])
	}
}
