package tracker_test

import (
	"errors"
	"regexp"
	"testing"

	"intake-go/internal/model"
	"intake-go/internal/testutil"
	"intake-go/internal/tracker"
)

// newTracker returns a tracker over the sample collection.
func newTracker(t *testing.T, random tracker.Random) (*tracker.Tracker, *testutil.StubClock) {
	t.Helper()

	clock := testutil.FixedClock()
	tr := tracker.NewTracker(
		testutil.NewTestStore(t),
		clock,
		random,
		testutil.NewStubIDGenerator(),
		tracker.NewNopLogger(),
		tracker.DefaultOptions(),
	)
	if err := tr.Seed(tracker.SampleDocuments()...); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return tr, clock
}

func mustGet(t *testing.T, tr *tracker.Tracker, id string) model.Document {
	t.Helper()

	doc, err := tr.Get(id)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", id, err)
	}
	return doc
}

func mustDocuments(t *testing.T, tr *tracker.Tracker) []model.Document {
	t.Helper()

	docs, err := tr.Documents()
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	return docs
}

func TestSeed_SampleCollection(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())

	docs := mustDocuments(t, tr)
	wantIDs := []string{"1", "2", "3", "4", "5", "6"}
	if len(docs) != len(wantIDs) {
		t.Fatalf("len(Documents()) = %d, want %d", len(docs), len(wantIDs))
	}
	for i, id := range wantIDs {
		if docs[i].ID != id {
			t.Errorf("Documents()[%d].ID = %s, want %s", i, docs[i].ID, id)
		}
	}

	counts, err := tr.StatusCounts()
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	want := model.StatusCounts{Processing: 2, NeedApproval: 2, Approved: 1, Rejected: 1, Total: 6}
	if counts != want {
		t.Errorf("StatusCounts() = %+v, want %+v", counts, want)
	}

	if got := mustGet(t, tr, "6").RejectionReason; got != "Image quality too low" {
		t.Errorf("doc 6 RejectionReason = %q", got)
	}
}

func TestSeed_RejectsDuplicatesAndUnknownStatus(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())

	if err := tr.Seed(tracker.SampleDocuments()[0]); !errors.Is(err, tracker.ErrDuplicateID) {
		t.Errorf("Seed(duplicate) error = %v, want ErrDuplicateID", err)
	}

	bad := &model.Document{ID: "x", Name: "x.pdf", Kind: model.KindPDF, Status: "archived"}
	if err := tr.Seed(bad); err == nil {
		t.Error("Seed(unknown status) error = nil, want error")
	}
}

func TestTick_AdvancesProcessingOnly(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.AlwaysAdvance())
	before := mustDocuments(t, tr)

	advanced, err := tr.Tick()
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if advanced != 2 {
		t.Errorf("Tick() advanced = %d, want 2", advanced)
	}

	policy := regexp.MustCompile(`^POL-2024-\d{6}$`)
	vin := regexp.MustCompile(`^3VW2A7AU\d{8}$`)

	after := mustDocuments(t, tr)
	for i, doc := range after {
		prev := before[i]
		if prev.Status != model.StatusProcessing {
			if doc.Status != prev.Status || doc.SourceURL != prev.SourceURL {
				t.Errorf("doc %s changed from %s to %s, want unchanged", doc.ID, prev.Status, doc.Status)
			}
			continue
		}

		if doc.Status != model.StatusNeedApproval {
			t.Errorf("doc %s status = %s, want need_approval", doc.ID, doc.Status)
		}
		if doc.ExtractedData == nil {
			t.Fatalf("doc %s has no extracted data", doc.ID)
		}
		if doc.ExtractedData.Name != "Michael Brown" || doc.ExtractedData.ExpirationDate != "2025-06-30" {
			t.Errorf("doc %s extracted data = %+v", doc.ID, doc.ExtractedData)
		}
		if !policy.MatchString(doc.ExtractedData.PolicyNumber) {
			t.Errorf("doc %s policy number = %q", doc.ID, doc.ExtractedData.PolicyNumber)
		}
		if !vin.MatchString(doc.ExtractedData.VIN) {
			t.Errorf("doc %s VIN = %q", doc.ID, doc.ExtractedData.VIN)
		}
		if !doc.UploadedAt.Equal(prev.UploadedAt) {
			t.Errorf("doc %s UploadedAt changed", doc.ID)
		}
	}

	if got := mustGet(t, tr, "1").SourceURL; got != tracker.PlaceholderPDFURL {
		t.Errorf("pdf SourceURL = %q, want %q", got, tracker.PlaceholderPDFURL)
	}
	if got := mustGet(t, tr, "4").SourceURL; got != tracker.PlaceholderImageURL {
		t.Errorf("image SourceURL = %q, want %q", got, tracker.PlaceholderImageURL)
	}
}

func TestTick_ThresholdIsStrict(t *testing.T) {
	t.Parallel()

	// Doc 1 draws exactly p and stays; doc 4 draws just under and advances.
	tr, _ := newTracker(t, testutil.NewSequenceRandom(0.10, 0.0999))

	advanced, err := tr.Tick()
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if advanced != 1 {
		t.Errorf("Tick() advanced = %d, want 1", advanced)
	}
	if got := mustGet(t, tr, "1").Status; got != model.StatusProcessing {
		t.Errorf("doc 1 status = %s, want processing", got)
	}
	if got := mustGet(t, tr, "4").Status; got != model.StatusNeedApproval {
		t.Errorf("doc 4 status = %s, want need_approval", got)
	}
}

func TestTick_NoProcessingIsNoop(t *testing.T) {
	t.Parallel()

	tr := tracker.NewTracker(
		testutil.NewTestStore(t),
		testutil.FixedClock(),
		testutil.AlwaysAdvance(),
		testutil.NewStubIDGenerator(),
		tracker.NewNopLogger(),
		tracker.DefaultOptions(),
	)

	advanced, err := tr.Tick()
	if err != nil || advanced != 0 {
		t.Fatalf("Tick() on empty collection = (%d, %v), want (0, nil)", advanced, err)
	}

	seeded, _ := newTracker(t, testutil.AlwaysAdvance())
	seeded.Reject("1", "")
	seeded.Reject("4", "")
	before := mustDocuments(t, seeded)

	advanced, err = seeded.Tick()
	if err != nil || advanced != 0 {
		t.Fatalf("Tick() with nothing processing = (%d, %v), want (0, nil)", advanced, err)
	}
	after := mustDocuments(t, seeded)
	for i := range before {
		if before[i].Status != after[i].Status {
			t.Errorf("doc %s status changed %s -> %s", before[i].ID, before[i].Status, after[i].Status)
		}
	}
}

func TestTick_ConvergesWithSeededRandom(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, tracker.NewRandom(42))

	for i := 0; i < 1000; i++ {
		if _, err := tr.Tick(); err != nil {
			t.Fatalf("Tick() #%d error = %v", i, err)
		}
	}

	counts, err := tr.StatusCounts()
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	if counts.Processing != 0 {
		t.Errorf("Processing after 1000 ticks = %d, want 0", counts.Processing)
	}
	if counts.NeedApproval != 4 {
		t.Errorf("NeedApproval after 1000 ticks = %d, want 4", counts.NeedApproval)
	}
	for _, id := range []string{"1", "4"} {
		if mustGet(t, tr, id).ExtractedData == nil {
			t.Errorf("doc %s advanced without extracted data", id)
		}
	}
}

func TestApprove_KeepsExtractedData(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())
	before := mustGet(t, tr, "2")

	if err := tr.Approve("2"); err != nil {
		t.Fatalf("Approve(2) error = %v", err)
	}

	doc := mustGet(t, tr, "2")
	if doc.Status != model.StatusApproved {
		t.Errorf("status = %s, want approved", doc.Status)
	}
	if doc.ExtractedData == nil || *doc.ExtractedData != *before.ExtractedData {
		t.Errorf("ExtractedData = %+v, want %+v", doc.ExtractedData, before.ExtractedData)
	}
	if doc.RejectionReason != "" {
		t.Errorf("RejectionReason = %q, want empty", doc.RejectionReason)
	}
}

func TestReject(t *testing.T) {
	t.Parallel()

	t.Run("with reason", func(t *testing.T) {
		t.Parallel()

		tr, _ := newTracker(t, testutil.NeverAdvance())
		if err := tr.Reject("5", "bad scan"); err != nil {
			t.Fatalf("Reject(5) error = %v", err)
		}
		doc := mustGet(t, tr, "5")
		if doc.Status != model.StatusRejected || doc.RejectionReason != "bad scan" {
			t.Errorf("doc 5 = (%s, %q), want (rejected, \"bad scan\")", doc.Status, doc.RejectionReason)
		}
		if doc.ExtractedData == nil {
			t.Error("ExtractedData cleared by rejection")
		}
	})

	t.Run("default reason", func(t *testing.T) {
		t.Parallel()

		tr, _ := newTracker(t, testutil.NeverAdvance())
		if err := tr.Reject("2", ""); err != nil {
			t.Fatalf("Reject(2) error = %v", err)
		}
		if got := mustGet(t, tr, "2").RejectionReason; got != tracker.DefaultRejectionReason {
			t.Errorf("RejectionReason = %q, want %q", got, tracker.DefaultRejectionReason)
		}
	})

	t.Run("from processing", func(t *testing.T) {
		t.Parallel()

		tr, _ := newTracker(t, testutil.NeverAdvance())
		if err := tr.Reject("1", "unreadable"); err != nil {
			t.Fatalf("Reject(1) error = %v", err)
		}
		doc := mustGet(t, tr, "1")
		if doc.Status != model.StatusRejected {
			t.Errorf("status = %s, want rejected", doc.Status)
		}
		if doc.ExtractedData != nil {
			t.Errorf("ExtractedData = %+v, want nil", doc.ExtractedData)
		}
	})
}

func TestNotFound_LeavesCollectionUnchanged(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())
	before := mustDocuments(t, tr)

	if err := tr.Approve("999"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("Approve(999) error = %v, want ErrNotFound", err)
	}
	if err := tr.Reject("999", "x"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("Reject(999) error = %v, want ErrNotFound", err)
	}
	if _, err := tr.Get("999"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("Get(999) error = %v, want ErrNotFound", err)
	}

	after := mustDocuments(t, tr)
	if len(after) != len(before) {
		t.Fatalf("len(Documents()) = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i].Status != after[i].Status {
			t.Errorf("doc %s status changed", before[i].ID)
		}
	}
	if h := tr.History(0); len(h) != 0 {
		t.Errorf("History() = %v, want empty", h)
	}
}

func TestInvalidTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   func(tr *tracker.Tracker) error
		id   string
		from model.Status
	}{
		{"approve processing", func(tr *tracker.Tracker) error { return tr.Approve("1") }, "1", model.StatusProcessing},
		{"approve approved", func(tr *tracker.Tracker) error { return tr.Approve("3") }, "3", model.StatusApproved},
		{"approve rejected", func(tr *tracker.Tracker) error { return tr.Approve("6") }, "6", model.StatusRejected},
		{"reject approved", func(tr *tracker.Tracker) error { return tr.Reject("3", "late") }, "3", model.StatusApproved},
		{"reject rejected", func(tr *tracker.Tracker) error { return tr.Reject("6", "again") }, "6", model.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr, _ := newTracker(t, testutil.NeverAdvance())
			before := mustGet(t, tr, tt.id)

			err := tt.op(tr)
			if !errors.Is(err, tracker.ErrInvalidTransition) {
				t.Fatalf("error = %v, want ErrInvalidTransition", err)
			}
			var terr *tracker.TransitionError
			if !errors.As(err, &terr) || terr.ID != tt.id || terr.From != tt.from {
				t.Errorf("error = %#v, want TransitionError{ID: %s, From: %s}", err, tt.id, tt.from)
			}

			after := mustGet(t, tr, tt.id)
			if after.Status != before.Status || after.RejectionReason != before.RejectionReason {
				t.Errorf("doc %s mutated: %+v -> %+v", tt.id, before, after)
			}
		})
	}
}

func TestStatusCounts_SumsToTotal(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NewSequenceRandom(0.05, 0.5))
	tr.Tick()
	tr.Approve("2")
	tr.Reject("4", "")
	tr.Ingest(tracker.Upload{Name: "new.pdf", Kind: model.KindPDF, SizeBytes: 1024})

	counts, err := tr.StatusCounts()
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	sum := 0
	for _, s := range model.Statuses {
		sum += counts.Of(s)
	}
	if sum != counts.Total {
		t.Errorf("sum of per-status counts = %d, Total = %d", sum, counts.Total)
	}
	if docs := mustDocuments(t, tr); counts.Total != len(docs) {
		t.Errorf("Total = %d, want %d", counts.Total, len(docs))
	}
}

func TestGroupByStatus(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())

	groups, err := tr.GroupByStatus()
	if err != nil {
		t.Fatalf("GroupByStatus() error = %v", err)
	}

	want := map[model.Status][]string{
		model.StatusProcessing:   {"1", "4"},
		model.StatusNeedApproval: {"2", "5"},
		model.StatusApproved:     {"3"},
		model.StatusRejected:     {"6"},
	}
	for status, ids := range want {
		got := groups[status]
		if len(got) != len(ids) {
			t.Errorf("group %s has %d docs, want %d", status, len(got), len(ids))
			continue
		}
		for i, id := range ids {
			if got[i].ID != id {
				t.Errorf("group %s[%d] = %s, want %s", status, i, got[i].ID, id)
			}
		}
	}
}

func TestGroupByStatus_EmptyGroupsPresent(t *testing.T) {
	t.Parallel()

	tr := tracker.NewTracker(
		testutil.NewTestStore(t),
		testutil.FixedClock(),
		testutil.NeverAdvance(),
		testutil.NewStubIDGenerator(),
		tracker.NewNopLogger(),
		tracker.Options{},
	)

	groups, err := tr.GroupByStatus()
	if err != nil {
		t.Fatalf("GroupByStatus() error = %v", err)
	}
	for _, s := range model.Statuses {
		got, ok := groups[s]
		if !ok || got == nil || len(got) != 0 {
			t.Errorf("groups[%s] = %v (present %v), want empty non-nil slice", s, got, ok)
		}
	}
}

func TestIngest(t *testing.T) {
	t.Parallel()

	tr, clock := newTracker(t, testutil.NeverAdvance())

	created, err := tr.Ingest(
		tracker.Upload{Name: "scan.png", Kind: model.KindImage, SizeBytes: 512 * 1024},
		tracker.Upload{Name: "policy.pdf", Kind: model.KindPDF, SizeBytes: 256 * 1024},
	)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("len(created) = %d, want 2", len(created))
	}

	first := created[0]
	if first.ID != "id-1" || first.Status != model.StatusProcessing {
		t.Errorf("created[0] = (%s, %s), want (id-1, processing)", first.ID, first.Status)
	}
	if first.SizeMB != 0.5 {
		t.Errorf("created[0].SizeMB = %v, want 0.5", first.SizeMB)
	}
	if !first.UploadedAt.Equal(clock.Now()) {
		t.Errorf("created[0].UploadedAt = %v, want %v", first.UploadedAt, clock.Now())
	}
	if first.ExtractedData != nil {
		t.Errorf("created[0].ExtractedData = %+v, want nil", first.ExtractedData)
	}

	docs := mustDocuments(t, tr)
	if len(docs) != 8 || docs[6].ID != "id-1" || docs[7].ID != "id-2" {
		t.Errorf("ingested docs not appended in order: %d docs", len(docs))
	}
}

func TestDocuments_ReturnsCopies(t *testing.T) {
	t.Parallel()

	tr, _ := newTracker(t, testutil.NeverAdvance())

	docs := mustDocuments(t, tr)
	docs[1].Status = model.StatusApproved
	docs[1].ExtractedData.Name = "Mallory"

	doc := mustGet(t, tr, "2")
	if doc.Status != model.StatusNeedApproval || doc.ExtractedData.Name != "John Smith" {
		t.Errorf("caller mutation leaked into tracker: %+v", doc)
	}
}
