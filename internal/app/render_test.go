package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"intake-go/internal/model"
	"intake-go/internal/tracker"
)

func TestRenderGroups_SkipsEmptyStatuses(t *testing.T) {
	groups := map[model.Status][]model.Document{
		model.StatusProcessing:   {{ID: "1", Name: "a.pdf", SizeMB: 0.5}},
		model.StatusNeedApproval: {},
		model.StatusApproved:     {},
		model.StatusRejected:     {{ID: "2", Name: "b.png", SizeMB: 0.25}},
	}

	var buf bytes.Buffer
	RenderGroups(&buf, groups)
	out := buf.String()

	if !strings.Contains(out, "Processing (1)\n") || !strings.Contains(out, "Rejected (1)\n") {
		t.Errorf("missing group headings:\n%s", out)
	}
	if strings.Contains(out, "Need approval") || strings.Contains(out, "Approved") {
		t.Errorf("empty groups rendered:\n%s", out)
	}
	if strings.Index(out, "Processing") > strings.Index(out, "Rejected") {
		t.Errorf("groups out of lifecycle order:\n%s", out)
	}
}

func TestRenderDocument(t *testing.T) {
	doc := model.Document{
		ID:              "6",
		Name:            "passport_scan.jpg",
		Kind:            model.KindImage,
		SizeMB:          0.56,
		Status:          model.StatusRejected,
		UploadedAt:      time.Date(2024, 1, 15, 10, 10, 0, 0, time.UTC),
		RejectionReason: "Image quality too low",
	}

	var buf bytes.Buffer
	RenderDocument(&buf, doc)
	out := buf.String()

	for _, want := range []string{"passport_scan.jpg", "0.56 MB", "2024-01-15 10:10:00", "Image quality too low"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Policy number") {
		t.Errorf("rendered extracted data for a document without any:\n%s", out)
	}
}

func TestRenderDocuments_ShortensLongIDs(t *testing.T) {
	docs := []model.Document{{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Name: "scan.png", Kind: model.KindImage, Status: model.StatusProcessing}}

	var buf bytes.Buffer
	RenderDocuments(&buf, docs)

	if !strings.Contains(buf.String(), "0f8fad5b  ") || strings.Contains(buf.String(), "d9cb") {
		t.Errorf("output = %q, want the 8-character id prefix", buf.String())
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderDocuments(&buf, nil)
	RenderPending(&buf, nil)
	RenderHistory(&buf, []tracker.Event{})
	RenderBatches(&buf, nil)

	if got, want := buf.String(), "No documents.\nNo files pending.\nNo history.\nNo batches.\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRenderBatches(t *testing.T) {
	batches := []model.Batch{{
		ID:          "b1",
		ProcessorID: "PROC001",
		SubmittedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:      model.BatchCompleted,
		Documents: []model.Document{
			{ID: "1", Name: "Invoice_2024_001.pdf", Status: model.StatusApproved},
			{ID: "2", Name: "Contract_2024_001.pdf", Status: model.StatusRejected},
		},
	}}

	var buf bytes.Buffer
	RenderBatches(&buf, batches)
	out := buf.String()

	for _, want := range []string{"PROC001", "2024-06-01 09:00:00", "completed", "2 document(s)", "Invoice_2024_001.pdf", "rejected"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "PROC001") > strings.Index(out, "Invoice_2024_001.pdf") {
		t.Errorf("documents rendered before their batch:\n%s", out)
	}
}
