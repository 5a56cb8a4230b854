package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"intake-go/internal/intake"
	"intake-go/internal/model"
	"intake-go/internal/tracker"
)

const timeLayout = "2006-01-02 15:04:05"

// statusLabels are the section headings used when listing by status.
var statusLabels = map[model.Status]string{
	model.StatusProcessing:   "Processing",
	model.StatusNeedApproval: "Need approval",
	model.StatusApproved:     "Approved",
	model.StatusRejected:     "Rejected",
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderCounts writes the one-line status summary.
func RenderCounts(w io.Writer, c model.StatusCounts) {
	fmt.Fprintf(w, "processing: %d  need_approval: %d  approved: %d  rejected: %d  total: %d\n",
		c.Processing, c.NeedApproval, c.Approved, c.Rejected, c.Total)
}

// RenderDocuments writes docs as a table in the given order.
func RenderDocuments(w io.Writer, docs []model.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tSIZE\tSTATUS\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f MB\t%s\t%s\n",
			shortID(d.ID), d.Name, d.Kind, d.SizeMB, d.Status, d.UploadedAt.Format(timeLayout))
	}
	tw.Flush()
}

// RenderGroups writes one section per status in lifecycle order, skipping empty ones.
func RenderGroups(w io.Writer, groups map[model.Status][]model.Document) {
	for _, s := range model.Statuses {
		docs := groups[s]
		if len(docs) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", statusLabels[s], len(docs))
		tw := newTable(w)
		for _, d := range docs {
			fmt.Fprintf(tw, "  %s\t%s\t%.2f MB\n", shortID(d.ID), d.Name, d.SizeMB)
		}
		tw.Flush()
	}
}

// RenderDocument writes the detail view of a single document.
func RenderDocument(w io.Writer, d model.Document) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", d.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", d.Name)
	fmt.Fprintf(tw, "Kind:\t%s\n", d.Kind)
	fmt.Fprintf(tw, "Size:\t%.2f MB\n", d.SizeMB)
	fmt.Fprintf(tw, "Status:\t%s\n", d.Status)
	fmt.Fprintf(tw, "Uploaded:\t%s\n", d.UploadedAt.Format(timeLayout))
	if d.SourceURL != "" {
		fmt.Fprintf(tw, "Source:\t%s\n", d.SourceURL)
	}
	if d.RejectionReason != "" {
		fmt.Fprintf(tw, "Rejection reason:\t%s\n", d.RejectionReason)
	}
	if ed := d.ExtractedData; ed != nil {
		fmt.Fprintf(tw, "Extracted name:\t%s\n", ed.Name)
		fmt.Fprintf(tw, "Policy number:\t%s\n", ed.PolicyNumber)
		fmt.Fprintf(tw, "VIN:\t%s\n", ed.VIN)
		fmt.Fprintf(tw, "Expiration date:\t%s\n", ed.ExpirationDate)
	}
	tw.Flush()
}

// RenderPending writes the files waiting for submission.
func RenderPending(w io.Writer, files []intake.File) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files pending.")
		return
	}

	tw := newTable(w)
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%.2f MB\n", f.Name, f.ContentType, float64(f.Size)/(1024*1024))
	}
	tw.Flush()
}

// RenderBatches writes each submission batch followed by its documents.
func RenderBatches(w io.Writer, batches []model.Batch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No batches.")
		return
	}

	tw := newTable(w)
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d document(s)\n",
			b.ProcessorID, b.SubmittedAt.Format(timeLayout), b.Status, len(b.Documents))
		for _, d := range b.Documents {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", shortID(d.ID), d.Name, d.Status)
		}
	}
	tw.Flush()
}

// RenderHistory writes tracker events, newest first.
func RenderHistory(w io.Writer, events []tracker.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No history.")
		return
	}

	tw := newTable(w)
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.At.Format(timeLayout), ev.Type, shortID(ev.DocumentID), ev.Reason)
	}
	tw.Flush()
}

// shortID trims UUIDs to a readable prefix. Any unique prefix is accepted
// back by the session.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
