package model

import "time"

// Kind is the content kind of an uploaded document.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Status is the lifecycle position of a document.
type Status string

const (
	StatusProcessing   Status = "processing"
	StatusNeedApproval Status = "need_approval"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusProcessing, StatusNeedApproval, StatusApproved, StatusRejected}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ExtractedData holds the fields pulled out of a document by processing.
type ExtractedData struct {
	Name           string
	PolicyNumber   string
	VIN            string
	ExpirationDate string
}

// Document is a single tracked upload and its review state.
type Document struct {
	ID              string
	Name            string
	Kind            Kind
	SizeMB          float64
	Status          Status
	UploadedAt      time.Time
	SourceURL       string         // opaque; never fetched
	ExtractedData   *ExtractedData // set once the document reached need_approval
	RejectionReason string         // set when Status == rejected
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	if d.ExtractedData != nil {
		ed := *d.ExtractedData
		c.ExtractedData = &ed
	}
	return &c
}

// StatusCounts is the number of documents in each status.
type StatusCounts struct {
	Processing   int
	NeedApproval int
	Approved     int
	Rejected     int
	Total        int
}

// Add counts one document in status s.
func (c *StatusCounts) Add(s Status) {
	switch s {
	case StatusProcessing:
		c.Processing++
	case StatusNeedApproval:
		c.NeedApproval++
	case StatusApproved:
		c.Approved++
	case StatusRejected:
		c.Rejected++
	}
	c.Total++
}

// Of returns the count for status s.
func (c StatusCounts) Of(s Status) int {
	switch s {
	case StatusProcessing:
		return c.Processing
	case StatusNeedApproval:
		return c.NeedApproval
	case StatusApproved:
		return c.Approved
	case StatusRejected:
		return c.Rejected
	}
	return 0
}

// BatchStatus is the derived state of a submission batch.
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
)

// Batch is one successful submission and the documents it created.
type Batch struct {
	ID          string
	ProcessorID string
	SubmittedAt time.Time
	Status      BatchStatus
	Documents   []Document
}

// BatchStatusOf returns completed once every document is terminal.
// An empty batch is completed.
func BatchStatusOf(docs []Document) BatchStatus {
	for _, d := range docs {
		if !d.Status.Terminal() {
			return BatchProcessing
		}
	}
	return BatchCompleted
}
