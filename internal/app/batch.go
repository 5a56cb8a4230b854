package app

import (
	"fmt"
	"sync"
	"time"
)

type batchRecord struct {
	id          string
	processorID string
	submittedAt time.Time
	documentIDs []string
}

// batchLog remembers each successful submission in the order it happened.
type batchLog struct {
	mu      sync.Mutex
	records []batchRecord
}

// record appends a batch for docIDs and returns its processor ID.
func (l *batchLog) record(id string, at time.Time, docIDs []string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	processorID := fmt.Sprintf("PROC%03d", len(l.records)+1)
	l.records = append(l.records, batchRecord{
		id:          id,
		processorID: processorID,
		submittedAt: at,
		documentIDs: append([]string(nil), docIDs...),
	})
	return processorID
}

func (l *batchLog) snapshot() []batchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]batchRecord(nil), l.records...)
}
