package entity

// Manifest is one immutable snapshot of the passenger roster.
// Records are in display order, newest ingestions first.
// A committed Manifest must never be modified; derive a new one instead.
type Manifest struct {
	Records []PassengerRecord `json:"records"`
}

// Len returns the number of records, treating a nil manifest as empty
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Records)
}

// IndexOf returns the position of the record with the given id, or -1
func (m *Manifest) IndexOf(id string) int {
	if m == nil {
		return -1
	}
	for i := range m.Records {
		if m.Records[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneRecords returns a copy of the record slice that is safe to modify
func (m *Manifest) CloneRecords() []PassengerRecord {
	if m == nil {
		return nil
	}
	out := make([]PassengerRecord, len(m.Records))
	copy(out, m.Records)
	return out
}

// HistoryState describes undo/redo availability for clients
type HistoryState struct {
	CanUndo     bool `json:"canUndo"`
	CanRedo     bool `json:"canRedo"`
	PastDepth   int  `json:"pastDepth"`
	FutureDepth int  `json:"futureDepth"`
}
