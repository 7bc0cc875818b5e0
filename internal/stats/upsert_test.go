package stats

import (
	"sync"
	"testing"
)

func TestUpsertStatsCounters(t *testing.T) {
	s := NewUpsertStats()

	s.RecordInsert()
	s.RecordInsert()
	s.RecordUpdate()
	s.RecordSkip()

	if got := s.Inserted(); got != 2 {
		t.Errorf("Inserted() = %d, want 2", got)
	}
	if got := s.Updated(); got != 1 {
		t.Errorf("Updated() = %d, want 1", got)
	}
	if got := s.Skipped(); got != 1 {
		t.Errorf("Skipped() = %d, want 1", got)
	}
	if got := s.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
}

func TestUpsertStatsRecord(t *testing.T) {
	s := NewUpsertStats()
	s.Record(true)
	s.Record(false)
	s.Record(false)

	if s.Inserted() != 1 || s.Updated() != 2 {
		t.Errorf("Record() counters = (%d, %d), want (1, 2)", s.Inserted(), s.Updated())
	}
}

func TestUpsertStatsReset(t *testing.T) {
	s := NewUpsertStats()
	s.RecordInsert()
	s.RecordUpdate()
	s.RecordSkip()
	s.Reset()

	if s.Total() != 0 || s.Skipped() != 0 {
		t.Errorf("after Reset: total=%d skipped=%d, want 0", s.Total(), s.Skipped())
	}
}

func TestUpsertStatsString(t *testing.T) {
	s := NewUpsertStats()
	s.RecordInsert()
	want := "inserted=1 updated=0 skipped=0 total=1"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUpsertStatsConcurrent(t *testing.T) {
	s := NewUpsertStats()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordInsert()
				s.RecordUpdate()
			}
		}()
	}
	wg.Wait()

	if got := s.Total(); got != 2000 {
		t.Errorf("Total() = %d, want 2000", got)
	}
}
