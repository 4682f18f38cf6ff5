package spam

import (
	"testing"
	"time"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestRecordAndCheck_TripsAtThreshold(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 5, Interval: 30 * time.Second}

	for i := 0; i < 4; i++ {
		now := base.Add(time.Duration(i*5) * time.Second)
		if tr.RecordAndCheck(1, 2, Link, now, th, 1) {
			t.Fatalf("tripped early at record %d", i+1)
		}
	}
	if !tr.RecordAndCheck(1, 2, Link, base.Add(20*time.Second), th, 1) {
		t.Fatal("expected trip on 5th record within the window")
	}
}

func TestRecordAndCheck_SpacedNeverTrips(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 5, Interval: 30 * time.Second}

	for i := 0; i < 20; i++ {
		now := base.Add(time.Duration(i*40) * time.Second)
		if tr.RecordAndCheck(1, 2, Link, now, th, 1) {
			t.Fatalf("tripped at record %d despite 40s spacing", i+1)
		}
	}
}

func TestRecordAndCheck_WeightedContribution(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 10, Interval: time.Minute}

	if tr.RecordAndCheck(1, 2, Emoji, base, th, 6) {
		t.Fatal("6 of 10 must not trip")
	}
	if !tr.RecordAndCheck(1, 2, Emoji, base.Add(time.Second), th, 4) {
		t.Fatal("6+4 within the window must trip")
	}
}

func TestRecordAndCheck_KeysAreIndependent(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 2, Interval: time.Minute}

	tr.RecordAndCheck(1, 2, Link, base, th, 1)
	if tr.RecordAndCheck(1, 3, Link, base, th, 1) {
		t.Error("different user must have its own window")
	}
	if tr.RecordAndCheck(9, 2, Link, base, th, 1) {
		t.Error("different guild must have its own window")
	}
	if tr.RecordAndCheck(1, 2, Mention, base, th, 1) {
		t.Error("different kind must have its own window")
	}
}

func TestRecordDuplicate(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 3, Interval: time.Minute}

	same := Fingerprint("Buy now!!")
	other := Fingerprint("something else")

	if tr.RecordDuplicate(1, 2, base, th, same) {
		t.Fatal("first occurrence must not trip")
	}
	if tr.RecordDuplicate(1, 2, base.Add(time.Second), th, other) {
		t.Fatal("unrelated content must start its own chain")
	}
	if tr.RecordDuplicate(1, 2, base.Add(2*time.Second), th, same) {
		t.Fatal("second occurrence must not trip at count 3")
	}
	if !tr.RecordDuplicate(1, 2, base.Add(3*time.Second), th, same) {
		t.Fatal("third occurrence within the window must trip")
	}
}

func TestFingerprint_Normalization(t *testing.T) {
	if Fingerprint("Buy  NOW") != Fingerprint("buy now") {
		t.Error("case and spacing must not change the fingerprint")
	}
	if Fingerprint("buy now") == Fingerprint("buy later") {
		t.Error("different content must fingerprint differently")
	}
}

func TestReap(t *testing.T) {
	tr := NewTracker()
	th := Threshold{Count: 5, Interval: 30 * time.Second}

	tr.RecordAndCheck(1, 2, Link, base, th, 1)
	tr.RecordAndCheck(1, 3, Link, base.Add(9*time.Minute), th, 1)
	if got := tr.ActiveKeys(); got != 2 {
		t.Fatalf("ActiveKeys = %d, want 2", got)
	}

	reaped := tr.Reap(base.Add(10*time.Minute), 5*time.Minute)
	if reaped != 1 {
		t.Fatalf("Reap = %d, want 1", reaped)
	}
	if got := tr.ActiveKeys(); got != 1 {
		t.Fatalf("ActiveKeys after reap = %d, want 1", got)
	}
}
