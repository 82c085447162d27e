package pattern

import (
	"context"
	"testing"
)

func TestScanCountsEachPatternKind(t *testing.T) {
	d := New()
	text := "Contact jane@example.com or 555-123-4567, SSN 123-45-6789, server 10.0.0.1"

	counters, err := d.Scan(context.Background(), text)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if counters.Email != 1 {
		t.Errorf("Email = %d, want 1", counters.Email)
	}
	if counters.Phone != 1 {
		t.Errorf("Phone = %d, want 1", counters.Phone)
	}
	if counters.SSN != 1 {
		t.Errorf("SSN = %d, want 1", counters.SSN)
	}
	if counters.IPAddress != 1 {
		t.Errorf("IPAddress = %d, want 1", counters.IPAddress)
	}
}

func TestScanOnCleanTextReturnsZeroCounters(t *testing.T) {
	d := New()
	counters, err := d.Scan(context.Background(), "nothing sensitive in here at all")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if counters.SSN != 0 || counters.CreditCard != 0 || counters.Email != 0 || counters.Phone != 0 || counters.IPAddress != 0 {
		t.Fatalf("expected all-zero counters, got %+v", counters)
	}
}

func TestScanNeverErrors(t *testing.T) {
	d := New()
	if _, err := d.Scan(context.Background(), ""); err != nil {
		t.Fatalf("Scan on empty text returned error: %v", err)
	}
}
