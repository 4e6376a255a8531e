package models

import (
	"testing"
	"time"
)

func TestDrawIDAt_SameHour(t *testing.T) {
	t1 := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 6, 1, 13, 59, 59, 999999999, time.UTC)
	if DrawIDAt(t1) != DrawIDAt(t2) {
		t.Errorf("instants in the same hour produced different ids: %s vs %s", DrawIDAt(t1), DrawIDAt(t2))
	}
	if got := DrawIDAt(t1); got != "2024060113" {
		t.Errorf("DrawIDAt returned %q, wanted %q", got, "2024060113")
	}
}

func TestDrawIDAt_ConsecutiveHoursOrdered(t *testing.T) {
	t1 := time.Date(2024, 6, 1, 13, 30, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	id1, id2 := DrawIDAt(t1), DrawIDAt(t2)
	if id1 == id2 {
		t.Fatalf("different hours produced the same id %q", id1)
	}
	if !(id2 > id1) {
		t.Errorf("later hour id %q does not compare greater than %q", id2, id1)
	}
}

func TestDrawIDAt_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	local := time.Date(2024, 6, 1, 14, 10, 0, 0, loc) // 13:10 UTC
	if got := DrawIDAt(local); got != "2024060113" {
		t.Errorf("DrawIDAt for zoned time returned %q, wanted %q", got, "2024060113")
	}
}

func TestHourWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 42, 7, 123, time.UTC)
	start, end := HourWindow(now)
	if want := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("window start %v, wanted %v", start, want)
	}
	if want := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("window end %v, wanted %v", end, want)
	}
}

func TestParseDrawID_RoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 13, 42, 0, 0, time.UTC)
	start, err := ParseDrawID(DrawIDAt(now))
	if err != nil {
		t.Fatalf("ParseDrawID returned error: %v", err)
	}
	wantStart, _ := HourWindow(now)
	if !start.Equal(wantStart) {
		t.Errorf("parsed start %v, wanted %v", start, wantStart)
	}
}

func TestParseDrawID_Invalid(t *testing.T) {
	if _, err := ParseDrawID("not-a-draw"); err == nil {
		t.Error("expected an error for a malformed draw id")
	}
}

func TestDraw_IsClosed(t *testing.T) {
	d := Draw{Status: DrawStatusOpen}
	if d.IsClosed() {
		t.Error("open draw reported closed")
	}
	d.Status = DrawStatusClosed
	if !d.IsClosed() {
		t.Error("closed draw reported open")
	}
}
