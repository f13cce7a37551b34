package livequery

import (
	"testing"
	"time"
)

type regRow struct {
	tournamentID string
	status       string
}

func TestCountByForeignKey(t *testing.T) {
	rows := []regRow{
		{"t1", "approved"},
		{"t1", "approved"},
		{"t1", "pending"},
		{"t2", "approved"},
		{"t3", "rejected"},
	}
	keyOf := func(r regRow) string { return r.tournamentID }
	approved := func(r regRow) bool { return r.status == "approved" }

	counts := CountByForeignKey(rows, keyOf, approved)

	if counts["t1"] != 2 {
		t.Errorf("t1 = %d, want 2", counts["t1"])
	}
	if counts["t2"] != 1 {
		t.Errorf("t2 = %d, want 1", counts["t2"])
	}
	// Группа без одобренных строк в карте отсутствует, отсутствие = 0.
	if _, ok := counts["t3"]; ok {
		t.Errorf("t3 present in counts, want absent")
	}
}

func TestCountByForeignKeyNilInclude(t *testing.T) {
	rows := []regRow{{"t1", "pending"}, {"t1", "rejected"}, {"t2", "approved"}}
	counts := CountByForeignKey(rows, func(r regRow) string { return r.tournamentID }, nil)

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != len(rows) {
		t.Errorf("sum of counts = %d, want %d", total, len(rows))
	}
	if counts["t1"] != 2 {
		t.Errorf("t1 = %d, want 2", counts["t1"])
	}
}

func TestCountByForeignKeyEmpty(t *testing.T) {
	counts := CountByForeignKey(nil, func(r regRow) string { return r.tournamentID }, nil)
	if len(counts) != 0 {
		t.Errorf("counts = %v, want empty", counts)
	}
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		name    string
		wins    int
		matches int
		want    float64
	}{
		{"NoMatches", 0, 0, 0},
		{"NoMatchesWithWins", 3, 0, 0},
		{"Half", 1, 2, 50},
		{"All", 4, 4, 100},
		{"Third", 1, 3, 100.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WinRate(tt.wins, tt.matches); got != tt.want {
				t.Errorf("WinRate(%d, %d) = %v, want %v", tt.wins, tt.matches, got, tt.want)
			}
		})
	}
}

func TestTotalPoints(t *testing.T) {
	if got := TotalPoints(120, 45); got != 165 {
		t.Errorf("TotalPoints(120, 45) = %d, want 165", got)
	}
	if TotalPoints(3, 7) != TotalPoints(7, 3) {
		t.Error("TotalPoints is not symmetric")
	}
	if got := TotalPoints(0, 0); got != 0 {
		t.Errorf("TotalPoints(0, 0) = %d, want 0", got)
	}
}

type datedRow struct{ at time.Time }

func TestBucketByMonth(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	rows := []datedRow{
		{time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.January, 30, 23, 59, 0, 0, time.UTC)},
		{time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
		// Вне окна: слишком старое и будущий месяц.
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := BucketByMonth(rows, func(r datedRow) time.Time { return r.at }, now, 3)

	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}
	wantLabels := []string{"Jan", "Feb", "Mar"}
	wantCounts := []int{2, 0, 1}
	for i := range buckets {
		if buckets[i].Label != wantLabels[i] {
			t.Errorf("bucket[%d].Label = %q, want %q", i, buckets[i].Label, wantLabels[i])
		}
		if buckets[i].Count != wantCounts[i] {
			t.Errorf("bucket[%d].Count = %d, want %d", i, buckets[i].Count, wantCounts[i])
		}
	}
}

func TestBucketByMonthYearBoundary(t *testing.T) {
	now := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	rows := []datedRow{
		{time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := BucketByMonth(rows, func(r datedRow) time.Time { return r.at }, now, 3)

	wantLabels := []string{"Nov", "Dec", "Jan"}
	for i := range buckets {
		if buckets[i].Label != wantLabels[i] {
			t.Errorf("bucket[%d].Label = %q, want %q", i, buckets[i].Label, wantLabels[i])
		}
		if buckets[i].Count != 1 {
			t.Errorf("bucket[%d].Count = %d, want 1", i, buckets[i].Count)
		}
	}
}

func TestBucketByMonthNoRows(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	buckets := BucketByMonth(nil, func(r datedRow) time.Time { return r.at }, now, 3)

	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}
	for i, b := range buckets {
		if b.Count != 0 {
			t.Errorf("bucket[%d].Count = %d, want 0", i, b.Count)
		}
	}
}

func TestBucketByMonthZeroMonths(t *testing.T) {
	if got := BucketByMonth(nil, func(r datedRow) time.Time { return r.at }, time.Now(), 0); got != nil {
		t.Errorf("BucketByMonth with months=0 = %v, want nil", got)
	}
}
