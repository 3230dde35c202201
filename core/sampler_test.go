package core

import "testing"

func TestShouldEmit(t *testing.T) {
	cases := []struct {
		name           string
		time, simTime  float64
		emitted, total int
		want           bool
	}{
		{"start", 0, 100, 1, 10, false},
		{"below threshold", 10, 100, 1, 10, false},
		{"past threshold", 10.5, 100, 1, 10, true},
		{"budget used", 99, 100, 10, 10, false},
		{"zero simulation time", 5, 0, 0, 10, false},
		{"zero budget", 5, 100, 0, 0, false},
	}
	for _, c := range cases {
		if got := ShouldEmit(c.time, c.simTime, c.emitted, c.total); got != c.want {
			t.Fatalf("%s: ShouldEmit = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestShouldEmit_SweepStaysWithinOneOfBudget(t *testing.T) {
	for _, tc := range []struct {
		simTime, step float64
		points        int
	}{
		{86400, 1, 1000},
		{1000, 0.5, 37},
		{500, 3, 100},
		{10, 1, 1},
	} {
		emitted := 1 // the point at time zero
		for now := 0.0; now <= tc.simTime; now += tc.step {
			if ShouldEmit(now, tc.simTime, emitted, tc.points) {
				emitted++
			}
		}
		if diff := emitted - tc.points; diff < -1 || diff > 1 {
			t.Fatalf("T=%v dt=%v P=%d: emitted %d points", tc.simTime, tc.step, tc.points, emitted)
		}
	}
}
