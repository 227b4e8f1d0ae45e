package app

import (
	"testing"

	"github.com/KhoaTranProgrammer/Common-Topics/app/models"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		delta int
		want  models.Verdict
	}{
		{100000, models.Good},
		{50, models.Good},
		{49, models.Neutral},
		{0, models.Neutral},
		{-49, models.Neutral},
		{-50, models.Inaccuracy},
		{-51, models.Inaccuracy},
		{-99, models.Inaccuracy},
		{-100, models.Mistake},
		{-101, models.Mistake},
		{-199, models.Mistake},
		{-200, models.Blunder},
		{-201, models.Blunder},
		{-100000, models.Blunder},
	}
	for _, tc := range cases {
		if got := Classify(tc.delta, DefaultThresholds); got != tc.want {
			t.Fatalf("Classify(%d) = %s, want %s", tc.delta, got, tc.want)
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	for _, d := range []int{-300, -150, -75, 0, 75} {
		first := Classify(d, DefaultThresholds)
		for i := 0; i < 3; i++ {
			if got := Classify(d, DefaultThresholds); got != first {
				t.Fatalf("Classify(%d) changed from %s to %s", d, first, got)
			}
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	strict := Thresholds{Good: 20, Inaccuracy: -20, Mistake: -60, Blunder: -120}
	if got := Classify(-60, strict); got != models.Mistake {
		t.Fatalf("Classify(-60, strict) = %s, want Mistake", got)
	}
	if got := Classify(25, strict); got != models.Good {
		t.Fatalf("Classify(25, strict) = %s, want Good", got)
	}
	if got := Classify(-130, strict); got != models.Blunder {
		t.Fatalf("Classify(-130, strict) = %s, want Blunder", got)
	}
}

func TestVerdictNamesRoundTrip(t *testing.T) {
	for _, v := range models.AllVerdicts {
		got, ok := models.ParseVerdict(v.String())
		if !ok || got != v {
			t.Fatalf("ParseVerdict(%q) = (%v,%v)", v.String(), got, ok)
		}
	}
	if _, ok := models.ParseVerdict("Brilliant"); ok {
		t.Fatalf("ParseVerdict should reject unknown names")
	}
}
