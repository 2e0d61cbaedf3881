package tableau

import (
	"math"
	"testing"
)

func allTableaus() []*Tableau {
	return []*Tableau{DormandPrince54(), Fehlberg45(), BogackiShampine23()}
}

func TestWeightsSumToOne(t *testing.T) {
	for _, tab := range allTableaus() {
		sum := 0.0
		for _, b := range tab.B {
			sum += b
		}
		if math.Abs(sum-1.0) > 1e-14 {
			t.Errorf("%s: propagation weights sum to %v, want 1", tab.Name, sum)
		}
	}
}

func TestErrorWeightsSumToZero(t *testing.T) {
	// B and B* both sum to one, so E = B - B* must sum to zero.
	for _, tab := range allTableaus() {
		sum := 0.0
		for _, e := range tab.E {
			sum += e
		}
		if math.Abs(sum) > 1e-14 {
			t.Errorf("%s: error weights sum to %v, want 0", tab.Name, sum)
		}
	}
}

func TestRowSumsMatchNodes(t *testing.T) {
	// Consistency condition: sum of row i of A equals c_i.
	for _, tab := range allTableaus() {
		for i := 1; i < tab.Stages(); i++ {
			sum := 0.0
			for _, a := range tab.A[i] {
				sum += a
			}
			if math.Abs(sum-tab.C[i]) > 1e-12 {
				t.Errorf("%s: row %d sums to %v, want c=%v", tab.Name, i, sum, tab.C[i])
			}
		}
	}
}

func TestExplicitShape(t *testing.T) {
	for _, tab := range allTableaus() {
		if tab.A[0] != nil {
			t.Errorf("%s: first A row must be empty", tab.Name)
		}
		for i := 1; i < tab.Stages(); i++ {
			if len(tab.A[i]) != i {
				t.Errorf("%s: A row %d has %d entries, want %d", tab.Name, i, len(tab.A[i]), i)
			}
		}
		if len(tab.B) != tab.Stages() || len(tab.E) != tab.Stages() {
			t.Errorf("%s: weight vector lengths do not match stage count", tab.Name)
		}
	}
}

func TestFSALLastRowEqualsWeights(t *testing.T) {
	// For FSAL pairs the last stage is evaluated at the new point, so the
	// last A row must repeat the propagation weights.
	for _, tab := range allTableaus() {
		if !tab.FSAL {
			continue
		}
		last := tab.A[tab.Stages()-1]
		for j, a := range last {
			if math.Abs(a-tab.B[j]) > 1e-14 {
				t.Errorf("%s: FSAL row entry %d is %v, want %v", tab.Name, j, a, tab.B[j])
			}
		}
		if tab.C[tab.Stages()-1] != 1 {
			t.Errorf("%s: FSAL last node must be 1", tab.Name)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("rk4"); err == nil {
		t.Error("expected error for unknown method")
	}
}
