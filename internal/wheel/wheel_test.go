package wheel

import "testing"

func TestColorPartition(t *testing.T) {
	red, black := 0, 0
	for n := 1; n <= Max; n++ {
		switch ColorOf(n) {
		case Red:
			red++
		case Black:
			black++
		default:
			t.Fatalf("unexpected colour for %d: %s", n, ColorOf(n))
		}
	}
	if red != 18 || black != 18 {
		t.Fatalf("expected 18/18 split, got red=%d black=%d", red, black)
	}
	if ColorOf(0) != Green {
		t.Fatalf("zero should be green")
	}
}

func TestAttributesOfZero(t *testing.T) {
	if IsEven(0) || IsOdd(0) || IsLow(0) || IsHigh(0) {
		t.Fatalf("zero must have no parity or range")
	}
	if Dozen(0) != 0 || Column(0) != 0 {
		t.Fatalf("zero must have dozen/column 0")
	}
}

func TestDozenAndColumn(t *testing.T) {
	cases := []struct{ n, dozen, column int }{
		{1, 1, 1}, {12, 1, 3}, {13, 2, 1}, {24, 2, 3}, {25, 3, 1}, {35, 3, 2}, {36, 3, 3},
	}
	for _, c := range cases {
		if got := Dozen(c.n); got != c.dozen {
			t.Fatalf("Dozen(%d) = %d, want %d", c.n, got, c.dozen)
		}
		if got := Column(c.n); got != c.column {
			t.Fatalf("Column(%d) = %d, want %d", c.n, got, c.column)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	for n := 0; n <= Max; n++ {
		if Order[Position(n)] != n {
			t.Fatalf("position round trip failed for %d", n)
		}
	}
}

func TestNeighboursWrap(t *testing.T) {
	for n := 0; n <= Max; n++ {
		for r := 1; r <= 4; r++ {
			got := Neighbours(n, r)
			if len(got) != 2*r {
				t.Fatalf("Neighbours(%d,%d) len = %d", n, r, len(got))
			}
			seen := map[int]bool{}
			for _, v := range got {
				if v == n || seen[v] {
					t.Fatalf("Neighbours(%d,%d) invalid: %v", n, r, got)
				}
				seen[v] = true
			}
		}
	}

	got := Neighbours(0, 2)
	want := []int{3, 26, 32, 15}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Neighbours(0,2) = %v, want %v", got, want)
		}
	}
	got = Neighbours(26, 1)
	if got[0] != 3 || got[1] != 0 {
		t.Fatalf("Neighbours(26,1) = %v, want [3 0]", got)
	}
}

func TestGroupSizes(t *testing.T) {
	if len(ColorMembers(Red)) != 18 || len(ColorMembers(Black)) != 18 {
		t.Fatalf("colour groups must hold 18")
	}
	for k := 1; k <= 3; k++ {
		if len(DozenMembers(k)) != 12 || len(ColumnMembers(k)) != 12 {
			t.Fatalf("dozen/column %d must hold 12", k)
		}
	}
}
