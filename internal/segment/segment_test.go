package segment

import "testing"

func TestDecomposeAddressRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 63, 64, 2047, 2048, 4242, 1 << 40}
	for _, p := range cases {
		seg, word, bit := Decompose(p)
		got := Address(seg, word, bit)
		if got != p {
			t.Errorf("Decompose/Address round trip for %d: got %d", p, got)
		}
	}
}

func TestDecomposeCanonical(t *testing.T) {
	// p = 2048*S + 64*W + B
	seg, word, bit := Decompose(2048*2 + 64*5 + 17)
	if seg != 2 || word != 5 || bit != 17 {
		t.Fatalf("got seg=%d word=%d bit=%d, want 2,5,17", seg, word, bit)
	}
}

func TestSetGetBit(t *testing.T) {
	var s Segment
	s.SetBit(0, 0, true)
	if !s.GetBit(0, 0) {
		t.Fatal("expected bit set")
	}
	s.SetBit(0, 0, false)
	if s.GetBit(0, 0) {
		t.Fatal("expected bit cleared")
	}
}

func TestSetBitClearDoesNotZeroWholeWord(t *testing.T) {
	var s Segment
	s.SetBit(3, 1, true)
	s.SetBit(3, 2, true)
	s.SetBit(3, 5, true)

	s.SetBit(3, 2, false)

	if s.GetBit(3, 2) {
		t.Fatal("bit 2 should be cleared")
	}
	if !s.GetBit(3, 1) {
		t.Fatal("clearing bit 2 must not clear bit 1")
	}
	if !s.GetBit(3, 5) {
		t.Fatal("clearing bit 2 must not clear bit 5")
	}
}

func TestSetBitLeavesOtherBitsUnchanged(t *testing.T) {
	var s Segment
	for w := uint(0); w < Words; w++ {
		for b := uint(0); b < WordBits; b++ {
			s.SetBit(w, b, true)
		}
	}
	s.SetBit(10, 30, false)
	for w := uint(0); w < Words; w++ {
		for b := uint(0); b < WordBits; b++ {
			want := !(w == 10 && b == 30)
			if got := s.GetBit(w, b); got != want {
				t.Fatalf("word %d bit %d: got %v want %v", w, b, got, want)
			}
		}
	}
}

func segWith(bits ...uint64) Segment {
	var s Segment
	for _, p := range bits {
		_, w, b := Decompose(p)
		s.SetBit(w, b, true)
	}
	return s
}

func TestUnionCommutativeAndIdentity(t *testing.T) {
	a := segWith(1, 70, 2047)
	b := segWith(70, 2000)
	var empty Segment

	if Union(a, b) != Union(b, a) {
		t.Fatal("union not commutative")
	}
	if Union(a, empty) != a {
		t.Fatal("empty segment is not the union identity")
	}
}

func TestIntersectionCommutative(t *testing.T) {
	a := segWith(1, 70, 2047)
	b := segWith(70, 2000)
	if Intersection(a, b) != Intersection(b, a) {
		t.Fatal("intersection not commutative")
	}
}

func TestUnionDistributesOverIntersection(t *testing.T) {
	a := segWith(1, 2, 3)
	b := segWith(2, 3, 4)
	c := segWith(3, 4, 5)

	lhs := Union(a, Intersection(b, c))
	rhs := Intersection(Union(a, b), Union(a, c))
	if lhs != rhs {
		t.Fatal("union does not distribute over intersection")
	}
}

func TestDoubleInversionIsIdentity(t *testing.T) {
	a := segWith(1, 500, 2000)
	if Invert(Invert(a)) != a {
		t.Fatal("double inversion is not identity")
	}
}

func TestSymmetricDifferenceLaws(t *testing.T) {
	a := segWith(1, 500, 2000)
	var empty Segment

	if SymmetricDifference(a, a) != empty {
		t.Fatal("Xor(A, A) must be empty")
	}
	if SymmetricDifference(a, empty) != a {
		t.Fatal("Xor(A, empty) must equal A")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := segWith(0, 63, 64, 2047)
	if got := FromBytes(a.Bytes()); got != a {
		t.Fatal("Bytes/FromBytes round trip mismatch")
	}
}

func TestIsZero(t *testing.T) {
	var s Segment
	if !s.IsZero() {
		t.Fatal("zero-value Segment must report IsZero")
	}
	s.SetBit(0, 0, true)
	if s.IsZero() {
		t.Fatal("Segment with a set bit must not report IsZero")
	}
}
