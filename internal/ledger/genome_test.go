package ledger

import "testing"

func TestCombineByte(t *testing.T) {
	got := combineByte(0b11110000, 0b11001100, 0b10101010)
	if got != 0b11100100 {
		t.Fatalf("expected 0b11100100, got 0b%08b", got)
	}
}

func TestCombineDNASelectorChoosesParent(t *testing.T) {
	var dna1, dna2, allOnes, allZeros Genome
	for i := range dna1 {
		dna1[i] = byte(i)
		dna2[i] = byte(0xf0 ^ i)
		allOnes[i] = 0xff
	}

	if got := CombineDNA(dna1, dna2, allOnes); got != dna1 {
		t.Fatalf("all-ones selector should reproduce parent1, got %s", got)
	}
	if got := CombineDNA(dna1, dna2, allZeros); got != dna2 {
		t.Fatalf("all-zeros selector should reproduce parent2, got %s", got)
	}
}

func TestCombineDNAPerByte(t *testing.T) {
	var dna1, dna2, selector Genome
	for i := range selector {
		dna1[i] = 0b11110000
		dna2[i] = 0b11001100
		selector[i] = 0b10101010
	}

	got := CombineDNA(dna1, dna2, selector)
	for i, b := range got {
		if b != 0b11100100 {
			t.Fatalf("byte %d: expected 0b11100100, got 0b%08b", i, b)
		}
	}
}

func TestGenomeJSONRoundTrip(t *testing.T) {
	var g Genome
	for i := range g {
		g[i] = byte(0x10 + i)
	}

	payload, err := g.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal genome: %v", err)
	}

	var decoded Genome
	if err := decoded.UnmarshalJSON(payload); err != nil {
		t.Fatalf("unmarshal genome: %v", err)
	}
	if decoded != g {
		t.Fatalf("expected %s after round trip, got %s", g, decoded)
	}
}

func TestGenomeUnmarshalRejectsBadLength(t *testing.T) {
	var g Genome
	if err := g.UnmarshalJSON([]byte(`"abcd"`)); err == nil {
		t.Fatal("expected error for short genome")
	}
}
