package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenomeSize is the number of bytes in a kitty genome.
const GenomeSize = 16

// Genome is a kitty's 16-byte genetic payload.
type Genome [GenomeSize]byte

// String returns the genome as lowercase hex.
func (g Genome) String() string {
	return hex.EncodeToString(g[:])
}

// MarshalJSON encodes the genome as a hex string.
func (g Genome) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a hex string into the genome.
func (g *Genome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode genome hex: %w", err)
	}
	if len(raw) != GenomeSize {
		return fmt.Errorf("genome must be %d bytes, got %d", GenomeSize, len(raw))
	}
	copy(g[:], raw)
	return nil
}

// CombineDNA derives a child genome from two parents and a selector mask.
// Each output bit comes from dna1 where the selector bit is 1 and from dna2
// where it is 0, so every bit has a traceable single-parent origin.
func CombineDNA(dna1, dna2, selector Genome) Genome {
	var out Genome
	for i := range out {
		out[i] = combineByte(dna1[i], dna2[i], selector[i])
	}
	return out
}

func combineByte(dna1, dna2, selector byte) byte {
	return (selector & dna1) | (^selector & dna2)
}
