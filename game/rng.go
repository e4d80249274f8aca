package game

import (
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"
)

// pcgStream is the fixed second PCG seed word.
const pcgStream = 0x9e3779b97f4a7c15

// pcgSource adapts a PCG generator to the math/rand Source64 interface so the
// simulation can keep a *rand.Rand while its state stays serializable.
// rand.Rand keeps no state of its own outside Read, which the simulation never calls.
type pcgSource struct {
	pcg *randv2.PCG
}

func newPCGSource(seed int64) *pcgSource {
	return &pcgSource{pcg: randv2.NewPCG(uint64(seed), pcgStream)}
}

func (s *pcgSource) Int63() int64    { return int64(s.pcg.Uint64() >> 1) }
func (s *pcgSource) Uint64() uint64  { return s.pcg.Uint64() }
func (s *pcgSource) Seed(seed int64) { s.pcg.Seed(uint64(seed), pcgStream) }

// state returns the serialized generator state.
func (s *pcgSource) state() []byte {
	b, err := s.pcg.MarshalBinary()
	if err != nil {
		// PCG marshaling cannot fail
		panic(err)
	}
	return b
}

// parseRNGState decodes serialized generator state without touching a live source.
func parseRNGState(b []byte) (*randv2.PCG, error) {
	p := &randv2.PCG{}
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("rng state: %w", err)
	}
	return p, nil
}

var _ rand.Source64 = (*pcgSource)(nil)
