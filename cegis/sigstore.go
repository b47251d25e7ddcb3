package cegis

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SigStore interns behavior signatures per evaluator identity and decides
// distinguishability (§4.1). Signatures are hashed with xxhash before
// interning so the hot path never compares long value vectors unless two
// signatures collide on their hash.
type SigStore struct {
	mu   sync.Mutex
	seen map[EvaluatorID]map[uint64][]Signature
	// partialNonce salts every partial signature's hash so that two partial
	// signatures never compare equal, resolving the Open Question in §9 as
	// option (a): an explicit marker that never unifies with another partial.
	partialNonce uint64
}

func NewSigStore() *SigStore {
	return &SigStore{seen: make(map[EvaluatorID]map[uint64][]Signature)}
}

// Classify returns Fresh if sig has not been observed for id, Duplicate
// otherwise. A partial signature is always classified Fresh: it is
// distinguishable-but-inconclusive, never unified with a prior partial or
// full signature.
func (s *SigStore) Classify(id EvaluatorID, sig Signature, partial bool) Classification {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.seen[id]
	if !ok {
		bucket = make(map[uint64][]Signature)
		s.seen[id] = bucket
	}

	h := hashSignature(sig)
	if partial {
		s.partialNonce++
		h ^= s.partialNonce * 0x9e3779b185ebca87
		bucket[h] = append(bucket[h], cloneSignature(sig))
		return Fresh
	}

	for _, prior := range bucket[h] {
		if signatureEqual(prior, sig) {
			return Duplicate
		}
	}
	bucket[h] = append(bucket[h], cloneSignature(sig))
	return Fresh
}

// Reset discards every entry interned for id without destroying it — used
// whenever a new point or a new sub-expression evaluation point invalidates
// previously interned signatures.
func (s *SigStore) Reset(id EvaluatorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
}

// Forget drops every entry interned for id, used when that evaluator is
// torn down at solve end.
func (s *SigStore) Forget(id EvaluatorID) {
	s.Reset(id)
}

func hashSignature(sig Signature) uint64 {
	buf := make([]byte, 8*len(sig))
	for i, v := range sig {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return xxhash.Sum64(buf)
}

func cloneSignature(sig Signature) Signature {
	out := make(Signature, len(sig))
	copy(out, sig)
	return out
}

func signatureEqual(a, b Signature) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
