package domain

// CauseKind tags the union of reasons a bound can be written.
type CauseKind uint8

const (
	// CauseDecision marks a bound set by a free choice of the search core.
	CauseDecision CauseKind = iota
	// CauseEncoding marks a bound set at variable creation time.
	CauseEncoding
	// CauseInference marks a bound set by a propagator. WriterID
	// identifies the propagator module; Payload is an opaque token the
	// module later uses to expand the inference into an explanation.
	CauseInference
)

// Cause records why a bound was written. It is a tagged union in the
// spirit of the spec's Decision/Encoding/Inference cases, represented as
// a flat struct since Go has no sum types.
type Cause struct {
	Kind     CauseKind
	WriterID uint8
	Payload  uint32
}

// Decision returns the cause for a free choice made by the search core.
func Decision() Cause { return Cause{Kind: CauseDecision} }

// Encoding returns the cause for a bound set at variable creation.
func Encoding() Cause { return Cause{Kind: CauseEncoding} }

// InferredBy returns the cause for a bound set by the propagator
// identified by writerID, carrying an opaque payload the propagator can
// later use to reconstruct its reasoning in Explain.
func InferredBy(writerID uint8, payload uint32) Cause {
	return Cause{Kind: CauseInference, WriterID: writerID, Payload: payload}
}

// IsInference reports whether the cause was produced by a propagator.
func (c Cause) IsInference() bool { return c.Kind == CauseInference }
