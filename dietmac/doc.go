// Package dietmac implements the gate-evaluation engine of an interactive
// zero-knowledge proof backend: a [Prover] holding secret values and a
// [Verifier] holding none jointly evaluate an arithmetic circuit gate by
// gate over authenticated values, producing a proof that every gate was
// evaluated correctly without revealing any secret.
//
// Some design decisions:
//   - Zero assertions are queued and proven in one batch; multiplication
//     triples go to a separate running QuickSilver accumulator. Both are
//     settled at Finalize.
//   - Addition and affine operations compose linearly on tags, so they are
//     purely local; multiplication is the only gate that needs a
//     zero-knowledge check, because linearity alone cannot establish that
//     the output is the product.
//   - After any sub-protocol failure the evaluator is poisoned: every
//     subsequent operation returns [ErrPoisoned] without touching the
//     channel, preventing protocol desynchronization. Reset restores it.
package dietmac
