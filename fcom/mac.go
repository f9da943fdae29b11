package fcom

// MacProver is the prover's view of an authenticated value: the clear value
// (an element of the prime subfield) together with its tag in the full field.
type MacProver[E, C comparable] struct {
	Value C
	Mac   E
}

// MacVerifier is the verifier's view of an authenticated value: the local key
// only, never the clear value. The key of a public value v is -Lift(v)*Delta,
// derivable with no communication.
type MacVerifier[E comparable] struct {
	Key E
}
