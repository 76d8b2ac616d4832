package bundle

// ValidateBundle checks the sentinel zero-field invariant on every envelope.
// Decoded bundles may originate from untrusted calldata, so a violation is a
// typed error naming the offending envelope, never a fatal condition.
func ValidateBundle(b *Bundle) error {
	for i := range b.Envelopes {
		env := &b.Envelopes[i]
		switch {
		case env.Nonce != 0:
			return &InvariantViolationError{Index: i, Field: "nonce", Value: env.Nonce}
		case env.GasLimit != 0:
			return &InvariantViolationError{Index: i, Field: "gas_limit", Value: env.GasLimit}
		case env.GasPrice != 0:
			return &InvariantViolationError{Index: i, Field: "gas_price", Value: env.GasPrice}
		}
	}
	return nil
}
