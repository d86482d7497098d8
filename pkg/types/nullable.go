// Package types provides nullable value types shared by the natural-key codec and its consumers.
package types

// Nullable defines the interface for types that can represent null values.
// Types implementing this interface distinguish between a zero value and an
// explicit null, which matters wherever a null is itself meaningful data.
type Nullable interface {
	// IsNil returns true if the value is null.
	IsNil() bool
}
