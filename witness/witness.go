// Package witness implements the variable registry the composer builds up
// as circuits are described: a dense index into a table of field values,
// with the two predefined constants every circuit needs.
package witness

import "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

// Witness is an opaque handle into a Registry's value table. Two handles
// are equal iff they index the same variable.
type Witness uint32

// Zero and One are the predefined constant witnesses every Registry starts
// with, bound to the field values 0 and 1 respectively. Registry.Append
// never returns them: appending the value 0 or 1 registers a new handle
// like any other value.
const (
	Zero Witness = 0
	One  Witness = 1
)

// Registry is an append-only table of witness values. Witnesses and gates
// are appended monotonically by the composer; there is no deletion.
type Registry struct {
	values []fr.Element
}

// NewRegistry returns a Registry pre-populated with the Zero and One
// constants.
func NewRegistry() *Registry {
	r := &Registry{values: make([]fr.Element, 2)}
	r.values[Zero] = fr.Element{}
	var one fr.Element
	one.SetOne()
	r.values[One] = one
	return r
}

// Append registers a new variable bound to value and returns its handle.
func (r *Registry) Append(value fr.Element) Witness {
	r.values = append(r.values, value)
	return Witness(len(r.values) - 1)
}

// Value returns the field value bound to w.
func (r *Registry) Value(w Witness) fr.Element {
	return r.values[w]
}

// Len returns the number of registered witnesses, including Zero and One.
func (r *Registry) Len() int {
	return len(r.values)
}

// Values returns the full backing slice. Callers must not mutate it.
func (r *Registry) Values() []fr.Element {
	return r.values
}
