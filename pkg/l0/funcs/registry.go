package funcs

// InterfaceIDLen is the fixed length of interface identifiers.
const InterfaceIDLen = 5

// InterfaceID identifies a well known group of functions. The
// convention is 4 characters naming the vendor/interface plus one
// version character.
type InterfaceID [InterfaceIDLen]byte

// InterfaceIDOf builds an InterfaceID from a string. ok is false
// unless the string is exactly InterfaceIDLen characters.
func InterfaceIDOf(s string) (id InterfaceID, ok bool) {
	if len(s) != InterfaceIDLen {
		return id, false
	}
	copy(id[:], s)
	return id, true
}

// String implements fmt.Stringer.
func (id InterfaceID) String() string {
	return string(id[:])
}

// MaxInterfaces is the capacity of the interface registry.
const MaxInterfaces = 25

// InterfaceRecord relates an interface to the id of the first
// function bound under it.
type InterfaceRecord struct {
	ID    InterfaceID
	Start byte
}

// InterfaceRegistry records registered interfaces in registration
// order. Records are append-only and never removed. The zero value is
// an empty registry ready for use.
type InterfaceRegistry struct {
	records [MaxInterfaces]InterfaceRecord
	count   int
}

// Register records the interface with the given start id if it is
// unseen; isNew is false for repeats. ErrRegistryFull is returned
// once capacity is reached and the registry is left unchanged.
func (r *InterfaceRegistry) Register(id InterfaceID, start byte) (isNew bool, err error) {
	if r.IsKnown(id) {
		return false, nil
	}
	if r.count == MaxInterfaces {
		return false, ErrRegistryFull
	}
	r.records[r.count] = InterfaceRecord{ID: id, Start: start}
	r.count++
	return true, nil
}

// IsKnown reports whether the interface has been registered.
func (r *InterfaceRegistry) IsKnown(id InterfaceID) bool {
	for i := 0; i < r.count; i++ {
		if r.records[i].ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of registered interfaces.
func (r *InterfaceRegistry) Len() int {
	return r.count
}

// Records returns the registered records in registration order. The
// returned slice aliases registry storage and must not be modified.
func (r *InterfaceRegistry) Records() []InterfaceRecord {
	return r.records[:r.count]
}
