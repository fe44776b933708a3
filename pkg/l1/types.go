package l1

// DeviceRef is a reference to a device endpoint.
type DeviceRef struct {
	// Type is the device type (firmware flavor).
	Type string
	// ID is the unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// InterfaceInfo describes one interface discovered on a device.
type InterfaceInfo struct {
	// ID is the 5-character interface identifier.
	ID string
	// Start is the id of the first function in the interface.
	Start byte
}

// Result represents the result of a request.
type Result struct {
	Payload []byte
	Err     error
}

// CallFuture is the future of a sent request.
type CallFuture interface {
	ResultChan() <-chan Result
}

// DeviceConn is the connection to a device.
type DeviceConn interface {
	// Do sends an opcode frame and returns the future of its
	// response.
	Do(*Request) CallFuture
}
