package l1

import (
	"context"
	"errors"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

// ErrBadDiscovery indicates a malformed discovery payload.
var ErrBadDiscovery = errors.New("bad discovery payload")

const discoveryRecordLen = funcs.InterfaceIDLen + 1

// ParseDiscovery decodes a QueryInterface response payload into
// interface records in registration order. On the wire each record is
// [startId][identifier] and records arrive most recently registered
// first (the device emits them in stack pop order).
func ParseDiscovery(payload []byte) ([]InterfaceInfo, error) {
	if len(payload)%discoveryRecordLen != 0 {
		return nil, ErrBadDiscovery
	}
	n := len(payload) / discoveryRecordLen
	infos := make([]InterfaceInfo, n)
	for i := 0; i < n; i++ {
		rec := payload[i*discoveryRecordLen:]
		infos[n-1-i] = InterfaceInfo{
			Start: rec[0],
			ID:    string(rec[1 : 1+funcs.InterfaceIDLen]),
		}
	}
	return infos, nil
}

// Discover queries the device for its registered interfaces.
func Discover(ctx context.Context, conn DeviceConn) ([]InterfaceInfo, error) {
	f := conn.Do(NewRequest().QueryInterface())
	select {
	case res := <-f.ResultChan():
		if res.Err != nil {
			return nil, res.Err
		}
		return ParseDiscovery(res.Payload)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
