// Package comm provides the L0 frame transport.
package comm
