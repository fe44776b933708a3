package env

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"

	xws "golang.org/x/net/websocket"

	"github.com/microbots/reflex.go/pkg/l1"
	"github.com/microbots/reflex.go/pkg/l1/comm"
	"github.com/microbots/reflex.go/pkg/l1/comm/mqtt"
	"github.com/microbots/reflex.go/pkg/l1/comm/stream"
	ws "github.com/microbots/reflex.go/pkg/l1/comm/websocket"
)

// Config provides common options to reach a device.
type Config struct {
	Ref l1.DeviceRef

	// DeviceURL specifies how to reach the device:
	//   tcp://host:port         length-prefixed frames over TCP
	//   ws://host:port/path     binary websocket messages
	//   mqtt://host:port/prefix cmd/rsp topics under prefix/type.id/
	DeviceURL string
}

var defaultConfig = Config{
	DeviceURL: "mqtt://localhost:1883/reflex/",
}

func init() {
	if val := os.Getenv("REFLEX_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("REFLEX_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("REFLEX_DEVICE_URL"); val != "" {
		defaultConfig.DeviceURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "device-type", defaultConfig.Ref.Type, "Device type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.DeviceURL, "device-url", defaultConfig.DeviceURL, "Device URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Dial establishes the frame transport to the device selected by
// DeviceURL. For MQTT the returned ReadWriter is also a Runnable which
// must be run to keep the subscription alive.
func (c *Config) Dial() (comm.FrameReadWriter, error) {
	parsedURL, err := url.Parse(c.DeviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid device URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "tcp":
		conn, err := net.Dial("tcp", parsedURL.Host)
		if err != nil {
			return nil, err
		}
		return stream.New(conn), nil
	case "ws", "wss":
		conn, err := xws.Dial(c.DeviceURL, "", "http://localhost/")
		if err != nil {
			return nil, err
		}
		return ws.New(conn), nil
	case "", "mqtt", "ssl", "tls":
		if !c.Ref.IsValid() {
			return nil, fmt.Errorf("device type and id must be specified")
		}
		q, err := mqtt.NewQueueFromURL(c.DeviceURL)
		if err != nil {
			return nil, err
		}
		token := q.Connect()
		token.Wait()
		if err = token.Error(); err != nil {
			return nil, err
		}
		return mqtt.NewReadWriter(q).ForHost(c.Ref), nil
	default:
		return nil, fmt.Errorf("unknown device URL scheme: %q", parsedURL.Scheme)
	}
}

// Connect dials the device and wraps the transport in a Conn.
func (c *Config) Connect() (*comm.Conn, error) {
	rw, err := c.Dial()
	if err != nil {
		return nil, err
	}
	return comm.NewConn(rw), nil
}

// MustConnect connects to the device or fails.
func (c *Config) MustConnect() *comm.Conn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
