package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net"
	"net/http"

	"github.com/golang/glog"
	xws "golang.org/x/net/websocket"

	fx "github.com/microbots/reflex.go/pkg/framework"
	"github.com/microbots/reflex.go/pkg/l0/funcs"
	"github.com/microbots/reflex.go/pkg/l1/comm"
	"github.com/microbots/reflex.go/pkg/l1/comm/mqtt"
	"github.com/microbots/reflex.go/pkg/l1/comm/stream"
	ws "github.com/microbots/reflex.go/pkg/l1/comm/websocket"
	"github.com/microbots/reflex.go/pkg/l1/env"
)

var (
	listenAddr   string
	listenWSAddr string
)

func init() {
	env.SetupFlags()
	flag.StringVar(&listenAddr, "listen", "", "Listen address for TCP frame transport.")
	flag.StringVar(&listenWSAddr, "listen-ws", "", "Listen address for websocket frame transport.")
}

// pinBank simulates a bank of GPIO pins.
type pinBank struct {
	mode  [16]int8
	value [16]int8
}

func (p *pinBank) setMode(c *funcs.Call) {
	pin, mode := c.Pop(), c.Pop()
	if idx := int(pin); idx >= 0 && idx < len(p.mode) {
		p.mode[idx] = mode
	}
}

func (p *pinBank) write(c *funcs.Call) {
	pin, val := c.Pop(), c.Pop()
	if idx := int(pin); idx >= 0 && idx < len(p.value) {
		p.value[idx] = val
		glog.V(1).Infof("pin %d <- %d", idx, val)
	}
}

func (p *pinBank) read(c *funcs.Call) {
	pin := c.Pop()
	var val int8
	if idx := int(pin); idx >= 0 && idx < len(p.value) {
		val = p.value[idx]
	}
	if c.Push(val) {
		c.SendResponse()
	}
}

func newDispatcher() *funcs.Dispatcher {
	d := funcs.NewDispatcher(nil)
	bank := &pinBank{}
	d.BindNamed("GPIO1", funcs.HandlerFunc(bank.setMode))
	d.BindNamed("GPIO1", funcs.HandlerFunc(bank.write))
	d.BindNamed("GPIO1", funcs.HandlerFunc(bank.read))
	return d
}

// tcpServer accepts one connection at a time, as a device with a
// single physical port would.
type tcpServer struct {
	listener net.Listener
}

func (s *tcpServer) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, s.listener, func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return err
			}
			glog.Infof("connected %s", conn.RemoteAddr())
			ep := comm.NewEndpoint(stream.New(conn), newDispatcher())
			if err = ep.Run(ctx); err != nil && err != context.Canceled {
				glog.Warningf("session ended: %v", err)
			}
		}
	})
}

// wsServer serves one dispatcher per websocket connection.
type wsServer struct {
	addr string
}

func (s *wsServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr: s.addr,
		Handler: xws.Handler(func(conn *xws.Conn) {
			glog.Infof("connected %s", conn.Request().RemoteAddr)
			ep := comm.NewEndpoint(ws.New(conn), newDispatcher())
			if err := ep.Run(ctx); err != nil && err != context.Canceled {
				glog.Warningf("session ended: %v", err)
			}
		}),
	}
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

func main() {
	flag.Parse()

	runner := fx.NewRunner().HandleSignals()

	if listenWSAddr != "" {
		glog.Infof("listening on ws %s", listenWSAddr)
		runner.Go(fx.NamedRun("ws", &wsServer{addr: listenWSAddr}))
	}

	if listenAddr != "" {
		listener, err := net.Listen("tcp", listenAddr)
		if err != nil {
			glog.Exitf("listen %s: %v", listenAddr, err)
		}
		glog.Infof("listening on %s", listenAddr)
		runner.Go(fx.NamedRun("tcp", &tcpServer{listener: listener}))
	}

	if listenAddr == "" && listenWSAddr == "" {
		conf := env.NewConfig()
		if conf.Ref.Type == "" {
			conf.Ref.Type = "simdev"
		}
		if conf.Ref.ID == "" {
			conf.Ref.ID = env.MachineID()
		}
		q, err := mqtt.NewQueueFromURL(conf.DeviceURL)
		if err != nil {
			glog.Exitf("broker %s: %v", conf.DeviceURL, err)
		}
		token := q.Connect()
		token.Wait()
		if err = token.Error(); err != nil {
			glog.Exitf("connect %s: %v", conf.DeviceURL, err)
		}
		rw := mqtt.NewReadWriter(q).ForDevice(conf.Ref)
		ep := comm.NewEndpoint(rw, newDispatcher())
		glog.Infof("serving %s via %s", conf.Ref.Name(), conf.DeviceURL)
		runner.Go(fx.NamedRun("mqtt", rw), fx.NamedRun("endpoint", ep))
	}

	if err := runner.Wait(); err != nil {
		glog.Exitln(err)
	}
}
