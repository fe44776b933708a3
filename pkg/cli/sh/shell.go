// Package sh provides the interactive device shell.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
	"github.com/microbots/reflex.go/pkg/l1"
	"github.com/microbots/reflex.go/pkg/l1/comm"
	"github.com/microbots/reflex.go/pkg/l1/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// Session is a running loop with a device connection.
type Session struct {
	Ctx        context.Context
	Cancel     func()
	Ref        l1.DeviceRef
	Conn       *comm.Conn
	Interfaces []l1.InterfaceInfo
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&DiscoverCmd,
		&CallCmd,
		&PushCmd,
		&ResultCmd,
		&RawCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func requiring a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoRequest sends a request and waits for the result.
func DoRequest(c *ishell.Context, req *l1.Request) (l1.Result, error) {
	s := ShellFrom(c)
	if s.Session == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return l1.Result{}, err
	}
	f := s.Session.Conn.Do(req)
	select {
	case res := <-f.ResultChan():
		if res.Err != nil {
			c.Err(res.Err)
		}
		return res, res.Err
	case <-time.After(2 * s.Session.Conn.Expiration):
		err := context.DeadlineExceeded
		c.Err(err)
		return l1.Result{}, err
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect connects the device described by the current config.
func (s *Shell) Connect(ref l1.DeviceRef) error {
	s.Config.Ref = ref
	conn, err := s.Config.Connect()
	if err != nil {
		return err
	}
	sess := &Session{Ref: ref, Conn: conn}
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	if s.Session != nil {
		s.Session.Cancel()
	}
	s.Session = sess
	go conn.Run(sess.Ctx)
	if ref.IsValid() {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	} else {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", s.Config.DeviceURL))
	}
	return nil
}

// Disconnect disconnects the current device.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Cancel()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Discover queries the device interfaces and caches the result.
func (s *Shell) Discover() ([]l1.InterfaceInfo, error) {
	if s.Session == nil {
		return nil, fmt.Errorf("not connected")
	}
	infos, err := l1.Discover(s.Session.Ctx, s.Session.Conn)
	if err != nil {
		return nil, err
	}
	s.Session.Interfaces = infos
	return infos, nil
}

// ResolveFunc maps NAME+OFFSET or a plain number to a function id.
// Names refer to interfaces from the last discover.
func (s *Shell) ResolveFunc(arg string) (byte, error) {
	if n, err := strconv.ParseUint(arg, 0, 8); err == nil {
		return byte(n), nil
	}
	name, offset := arg, uint64(0)
	if len(arg) > funcs.InterfaceIDLen {
		var err error
		if offset, err = strconv.ParseUint(arg[funcs.InterfaceIDLen:], 10, 8); err != nil {
			return 0, fmt.Errorf("bad function %q", arg)
		}
		name = arg[:funcs.InterfaceIDLen]
	}
	if s.Session != nil {
		for _, info := range s.Session.Interfaces {
			if info.ID == name {
				return info.Start + byte(offset), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown function %q, try discover first", arg)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.DeviceURL)
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.DeviceURL, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func parseBytes(args []string) ([]byte, error) {
	data := make([]byte, len(args))
	for i, arg := range args {
		n, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("bad byte %q", arg)
		}
		data[i] = byte(n)
	}
	return data, nil
}

var (
	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref := s.Config.Ref
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects the current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// DiscoverCmd queries the interfaces bound on the device.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			infos, err := s.Discover()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if infos == nil {
					infos = []l1.InterfaceInfo{}
				}
				out, err := json.Marshal(infos)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infos) == 0 {
				c.Println("No interfaces bound")
				return
			}
			for _, info := range infos {
				c.Printf("%s @ %d\n", info.ID, info.Start)
			}
		}),
	}

	// CallCmd invokes a function with optional arguments and waits
	// for a response.
	CallCmd = ishell.Cmd{
		Name:    "call",
		Aliases: []string{"x"},
		Help:    "FUNC [ARG...]  (FUNC is an id or IFACE+offset like GPIO12)",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("function expected"))
				return
			}
			s := ShellFrom(c)
			fid, err := s.ResolveFunc(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			args, err := parseBytes(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			var req l1.Request
			if len(args) > 0 {
				req.PushArray(args...)
			}
			req.Invoke(fid)
			res, err := DoRequest(c, &req)
			if err != nil {
				return
			}
			printPayload(c, s, res.Payload)
		}),
	}

	// PushCmd leaves bytes on the device parameter stack for later
	// frames. No response is expected.
	PushCmd = ishell.Cmd{
		Name:    "push",
		Aliases: []string{"p"},
		Help:    "BYTE...",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			data, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			s.Session.Conn.Do(l1.NewRequest().PushArray(data...))
			c.Println("OK")
		}),
	}

	// ResultCmd pops the top of the device stack as a one-byte
	// response.
	ResultCmd = ishell.Cmd{
		Name:    "result",
		Aliases: []string{"r"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			res, err := DoRequest(c, l1.NewRequest().Respond())
			if err != nil {
				return
			}
			printPayload(c, s, res.Payload)
		}),
	}

	// RawCmd sends raw opcode bytes.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "BYTE...",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			data, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			var req l1.Request
			req.Raw(data...)
			res, err := DoRequest(c, &req)
			if err != nil {
				return
			}
			printPayload(c, s, res.Payload)
		}),
	}
)

func printPayload(c *ishell.Context, s *Shell, payload []byte) {
	if s.OutputJSON {
		out, err := json.Marshal(payload)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	if len(payload) == 0 {
		c.Println("OK")
		return
	}
	c.Printf("% x\n", payload)
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
