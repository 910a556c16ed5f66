// Package sh provides an interactive shell over a simulated chain of badges.
package sh

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/nsec/badge.go/pkg/badge"
	"github.com/nsec/badge.go/pkg/env"
	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/sim"
	"github.com/nsec/badge.go/pkg/wire"
)

// CommandTimeout bounds the wait for the Loop to apply a command.
const CommandTimeout = time.Second

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Chain *badge.SimulatedChain
	Loop  fx.LoopControl
}

// BadgeStatus is what the status command reports for a badge.
type BadgeStatus struct {
	Name    string         `json:"name"`
	ID      string         `json:"id"`
	Network network.Status `json:"network"`
	App     badge.Status   `json:"app"`
}

const shellKey = "$shell"

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&StatusCmd,
		&ConnectCmd,
		&SplitCmd,
		&AppendCmd,
		&SendCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell. The chain must be driven by the loop.
func New(chain *badge.SimulatedChain, loop fx.LoopControl) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Chain: chain,
		Loop:  loop,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("badges > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Do runs fn on the Loop and waits for the result.
func (s *Shell) Do(fn func(*badge.SimulatedChain) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	return sim.Do(ctx, s.Loop, func(*sim.Chain) error {
		return fn(s.Chain)
	})
}

// Status collects the status of all badges.
func (s *Shell) Status() (statuses []BadgeStatus, err error) {
	err = s.Do(func(c *badge.SimulatedChain) error {
		for i, b := range c.Badges() {
			app := c.Apps[i]
			statuses = append(statuses, BadgeStatus{
				Name:    b.Name,
				ID:      app.ID.String(),
				Network: b.Handler.Status(),
				App:     app.Status(),
			})
		}
		return nil
	})
	return
}

// Main is the entry of a shell over a chain simulated in process.
func Main() {
	flag.Parse()

	simConf := sim.Default()
	chain := badge.NewSimulatedChain(simConf.Badges, network.Default(), env.BadgeID(), nil)
	loop := fx.NewLoop()
	loop.Interval = simConf.Interval
	loop.Add(chain)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	New(chain, loop).Run(flag.Args()...)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
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

func (s *Shell) print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// FormatStatus prints a BadgeStatus in one line.
func FormatStatus(st BadgeStatus) string {
	n := st.Network
	var w strings.Builder
	fmt.Fprintf(&w, "%s %-21s %-10s", st.Name, n.State, n.Position)
	if n.State == network.StateRunning {
		fmt.Fprintf(&w, " id=%d/%d wave=%s listen=%s", n.PeerID, n.PeerCount, n.WaveFrontDirection, n.ListeningSide)
		if n.HasPendingMessage {
			w.WriteString(" pending")
		}
	}
	fmt.Fprintf(&w, " app=%s level=%d known=%d", st.App.State, st.App.SocialLevel, st.App.KnownBadges)
	return w.String()
}

func badgeIndex(c *ishell.Context, n int) ([]int, bool) {
	if len(c.Args) < n {
		c.Err(fmt.Errorf("expect %d badge index(es)", n))
		return nil, false
	}
	indices := make([]int, n)
	for i := range indices {
		v, err := strconv.Atoi(c.Args[i])
		if err != nil {
			c.Err(fmt.Errorf("invalid badge index %q: %v", c.Args[i], err))
			return nil, false
		}
		indices[i] = v
	}
	return indices, true
}

func parseDirection(s string) (link.Direction, error) {
	switch strings.ToLower(s) {
	case "l", "left":
		return link.Left, nil
	case "r", "right":
		return link.Right, nil
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

var (
	// StatusCmd prints the status of all badges.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st", "s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			statuses, err := s.Status()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				s.print(c, statuses, "")
				return
			}
			for _, st := range statuses {
				c.Println(FormatStatus(st))
			}
		},
	}

	// ConnectCmd plugs two adjacent badges.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "INDEX: plug badge INDEX and INDEX+1",
		Func: func(c *ishell.Context) {
			indices, ok := badgeIndex(c, 1)
			if !ok {
				return
			}
			s := ShellFrom(c)
			if err := s.Do(func(chain *badge.SimulatedChain) error { return chain.Connect(indices[0]) }); err != nil {
				c.Err(err)
				return
			}
			s.print(c, "OK", "OK")
		},
	}

	// SplitCmd unplugs two adjacent badges.
	SplitCmd = ishell.Cmd{
		Name:    "split",
		Aliases: []string{"x"},
		Help:    "INDEX: unplug badge INDEX and INDEX+1",
		Func: func(c *ishell.Context) {
			indices, ok := badgeIndex(c, 1)
			if !ok {
				return
			}
			s := ShellFrom(c)
			if err := s.Do(func(chain *badge.SimulatedChain) error { return chain.Split(indices[0]) }); err != nil {
				c.Err(err)
				return
			}
			s.print(c, "OK", "OK")
		},
	}

	// AppendCmd adds a badge at the right end, optionally plugged.
	AppendCmd = ishell.Cmd{
		Name:    "append",
		Aliases: []string{"a"},
		Help:    "[plug]: add a badge at the right end",
		Func: func(c *ishell.Context) {
			plug := len(c.Args) > 0 && c.Args[0] == "plug"
			s := ShellFrom(c)
			var name string
			err := s.Do(func(chain *badge.SimulatedChain) error {
				name = chain.Append().Name
				if plug && chain.Len() > 1 {
					return chain.Connect(chain.Len() - 2)
				}
				return nil
			})
			if err != nil {
				c.Err(err)
				return
			}
			s.print(c, name, name)
		},
	}

	// SendCmd enqueues an application message on a badge.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"enqueue"},
		Help:    "INDEX left|right TYPE [HEX-PAYLOAD]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("expect INDEX DIRECTION TYPE"))
				return
			}
			indices, ok := badgeIndex(c, 1)
			if !ok {
				return
			}
			dir, err := parseDirection(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			t, err := strconv.ParseUint(c.Args[2], 0, 8)
			if err != nil {
				c.Err(fmt.Errorf("invalid type %q: %v", c.Args[2], err))
				return
			}
			var payload []byte
			if len(c.Args) > 3 {
				if payload, err = hex.DecodeString(c.Args[3]); err != nil {
					c.Err(fmt.Errorf("invalid payload: %v", err))
					return
				}
			}
			s := ShellFrom(c)
			var res network.EnqueueResult
			err = s.Do(func(chain *badge.SimulatedChain) error {
				b, err := chain.Badge(indices[0])
				if err != nil {
					return err
				}
				res = b.Handler.EnqueueMessage(dir, wire.Type(t), payload)
				return nil
			})
			if err != nil {
				c.Err(err)
				return
			}
			s.print(c, res.String(), res.String())
		},
	}
)
