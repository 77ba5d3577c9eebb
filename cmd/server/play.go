package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"turtlesoup/internal/client"
	"turtlesoup/internal/model"
)

type playOptions struct {
	server   string
	room     string
	interval time.Duration
}

func newPlayCmd(v *viper.Viper) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join a room from the terminal. Each line typed is asked as a question.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.room) == "" {
				return errors.New("--room is required")
			}
			return play(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.server, "server", "http://localhost:3001", "turtlesoup server url (env: TURTLESOUP_SERVER)")
	fs.StringVarP(&opts.room, "room", "r", "", "room to start or join (env: TURTLESOUP_ROOM)")
	fs.DurationVar(&opts.interval, "interval", client.DefaultPollInterval, "status poll interval (env: TURTLESOUP_INTERVAL)")
	bindEnv(v, fs)

	return cmd
}

// printer serializes terminal output from the poller and the input loop.
type printer struct {
	mu   sync.Mutex
	out  io.Writer
	view client.View
}

func (p *printer) status(st model.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.view.Apply(st) {
		fmt.Fprintf(p.out, "Q: %s\nA: %s\n", e.Question, e.Answer)
		if e.Verdict == model.VerdictSolved {
			fmt.Fprintln(p.out, "*** solved ***")
		}
	}
}

func (p *printer) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func play(ctx context.Context, opts *playOptions, in io.Reader, out io.Writer) error {
	c := client.New(opts.server, nil)
	p := &printer{out: out}

	start, err := c.Start(ctx, opts.room)
	if err != nil {
		return err
	}
	if start.IsNewGame {
		p.line("Started a new game in room %s.", opts.room)
	} else {
		p.line("Joined room %s.", opts.room)
	}
	p.line("\n%s\n", start.Puzzle)
	if start.History != nil {
		p.status(model.Status{Status: model.RoomPlaying, SessionID: start.SessionID, History: start.History})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s := &client.Synchronizer{Client: c, RoomID: opts.room, Interval: opts.interval, OnStatus: p.status}
		if err := s.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					cancel()
					return nil
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				if _, err := c.Ask(gctx, opts.room, line); err != nil {
					p.line("! %v", err)
					continue
				}
				if st, err := c.Status(gctx, opts.room); err == nil {
					p.status(st)
				}
			}
		}
	})
	return g.Wait()
}
