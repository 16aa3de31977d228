package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/notify"
	"github.com/mapleins/community/internal/roomview"
)

const visibleMessages = 30

var statusMessages = map[roomview.Status]string{
	roomview.StatusLoading:    "Loading room...",
	roomview.StatusNoIdentity: "You're not signed in. Run `roomchat signin` first.",
	roomview.StatusNotMember:  "You're not a member of this room. Try `roomchat rooms join <id>`.",
	roomview.StatusNotFound:   "This room doesn't exist or couldn't be loaded.",
	roomview.StatusClosed:     "Room closed.",
}

// bellTone rings the terminal bell alongside the shared PCM tone.
type bellTone struct {
	out  io.Writer
	tone *notify.Tone
}

func (b bellTone) Play() error {
	fmt.Fprint(b.out, "\a")
	return b.tone.Play()
}

// screen redraws the room on every change. Changes arrive from several
// goroutines.
type screen struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *screen) draw(snap roomview.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\033[H\033[2J")
	fmt.Fprint(s.out, render(snap))
}

func render(snap roomview.Snapshot) string {
	var b strings.Builder

	title := snap.Room.Name
	if title == "" {
		title = snap.RoomId
	}
	b.WriteString(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf(" %s ", title)))
	b.WriteString(color.Gray.Sprintf("  feed: %s\n\n", snap.Feed))

	if msg, ok := statusMessages[snap.Status]; ok {
		b.WriteString(msg + "\n")
		return b.String()
	}

	msgs := snap.Messages
	if len(msgs) > visibleMessages {
		msgs = msgs[len(msgs)-visibleMessages:]
	}
	if len(msgs) == 0 {
		b.WriteString(color.Gray.Sprint("No messages yet. Say hello!\n"))
	}
	for _, m := range msgs {
		b.WriteString(color.Gray.Sprint(m.CreatedAt.Local().Format("15:04")))
		b.WriteString(" ")
		b.WriteString(color.Cyan.Sprint(m.Label))
		b.WriteString(": ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if snap.SendErr != nil {
		b.WriteString(color.Red.Sprintf("Couldn't send: %v. Press enter to retry.\n", snap.SendErr))
	}
	if snap.Sending {
		b.WriteString(color.Gray.Sprint("sending...\n"))
	}
	b.WriteString("> " + snap.Draft)
	return b.String()
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "open a room; type to send, /room <id> to switch, /quit to leave",
		ArgsUsage: "<room-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tone-out",
				Usage:   "file or pipe receiving the notification tone as 16-bit PCM",
				EnvVars: []string{"ROOMCHAT_TONE_OUT"},
			},
		},
		Action: func(cctx *cli.Context) error {
			if cctx.NArg() != 1 {
				return cli.Exit("usage: roomchat chat <room-id>", 2)
			}

			c, _, err := newClient(cctx)
			if err != nil {
				return err
			}

			tone := notify.Shared()
			defer notify.CloseShared()
			if p := cctx.String("tone-out"); p != "" {
				f, err := os.OpenFile(p, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
				if err != nil {
					return err
				}
				tone.SetOutput(f)
			}

			scr := &screen{out: os.Stdout}
			view := roomview.NewView(zap.L().Named("roomview"), roomview.Deps{
				Identity: c,
				Profiles: c,
				Senders:  c,
				Rooms:    c,
				Feed:     c,
				Tone:     bellTone{out: os.Stdout, tone: tone},
				OnChange: scr.draw,
			})
			defer view.Close()

			return chatLoop(cctx.Context, view, os.Stdin, cctx.Args().First())
		},
	}
}

// chatLoop opens roomId and feeds stdin lines to the view until EOF or /quit.
func chatLoop(ctx context.Context, view *roomview.View, in io.Reader, roomId string) error {
	go view.Open(ctx, roomId)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			switch cmd := strings.TrimSpace(line); {
			case cmd == "/quit":
				return nil
			case strings.HasPrefix(cmd, "/room "):
				go view.Open(ctx, strings.TrimSpace(strings.TrimPrefix(cmd, "/room ")))
			default:
				if line != "" {
					view.SetDraft(line)
				}
				go func() {
					err := view.Send(ctx)
					if err != nil && !errors.Is(err, roomview.ErrEmptyMessage) {
						zap.L().Debug("send", zap.Error(err))
					}
				}()
			}
		}
	}
}
