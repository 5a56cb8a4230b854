package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"intake-go/internal/intake"
	"intake-go/internal/model"
	"intake-go/internal/tracker"
)

const prompt = "intake> "

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Session is an interactive review console over an IntakeApp. Each input
// line is parsed as a command by a cobra tree private to the session.
type Session struct {
	app    *IntakeApp
	in     io.Reader
	out    io.Writer
	prompt bool

	root   *cobra.Command
	quit   bool
	notice chan tracker.Event
}

// NewSession creates a Session reading commands from in and writing to
// out. The prompt is printed only when interactive is true.
func NewSession(a *IntakeApp, in io.Reader, out io.Writer, interactive bool) *Session {
	s := &Session{
		app:    a,
		in:     in,
		out:    &syncWriter{w: out},
		prompt: interactive,
		notice: make(chan tracker.Event, 64),
	}
	s.root = s.newRootCmd()
	return s
}

// Run starts auto-advance and processes commands until quit, end of
// input, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := s.app.Subscribe(s.enqueueNotice)
	defer unsubscribe()

	if err := s.app.Start(ctx); err != nil {
		return fmt.Errorf("starting tracker: %w", err)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go s.readLines(ctx, lines, readErr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.loop(gctx, lines, readErr)
	})
	g.Go(func() error {
		s.printNotices(gctx)
		return nil
	})
	return g.Wait()
}

// readLines feeds input lines to the command loop. It exits at end of
// input or once ctx is done and nobody is receiving.
func (s *Session) readLines(ctx context.Context, lines chan<- string, readErr chan<- error) {
	defer close(lines)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		readErr <- err
	}
}

func (s *Session) loop(ctx context.Context, lines <-chan string, readErr <-chan error) error {
	for !s.quit {
		if s.prompt {
			fmt.Fprint(s.out, prompt)
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("reading input: %w", err)
				default:
					return nil
				}
			}
			s.Execute(ctx, line)
		}
	}
	return nil
}

// Execute runs a single command line. Errors are reported to the output
// and never end the session.
func (s *Session) Execute(ctx context.Context, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	resetHelpFlags(s.root)
	s.root.SetArgs(args)
	if err := s.root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func (s *Session) enqueueNotice(ev tracker.Event) {
	if ev.Type != tracker.EventAdvanced {
		return
	}
	select {
	case s.notice <- ev:
	default:
	}
}

// printNotices announces documents that became ready for review. Pending
// notices are flushed before it returns.
func (s *Session) printNotices(ctx context.Context) {
	for {
		select {
		case ev := <-s.notice:
			s.announce(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-s.notice:
					s.announce(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *Session) announce(ev tracker.Event) {
	name := ev.DocumentID
	if doc, err := s.app.Document(ev.DocumentID); err == nil {
		name = doc.Name
	}
	fmt.Fprintf(s.out, "* %s is ready for review (%s)\n", name, shortID(ev.DocumentID))
}

// resolveID accepts a full document ID or a unique prefix of one.
func (s *Session) resolveID(id string) (string, error) {
	docs, err := s.app.Documents()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, d := range docs {
		if d.ID == id {
			return id, nil
		}
		if strings.HasPrefix(d.ID, id) {
			matches = append(matches, d.ID)
		}
	}
	switch len(matches) {
	case 0:
		return id, nil // the tracker reports it as not found
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("ambiguous document id %q matches %d documents", id, len(matches))
}

func (s *Session) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "review",
		Short:         "Review intake documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(s.out)
	root.SetErr(s.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "list [STATUS]",
			Short: "List documents, optionally only those in one status",
			Args:  cobra.MaximumNArgs(1),
			RunE:  s.runList,
		},
		&cobra.Command{
			Use:   "counts",
			Short: "Show the number of documents in each status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				counts, err := s.app.Counts()
				if err != nil {
					return err
				}
				RenderCounts(cmd.OutOrStdout(), counts)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show ID",
			Short: "Show a document with its extracted data",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := s.resolveID(args[0])
				if err != nil {
					return err
				}
				doc, err := s.app.Document(id)
				if err != nil {
					return err
				}
				RenderDocument(cmd.OutOrStdout(), doc)
				return nil
			},
		},
		&cobra.Command{
			Use:   "approve ID",
			Short: "Approve a document awaiting review",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := s.resolveID(args[0])
				if err != nil {
					return err
				}
				if err := s.app.Approve(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Approved %s\n", shortID(id))
				return nil
			},
		},
		&cobra.Command{
			Use:                "reject ID [REASON...]",
			Short:              "Reject a document",
			DisableFlagParsing: true,
			RunE:               s.runReject,
		},
		&cobra.Command{
			Use:   "add PATH...",
			Short: "Queue local files for submission",
			Args:  cobra.MinimumNArgs(1),
			RunE:  s.runAdd,
		},
		&cobra.Command{
			Use:   "pending",
			Short: "List files waiting for submission",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				RenderPending(cmd.OutOrStdout(), s.app.Pending())
			},
		},
		&cobra.Command{
			Use:   "remove NAME",
			Short: "Remove a file from the pending set",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !s.app.RemovePending(args[0]) {
					return fmt.Errorf("no pending file named %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "submit",
			Short: "Submit pending files for processing",
			Args:  cobra.NoArgs,
			RunE:  s.runSubmit,
		},
		&cobra.Command{
			Use:   "batches",
			Short: "List submission batches and their documents",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				batches, err := s.app.Batches()
				if err != nil {
					return err
				}
				RenderBatches(cmd.OutOrStdout(), batches)
				return nil
			},
		},
		&cobra.Command{
			Use:   "tick",
			Short: "Run one auto-advance check now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := s.app.Tick()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Advanced %d document(s)\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "history [N]",
			Short: "Show recent review activity",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				limit := 20
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("history limit must be a positive number, got %q", args[0])
					}
					limit = n
				}
				RenderHistory(cmd.OutOrStdout(), s.app.History(limit))
				return nil
			},
		},
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"exit", "q"},
			Short:   "End the session",
			Args:    cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				s.quit = true
			},
		},
	)
	return root
}

func (s *Session) runList(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		docs, err := s.app.Documents()
		if err != nil {
			return err
		}
		RenderDocuments(cmd.OutOrStdout(), docs)
		return nil
	}

	status := model.Status(args[0])
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", args[0])
	}
	groups, err := s.app.Groups()
	if err != nil {
		return err
	}
	RenderDocuments(cmd.OutOrStdout(), groups[status])
	return nil
}

func (s *Session) runReject(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("reject requires a document id")
	}
	id, err := s.resolveID(args[0])
	if err != nil {
		return err
	}

	if err := s.app.Reject(id, strings.Join(args[1:], " ")); err != nil {
		return err
	}

	doc, err := s.app.Document(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s: %s\n", shortID(id), doc.RejectionReason)
	return nil
}

func (s *Session) runAdd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, path := range args {
		f, err := s.app.QueueFile(path)
		var verr *intake.ValidationError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintf(out, "Refused %v\n", verr)
		case err != nil:
			fmt.Fprintf(out, "Skipped %s: %v\n", path, err)
		default:
			fmt.Fprintf(out, "Queued %s\n", f.Name)
		}
	}
	return nil
}

func (s *Session) runSubmit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	n := len(s.app.Pending())
	if n == 0 {
		fmt.Fprintln(out, "Nothing to submit.")
		return nil
	}

	fmt.Fprintf(out, "Submitting %d file(s)...\n", n)
	docs, err := s.app.Submit(cmd.Context())
	if errors.Is(err, intake.ErrSubmissionFailed) {
		fmt.Fprintf(out, "Upload failed, %d file(s) still pending: %v\n", len(s.app.Pending()), err)
		return nil
	}
	if err != nil {
		return err
	}

	for _, d := range docs {
		fmt.Fprintf(out, "Processing %s (%s)\n", d.Name, shortID(d.ID))
	}
	return nil
}

// resetHelpFlags clears --help left set by a previous line; cobra keeps
// flag values between executions of the same tree.
func resetHelpFlags(c *cobra.Command) {
	if f := c.Flags().Lookup("help"); f != nil {
		f.Value.Set("false")
		f.Changed = false
	}
	for _, sub := range c.Commands() {
		resetHelpFlags(sub)
	}
}

// syncWriter serializes writes from the command loop and the notice printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
