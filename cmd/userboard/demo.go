package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/userboard/pkg/api"
	"github.com/vango-dev/userboard/pkg/features/optimistic"
	"github.com/vango-dev/userboard/pkg/features/resource"
	"github.com/vango-dev/userboard/pkg/users"
)

// printer serializes output from store callbacks and command code.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func describe(s resource.Snapshot[[]users.User]) string {
	line := s.State.String()
	if s.State == resource.Success {
		pending := 0
		for _, u := range s.Value {
			if u.ID < 0 {
				pending++
			}
		}
		line += fmt.Sprintf(", %d users (%d pending)", len(s.Value), pending)
	}
	if s.State == resource.Failure {
		line += ": " + s.Err.Error()
	}
	if s.Waiting {
		line += ", revalidating"
	}
	return fmt.Sprintf("%s [gen %d]", line, s.Generation)
}

func demoForms(count int, invalid bool) []users.UserForm {
	forms := make([]users.UserForm, 0, count+1)
	for i := 1; i <= count; i++ {
		forms = append(forms, users.UserForm{
			Name:     fmt.Sprintf("Demo User %d", i),
			Username: fmt.Sprintf("demo%d", i),
			Email:    fmt.Sprintf("demo%d@example.com", i),
			Language: users.Languages[i%len(users.Languages)].Value,
		})
	}
	if invalid {
		forms = append(forms, users.UserForm{Username: "nobody", Email: "not-an-email", Language: "auto"})
	}
	return forms
}

func demoCmd(rt *cli) *cobra.Command {
	var (
		count   int
		invalid bool
		wait    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create users optimistically and print every view change",
		Long: `Load the users, then submit several creations at once.

Each submission shows up in the view immediately with a pending id.
Successful ones are replaced by the server record once the list has
been refetched; failed ones disappear and report their error.

Examples:
  userboard demo
  userboard demo --count 5 --invalid
  userboard demo --simulate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), rt, &printer{w: cmd.OutOrStdout()}, demoForms(count, invalid), wait)
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "number of valid users to create")
	cmd.Flags().BoolVar(&invalid, "invalid", false, "also submit one invalid user")
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for all mutations")
	return cmd
}

func runDemo(ctx context.Context, rt *cli, out *printer, forms []users.UserForm, wait time.Duration) error {
	store := rt.app.UserStore(ctx, optimistic.OnTransition(func(tr optimistic.Transition) {
		if tr.Err != nil {
			out.printf("  mutation %d: %s -> %s (%v)\n", tr.TempID, tr.From, tr.To, tr.Err)
			return
		}
		out.printf("  mutation %d: %s -> %s\n", tr.TempID, tr.From, tr.To)
	}))
	defer store.Close()

	stop := store.Subscribe(func(s resource.Snapshot[[]users.User]) {
		out.printf("  view: %s\n", describe(s))
	})
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	store.Load()
	snap, err := store.List().Wait(ctx)
	if err != nil {
		return err
	}
	if snap.State == resource.Failure {
		return snap.Err
	}

	var g errgroup.Group
	var failed atomic.Int32
	for i, m := range store.CreateAll(ctx, forms...) {
		out.printf("  submitted %q as %d\n", forms[i].Username, m.TempID())

		g.Go(func() error {
			u, err := m.Wait(ctx)
			if err != nil {
				failed.Add(1)
				if apiErr, ok := api.AsError(err); ok {
					out.printf("  %d failed: %s (trace %s)\n", m.TempID(), apiErr.Kind, apiErr.TraceID)
				}
				return nil
			}
			out.printf("  %d committed as user %d\n", m.TempID(), u.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	store.Projection().Wait()

	out.printf("\n")
	out.mu.Lock()
	renderUsers(out.w, store.Snapshot().Value)
	out.mu.Unlock()

	out.printf("\n  %d of %d creations succeeded\n", len(forms)-int(failed.Load()), len(forms))
	return nil
}
