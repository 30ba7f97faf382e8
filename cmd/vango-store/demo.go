package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/store/pkg/store"
	"github.com/vango-dev/store/pkg/vango"
)

func demoCmd(a *app) *cobra.Command {
	var preserve bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the counter store scenario",
		Long: `Run the reference counter scenario and print the store value and
render counts after each step.

Two components consume one counter store. The output shows that an
update re-renders only the component whose setter ran, and that a
second mount reruns setup (resetting data keys unless --preserve).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner(cmd)
			err := runDemo(cmd.OutOrStdout(), demoOptions{
				preserve: preserve,
				budget:   a.cfg.Runtime.RenderBudget,
				logger:   a.logger,
			})
			if err != nil {
				return err
			}
			success(cmd, "demo complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&preserve, "preserve", false, "Keep data keys when a second consumer mounts")

	return cmd
}

type demoOptions struct {
	preserve bool
	budget   int
	logger   *slog.Logger
}

func newCounterStore(opts ...store.Option) *store.Hook {
	return store.Create(func(set store.Setter) store.State {
		return store.State{
			"count": 0,
			"increment": func() {
				set(func(s store.State) store.State {
					return store.State{"count": store.Get[int](s, "count") + 1}
				})
			},
		}
	}, opts...)
}

func runDemo(w io.Writer, opts demoOptions) error {
	storeOpts := []store.Option{store.Name("counter"), store.WithLogger(opts.logger)}
	if opts.preserve {
		storeOpts = append(storeOpts, store.PreserveOnRemount())
	}
	useCounter := newCounterStore(storeOpts...)

	rt := vango.NewRuntime(vango.WithRenderBudget(opts.budget), vango.WithLogger(opts.logger))
	defer rt.Dispose()

	consumer := vango.Func(func() any {
		return store.Select(useCounter, func(s store.State) int {
			return store.Get[int](s, "count")
		})
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tCOUNT\tA RENDERS\tB RENDERS")

	var a, b *vango.Instance
	row := func(step string) {
		bRenders := "-"
		if b != nil {
			bRenders = fmt.Sprint(b.Renders())
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			step, store.Get[int](useCounter.Snapshot(), "count"), a.Renders(), bRenders)
	}

	a = rt.Mount(consumer)
	if err := rt.Flush(); err != nil {
		return err
	}
	row("mount A")

	store.Action(useCounter.Snapshot(), "increment")()
	if err := rt.Flush(); err != nil {
		return err
	}
	row("increment via A")

	b = rt.Mount(consumer)
	if err := rt.Flush(); err != nil {
		return err
	}
	row("mount B")

	store.Action(useCounter.Snapshot(), "increment")()
	if err := rt.Flush(); err != nil {
		return err
	}
	row("increment via B")

	return tw.Flush()
}
