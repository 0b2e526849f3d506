package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/reconcile"
	"github.com/danhigham/telecache/internal/render"
	"github.com/danhigham/telecache/internal/telegram"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Log in if needed and store every dialog's peers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.connect(cmd.Context(), func(ctx context.Context, client *telegram.Client, _ *reconcile.Reconciler) error {
				n, err := client.SyncDialogs(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "synced %d dialogs\n", n)
				return err
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <peer>",
		Short: "Store recent messages of a peer (e.g. channel:123)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := domain.ParsePeerID(args[0])
			if err != nil {
				return err
			}
			return a.connect(cmd.Context(), func(ctx context.Context, client *telegram.Client, _ *reconcile.Reconciler) error {
				n, err := client.SyncHistory(ctx, peerID, limit)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %d messages\n", n)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of messages to fetch.")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <peer>",
		Short: "Fetch and merge the full cached data of a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRefresh(cmd, args[0], (*reconcile.Reconciler).RefreshCachedData)
		},
	}
}

func newSettingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings <peer>",
		Short: "Make sure the status settings of a peer are cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRefresh(cmd, args[0], (*reconcile.Reconciler).RefreshStatusSettings)
		},
	}
}

func (a *app) runRefresh(cmd *cobra.Command, arg string, refresh func(*reconcile.Reconciler, context.Context, domain.PeerID) (bool, error)) error {
	peerID, err := domain.ParsePeerID(arg)
	if err != nil {
		return err
	}
	return a.connect(cmd.Context(), func(ctx context.Context, _ *telegram.Client, r *reconcile.Reconciler) error {
		ok, err := refresh(r, ctx, peerID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
		return err
	})
}

func newShowCmd(a *app) *cobra.Command {
	var (
		limit int
		raw   bool
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "show <peer>",
		Short: "Render what the store knows about a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerID, err := domain.ParsePeerID(args[0])
			if err != nil {
				return err
			}
			v, err := render.Load(cmd.Context(), a.store, peerID, limit)
			if err != nil {
				return err
			}
			md := render.Markdown(v)
			out := cmd.OutOrStdout()
			if raw {
				_, err = fmt.Fprint(out, md)
				return err
			}
			body, err := render.Terminal(md, style, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%s\n%s", render.Header(v), body)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent messages to show.")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling.")
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style (dark, light, notty).")
	cmd.Flags().IntVar(&width, "width", 100, "Word wrap width.")
	return cmd
}
