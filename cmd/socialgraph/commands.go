package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/socialgraph/cmd/socialgraph/internal"
	"github.com/zero-day-ai/socialgraph/internal/scenario"
	"github.com/zero-day-ai/socialgraph/internal/social"
	"github.com/zero-day-ai/socialgraph/internal/types"
	"github.com/zero-day-ai/socialgraph/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := internal.NewFormatter(globalFlags.GetOutputFormat(), cmd.OutOrStdout())
			return formatter.PrintVersion(version.String(), version.Info())
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the graph database",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := internal.NewFormatter(globalFlags.GetOutputFormat(), cmd.OutOrStdout())

	gc, err := connectGraph(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := gc.Close(context.WithoutCancel(ctx)); closeErr != nil {
			app.logger.ErrorContext(ctx, "failed to close graph client", "error", closeErr)
		}
	}()

	status := gc.Health(ctx)
	if err := formatter.PrintHealth(status); err != nil {
		return err
	}

	if !status.IsHealthy() {
		return internal.NewCLIError(internal.ExitDatabaseError, "graph database is unhealthy")
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scenario of batches against the graph",
		Long: `Run a sequence of batches. Without --scenario the built-in demo creates
five users, links them, lists friends, removes two friendships and lists
again.

Scenario files look like:

  steps:
    - create_users: [Alice, Bob]
    - create_friendships: [[Alice, Bob]]
    - list_friends: [Alice]
    - remove_friendships: [[Alice, Bob]]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := scenario.Default()
			if scenarioPath != "" {
				loaded, err := scenario.Load(scenarioPath)
				if err != nil {
					if types.CodeOf(err) == types.INVALID_INPUT {
						return internal.WrapError(internal.ExitConfigError, "invalid scenario", err)
					}
					return err
				}
				sc = loaded
			}

			return withClient(cmd, func(ctx context.Context, client *social.Client) error {
				app.logger.InfoContext(ctx, "running scenario", "scenario", sc.Name, "steps", len(sc.Steps))

				reports, runErr := scenario.Run(ctx, client, sc)
				if err := printReports(cmd, reports...); err != nil {
					return err
				}
				if runErr != nil {
					return runErr
				}
				return reportsError(reports...)
			})
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a scenario YAML file (default: built-in demo)")
	return cmd
}

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "create NAME...",
		Short: "Create users; existing users are left unchanged",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, client *social.Client) social.BatchReport {
				return client.CreateUsers(ctx, args)
			})
		},
	})

	return usersCmd
}

func newFriendsCmd() *cobra.Command {
	friendsCmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage directed friendships",
	}

	friendsCmd.AddCommand(&cobra.Command{
		Use:   "add FROM TO [FROM TO]...",
		Short: "Create FROM -> TO friendships between existing users",
		Args:  pairArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, client *social.Client) social.BatchReport {
				return client.CreateFriendships(ctx, pairsFromArgs(args))
			})
		},
	})

	friendsCmd.AddCommand(&cobra.Command{
		Use:   "remove FROM TO [FROM TO]...",
		Short: "Remove FROM -> TO friendships; the reverse direction is untouched",
		Args:  pairArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, client *social.Client) social.BatchReport {
				return client.RemoveFriendships(ctx, pairsFromArgs(args))
			})
		},
	})

	friendsCmd.AddCommand(&cobra.Command{
		Use:   "list NAME...",
		Short: "List each user's outgoing friends in ascending order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, func(ctx context.Context, client *social.Client) social.BatchReport {
				return client.ListFriends(ctx, args)
			})
		},
	})

	return friendsCmd
}

// runBatch runs a single batch and reports it.
func runBatch(cmd *cobra.Command, batch func(ctx context.Context, client *social.Client) social.BatchReport) error {
	return withClient(cmd, func(ctx context.Context, client *social.Client) error {
		report := batch(ctx, client)
		if err := printReports(cmd, report); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return reportsError(report)
	})
}
