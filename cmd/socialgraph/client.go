package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/socialgraph/cmd/socialgraph/internal"
	"github.com/zero-day-ai/socialgraph/internal/graph"
	"github.com/zero-day-ai/socialgraph/internal/observability"
	"github.com/zero-day-ai/socialgraph/internal/social"
)

// newGraphClient builds the database client. Tests replace it with a mock.
var newGraphClient = func(cfg graph.GraphClientConfig) (graph.GraphClient, error) {
	client, err := graph.NewNeo4jClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// connectGraph creates, instruments and connects the graph client.
func connectGraph(ctx context.Context) (graph.GraphClient, error) {
	cfg := app.cfg.Graph

	inner, err := newGraphClient(cfg)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "invalid graph configuration", err)
	}

	tracer := app.tracerProvider.Tracer(observability.TracerName)
	client := graph.NewTracedClient(inner, tracer, cfg.Database)

	if err := client.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, internal.WrapError(internal.ExitDatabaseError,
			fmt.Sprintf("failed to connect to %s", cfg.Endpoint()), err)
	}

	app.logger.InfoContext(ctx, "connected to graph database", "endpoint", cfg.Endpoint())
	return client, nil
}

// withClient connects, runs fn and always closes the client afterwards. A
// close failure is reported only when fn itself succeeded.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *social.Client) error) (err error) {
	ctx := cmd.Context()

	gc, err := connectGraph(ctx)
	if err != nil {
		return err
	}

	meter := app.meterProvider.Meter(observability.TracerName)
	metrics, err := social.NewMetrics(meter)
	if err != nil {
		app.logger.WarnContext(ctx, "batch metrics disabled", "error", err)
		metrics = nil
	}

	client := social.NewClient(gc,
		social.WithLogger(app.logger),
		social.WithTracer(app.tracerProvider.Tracer(observability.TracerName)),
		social.WithMetrics(metrics),
	)
	defer func() {
		// Close must run even when the command was interrupted.
		closeErr := client.Close(context.WithoutCancel(ctx))
		if closeErr != nil && err == nil {
			err = internal.WrapError(internal.ExitDatabaseError, "failed to close graph client", closeErr)
		}
	}()

	return fn(ctx, client)
}

// printReports writes the reports in the selected output format.
func printReports(cmd *cobra.Command, reports ...social.BatchReport) error {
	return internal.NewFormatter(globalFlags.GetOutputFormat(), cmd.OutOrStdout()).PrintReports(reports...)
}

// reportsError returns a partial failure error when any item across reports
// was not successful.
func reportsError(reports ...social.BatchReport) error {
	total, unsuccessful := 0, 0
	var errs []error
	for _, report := range reports {
		total += len(report.Items)
		unsuccessful += len(report.Items) - report.Succeeded()
		if err := report.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if unsuccessful == 0 {
		return nil
	}
	return internal.WrapError(internal.ExitPartialFailure,
		fmt.Sprintf("%d of %d items unsuccessful", unsuccessful, total), errors.Join(errs...))
}

// pairsFromArgs turns "A B C D" into A->B, C->D.
func pairsFromArgs(args []string) []social.Friendship {
	pairs := make([]social.Friendship, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, social.Friendship{From: args[i], To: args[i+1]})
	}
	return pairs
}

// pairArgs requires a non-empty, even number of arguments.
func pairArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("%s requires pairs of usernames, got %d argument(s)", cmd.CommandPath(), len(args))
	}
	return nil
}
