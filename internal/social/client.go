package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zero-day-ai/socialgraph/internal/graph"
	"github.com/zero-day-ai/socialgraph/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// SpanBatchPrefix prefixes the span name of every batch, e.g.
// "socialgraph.social.create_users".
const SpanBatchPrefix = "socialgraph.social."

// Client runs the social graph operations against a GraphClient.
//
// Every batch processes its items sequentially, one query per item, and never
// stops early on a failing item. Client is not meant for concurrent use.
type Client struct {
	graph   graph.GraphClient
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-item and per-batch records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets the tracer used for batch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithMetrics sets the batch metric instruments.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client that owns g; Close releases it.
func NewClient(g graph.GraphClient, opts ...Option) *Client {
	c := &Client{
		graph:  g,
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// batchItem is one unit of work: a username or an ordered pair.
type batchItem struct {
	label string
	names []string
}

func usernameItems(usernames []string) []batchItem {
	items := make([]batchItem, 0, len(usernames))
	for _, u := range usernames {
		items = append(items, batchItem{label: u, names: []string{u}})
	}
	return items
}

func pairItems(pairs []Friendship) []batchItem {
	items := make([]batchItem, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, batchItem{label: p.String(), names: []string{p.From, p.To}})
	}
	return items
}

// itemFunc executes one item and returns the values to report.
type itemFunc func(ctx context.Context, names []string) ([]string, error)

// CreateUsers merges a User node for each username.
func (c *Client) CreateUsers(ctx context.Context, usernames []string) BatchReport {
	return c.runBatch(ctx, OpCreateUsers, usernameItems(usernames), c.createUser)
}

// CreateFriendships merges a directed FRIENDS_WITH edge for each pair. Pairs
// naming an unknown user are reported as OutcomeNotFound.
func (c *Client) CreateFriendships(ctx context.Context, pairs []Friendship) BatchReport {
	return c.runBatch(ctx, OpCreateFriendships, pairItems(pairs), c.createFriendship)
}

// ListFriends lists the outgoing friends of each username, sorted ascending.
// Unknown users and users without friends both yield an empty list.
func (c *Client) ListFriends(ctx context.Context, usernames []string) BatchReport {
	return c.runBatch(ctx, OpListFriends, usernameItems(usernames), func(ctx context.Context, names []string) ([]string, error) {
		return c.Friends(ctx, names[0])
	})
}

// RemoveFriendships deletes the directed edge From -> To for each pair. The
// reverse edge is never touched. A missing edge is reported as OutcomeNotFound.
func (c *Client) RemoveFriendships(ctx context.Context, pairs []Friendship) BatchReport {
	return c.runBatch(ctx, OpRemoveFriendships, pairItems(pairs), c.removeFriendship)
}

// Friends returns the usernames username has an outgoing FRIENDS_WITH edge to,
// in ascending order. The slice is never nil.
func (c *Client) Friends(ctx context.Context, username string) ([]string, error) {
	if err := validateNames(username); err != nil {
		return nil, err
	}

	res, err := c.graph.Read(ctx, listFriendsQuery, map[string]any{"username": username})
	if err != nil {
		return nil, err
	}
	return res.Strings("friend")
}

// Close releases the graph client. Only the first call reaches the database;
// later calls return the first call's error.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = c.graph.Close(ctx)
		if c.closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close graph client", "error", c.closeErr)
		}
	})
	return c.closeErr
}

func (c *Client) createUser(ctx context.Context, names []string) ([]string, error) {
	if err := validateNames(names...); err != nil {
		return nil, err
	}

	res, err := c.graph.Write(ctx, createUserQuery, map[string]any{"username": names[0]})
	if err != nil {
		return nil, err
	}
	return c.firstRecord(ctx, res, "user not stored", "username")
}

func (c *Client) createFriendship(ctx context.Context, names []string) ([]string, error) {
	if err := validateNames(names...); err != nil {
		return nil, err
	}

	res, err := c.graph.Write(ctx, createFriendshipQuery, map[string]any{
		"user1": names[0],
		"user2": names[1],
	})
	if err != nil {
		return nil, err
	}
	return c.firstRecord(ctx, res, "one or both users do not exist", "user1", "user2")
}

func (c *Client) removeFriendship(ctx context.Context, names []string) ([]string, error) {
	if err := validateNames(names...); err != nil {
		return nil, err
	}

	res, err := c.graph.Write(ctx, removeFriendshipQuery, map[string]any{
		"user1": names[0],
		"user2": names[1],
	})
	if err != nil {
		return nil, err
	}
	return c.firstRecord(ctx, res, "no such friendship", "user1", "user2")
}

// firstRecord extracts columns from the first row of a write result. An empty
// result is a NOT_FOUND error carrying notFoundMsg. Extra rows mean duplicate
// nodes or parallel edges matched; the write has already committed, so the
// item still succeeds.
func (c *Client) firstRecord(ctx context.Context, res graph.QueryResult, notFoundMsg string, columns ...string) ([]string, error) {
	rec, ok := res.First()
	if !ok {
		return nil, types.NewError(types.NOT_FOUND, notFoundMsg)
	}
	if n := len(res.Records); n > 1 {
		c.logger.WarnContext(ctx, "write matched more than one row", "rows", n)
	}

	values := make([]string, 0, len(columns))
	for _, col := range columns {
		v, err := graph.StringField(rec, col)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func validateNames(names ...string) error {
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return types.NewError(types.INVALID_INPUT, "username must not be blank")
		}
	}
	return nil
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case types.CodeOf(err) == types.NOT_FOUND:
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}

func (c *Client) runBatch(ctx context.Context, op Operation, items []batchItem, fn itemFunc) BatchReport {
	ctx, span := c.tracer.Start(ctx, SpanBatchPrefix+op.String())
	defer span.End()

	report := BatchReport{Operation: op, Items: make([]ItemResult, 0, len(items))}
	start := time.Now()

	for _, it := range items {
		// Once the context is done no further queries are issued, but every
		// remaining item still gets a result.
		if err := ctx.Err(); err != nil {
			res := ItemResult{Input: it.label, Outcome: OutcomeFailed, Err: err}
			c.logItem(ctx, op, it, res)
			c.metrics.record(ctx, op, res)
			report.Items = append(report.Items, res)
			continue
		}

		itemStart := time.Now()
		values, err := fn(ctx, it.names)
		res := ItemResult{
			Input:    it.label,
			Outcome:  outcomeOf(err),
			Values:   values,
			Err:      err,
			Duration: time.Since(itemStart),
		}
		if res.Outcome == OutcomeOK && res.Values == nil {
			res.Values = []string{}
		}

		c.logItem(ctx, op, it, res)
		c.metrics.record(ctx, op, res)
		report.Items = append(report.Items, res)
	}

	span.SetAttributes(
		attribute.Int("socialgraph.batch.size", len(items)),
		attribute.Int("socialgraph.batch.succeeded", report.Succeeded()),
		attribute.Int("socialgraph.batch.not_found", report.NotFound()),
		attribute.Int("socialgraph.batch.failed", report.Failed()),
	)
	if report.OK() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d items unsuccessful", len(items)-report.Succeeded(), len(items)))
	}

	c.logger.InfoContext(ctx, "batch complete",
		"operation", op.String(),
		"items", len(items),
		"succeeded", report.Succeeded(),
		"not_found", report.NotFound(),
		"failed", report.Failed(),
		"duration", time.Since(start),
	)
	return report
}

// logItem writes one record per item. Unsuccessful items are logged at error
// level whether the cause was a fault or an empty match.
func (c *Client) logItem(ctx context.Context, op Operation, it batchItem, res ItemResult) {
	if res.Outcome != OutcomeOK {
		args := []any{"outcome", res.Outcome.String(), "error", res.Err}
		args = append(args, inputAttrs(it)...)
		c.logger.ErrorContext(ctx, failureMessage(op), args...)
		return
	}

	switch op {
	case OpCreateUsers:
		c.logger.InfoContext(ctx, "created user", "username", res.Values[0])
	case OpCreateFriendships:
		c.logger.InfoContext(ctx, "created friendship", "user1", res.Values[0], "user2", res.Values[1])
	case OpListFriends:
		c.logger.InfoContext(ctx, "listed friends", "username", it.label, "friends", res.Values)
	case OpRemoveFriendships:
		c.logger.InfoContext(ctx, "removed friendship", "user1", res.Values[0], "user2", res.Values[1])
	}
}

func failureMessage(op Operation) string {
	switch op {
	case OpCreateUsers:
		return "failed to create user"
	case OpCreateFriendships:
		return "failed to create friendship"
	case OpListFriends:
		return "failed to list friends"
	case OpRemoveFriendships:
		return "failed to remove friendship"
	default:
		return "batch item failed"
	}
}

func inputAttrs(it batchItem) []any {
	if len(it.names) == 2 {
		return []any{"user1", it.names[0], "user2", it.names[1]}
	}
	return []any{"username", it.names[0]}
}
