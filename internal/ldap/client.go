package ldap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

const tracerName = "github.com/barthuttinga/ldaptools/internal/ldap"

// DialFunc opens an authenticated connection to the server at rawURL. The
// returned closer releases it.
type DialFunc func(ctx context.Context, config *ConnectionConfig, rawURL string) (Conn, func(), error)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithMetrics records every executed operation in m.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithDialer sets how connections to overridden servers are opened.
func WithDialer(dial DialFunc) ClientOption {
	return func(c *Client) {
		c.dial = dial
	}
}

// Client executes composed operations against a directory server.
type Client struct {
	conn    Conn
	config  *ConnectionConfig
	metrics *Metrics
	tracer  trace.Tracer
	dial    DialFunc

	mu      sync.Mutex
	servers map[string]Conn
	closers []func()
}

// NewClient wraps an established connection.
func NewClient(conn Conn, config *ConnectionConfig, opts ...ClientOption) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	c := &Client{
		conn:    conn,
		config:  config,
		tracer:  otel.Tracer(tracerName),
		dial:    DialServer,
		servers: make(map[string]Conn),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to config.URL, binds when a bind DN is configured and
// returns a client over that connection.
func Dial(ctx context.Context, config *ConnectionConfig, opts ...ClientOption) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection configuration: %w", err)
	}

	c := NewClient(nil, config, opts...)

	conn, closer, err := c.dial(ctx, config, config.URL)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.closers = append(c.closers, closer)

	return c, nil
}

// DialServer is the default DialFunc.
func DialServer(ctx context.Context, config *ConnectionConfig, rawURL string) (Conn, func(), error) {
	start := time.Now()
	tflog.SubsystemDebug(ctx, SubsystemLDAP, "Connecting to directory server", map[string]any{
		"url":             rawURL,
		"bind_dn":         config.BindDN,
		"skip_tls_verify": config.SkipTLSVerify,
	})

	tlsConfig := &tls.Config{
		InsecureSkipVerify: config.SkipTLSVerify, // #nosec G402 -- opt-in via configuration
		MinVersion:         tls.VersionTLS12,
	}
	dialer := &net.Dialer{Timeout: config.Timeout}

	conn, err := ldap.DialURL(rawURL, ldap.DialWithDialer(dialer), ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		tflog.SubsystemError(ctx, SubsystemLDAP, "Failed to connect", map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		})
		return nil, nil, NewConnectionError(fmt.Sprintf("failed to connect to %s", rawURL), true, err)
	}
	conn.SetTimeout(config.Timeout)

	if config.BindDN != "" {
		if err := conn.Bind(config.BindDN, config.BindPassword); err != nil {
			conn.Close()
			return nil, nil, WrapError("Bind", config.BindDN, err)
		}
	}

	tflog.SubsystemInfo(ctx, SubsystemLDAP, "Connected to directory server", map[string]any{
		"url":         rawURL,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return conn, func() { conn.Close() }, nil
}

// Close releases every connection the client opened.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, closer := range c.closers {
		if closer != nil {
			closer()
		}
	}
	c.closers = nil
	c.servers = make(map[string]Conn)
}

// Execute runs the pre-operations of op, op itself and then its
// post-operations, depth first. The first failure stops the chain. Queries
// return the matching entries; writes return nil.
func (c *Client) Execute(ctx context.Context, op operation.Operation) ([]*ldap.Entry, error) {
	if op == nil {
		return nil, errors.New("cannot execute a nil operation")
	}

	for _, pre := range op.PreOperations() {
		if _, err := c.Execute(ctx, pre); err != nil {
			return nil, err
		}
	}

	rows, err := c.execute(ctx, op)
	if err != nil {
		return nil, err
	}

	for _, post := range op.PostOperations() {
		if _, err := c.Execute(ctx, post); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

func (c *Client) execute(ctx context.Context, op operation.Operation) ([]*ldap.Entry, error) {
	attrs := []attribute.KeyValue{
		attribute.String("ldap.operation", op.Name()),
		attribute.String("ldap.dn", op.DN()),
	}
	if op.Server() != "" {
		attrs = append(attrs, attribute.String("ldap.server", op.Server()))
	}
	ctx, span := c.tracer.Start(ctx, "ldap."+op.Name(), trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	var rows []*ldap.Entry

	err := LogOperation(ctx, SubsystemLDAP, op.Name(), SanitizeFields(op.LogFields()), func() error {
		conn, err := c.connFor(ctx, op.Server())
		if err != nil {
			return err
		}

		call, err := c.request(conn, op, &rows)
		if err != nil {
			return err
		}

		return c.withRetry(ctx, call)
	})

	outcome := OutcomeSuccess
	if err != nil {
		err = WrapError(op.Name(), op.DN(), err)
		LogLDAPError(ctx, SubsystemLDAP, op.Name(), err, map[string]any{"dn": op.DN()})
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		outcome = OutcomeError
		rows = nil
	}
	c.metrics.ObserveOperation(op.Name(), outcome, time.Since(start))

	return rows, err
}

// request builds the protocol request for op once and returns the call that
// sends it, so retries resend the same request.
func (c *Client) request(conn Conn, op operation.Operation, rows *[]*ldap.Entry) (func() error, error) {
	switch op := op.(type) {
	case *operation.AddOperation:
		req := op.Request()
		return func() error { return conn.Add(req) }, nil

	case *operation.DeleteOperation:
		req := op.Request()
		return func() error { return conn.Del(req) }, nil

	case *operation.ModifyOperation:
		// Nothing left to change on the entry itself; side effects still run.
		if len(op.Batches()) == 0 {
			return func() error { return nil }, nil
		}
		req, err := op.Request()
		if err != nil {
			return nil, err
		}
		return func() error { return conn.Modify(req) }, nil

	case *operation.RenameOperation:
		req := op.Request()
		return func() error { return conn.ModifyDN(req) }, nil

	case *operation.QueryOperation:
		req := op.Request()
		if req.BaseDN == "" {
			req.BaseDN = c.config.BaseDN
		}
		return func() error {
			var (
				result *ldap.SearchResult
				err    error
			)
			if op.UsePaging() {
				pageSize := op.PageSize()
				if pageSize == 0 {
					pageSize = c.config.PageSize
				}
				result, err = conn.SearchWithPaging(req, pageSize)
			} else {
				result, err = conn.Search(req)
			}
			if err != nil {
				return err
			}
			*rows = result.Entries
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported operation type %T", op)
	}
}

// connFor returns the connection for a server override, dialing it on first
// use. An empty server or the configured URL selects the main connection.
func (c *Client) connFor(ctx context.Context, server string) (Conn, error) {
	if server == "" {
		return c.mainConn()
	}

	target := c.serverURL(server)
	if target == c.config.URL {
		return c.mainConn()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.servers[target]; ok {
		return conn, nil
	}
	if c.dial == nil {
		return nil, fmt.Errorf("no dialer configured for server %s", server)
	}

	conn, closer, err := c.dial(ctx, c.config, target)
	if err != nil {
		return nil, err
	}
	c.servers[target] = conn
	c.closers = append(c.closers, closer)
	return conn, nil
}

func (c *Client) mainConn() (Conn, error) {
	if c.conn == nil {
		return nil, NewConnectionError("client is not connected", false, nil)
	}
	return c.conn, nil
}

// serverURL turns a bare host or host:port into a URL with the scheme of the
// configured URL.
func (c *Client) serverURL(server string) string {
	if strings.Contains(server, "://") {
		return server
	}
	scheme := "ldap"
	if u, err := url.Parse(c.config.URL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	return scheme + "://" + server
}

// withRetry executes an operation with retry logic.
func (c *Client) withRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	backoff := c.config.InitialBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			tflog.SubsystemDebug(ctx, SubsystemLDAP, "Retrying operation", map[string]any{
				"attempt":    attempt,
				"max_retry":  c.config.MaxRetries,
				"backoff_ms": backoff.Milliseconds(),
				"last_error": lastErr.Error(),
			})
		}

		err := operation()
		if err == nil {
			if attempt > 0 {
				tflog.SubsystemInfo(ctx, SubsystemLDAP, "Operation succeeded after retries", map[string]any{
					"total_attempts": attempt + 1,
				})
			}
			return nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			return err
		}

		if attempt == c.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			tflog.SubsystemWarn(ctx, SubsystemLDAP, "Operation cancelled during retry", map[string]any{
				"context_error": ctx.Err().Error(),
				"attempt":       attempt + 1,
			})
			return ctx.Err()
		case <-time.After(backoff):
			backoff = min(time.Duration(float64(backoff)*c.config.BackoffFactor), c.config.MaxBackoff)
		}
	}

	tflog.SubsystemError(ctx, SubsystemLDAP, "Operation failed after all retries exhausted", map[string]any{
		"total_attempts": c.config.MaxRetries + 1,
		"final_error":    lastErr.Error(),
	})

	return NewConnectionError("operation failed after retries", false, lastErr)
}
