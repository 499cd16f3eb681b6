// Package operation composes directory write and read operations.
//
// Every operation carries its target DN, an optional server override, the
// protocol controls to send with it and ordered lists of operations to run
// before and after it. Setters return the operation itself so calls chain:
//
//	op := operation.NewRenameOperation("cn=foo,dc=example,dc=com").
//		SetNewRDN("cn=bar").
//		SetNewLocation("ou=people,dc=example,dc=com").
//		AddControl(operation.TreeDeleteControl())
//
// Arguments returns the positional parameters in the order the executing
// client consumes them; LogFields returns the diagnostic snapshot logged
// around execution.
package operation

import (
	"strings"
)

// Operation is a single directory operation together with its side effects.
type Operation interface {
	// Name is the human readable operation name, e.g. "Rename".
	Name() string
	// DN is the target of the operation (the base DN for queries).
	DN() string
	// Server is the server the operation should be sent to, if overridden.
	Server() string
	Controls() []Control
	PreOperations() []Operation
	PostOperations() []Operation
	// Arguments returns the positional execution parameters.
	Arguments() []any
	// LogFields returns a key/value snapshot for diagnostics.
	LogFields() map[string]any
}

// chain holds the state shared by every operation. T is the concrete
// operation type so the fluent setters can return it.
type chain[T any] struct {
	self     T
	dn       string
	server   string
	controls []Control
	pre      []Operation
	post     []Operation
}

// DN returns the operation target.
func (c *chain[T]) DN() string {
	return c.dn
}

// SetDN sets the operation target.
func (c *chain[T]) SetDN(dn string) T {
	c.dn = dn
	return c.self
}

// Server returns the server override, if any.
func (c *chain[T]) Server() string {
	return c.server
}

// SetServer sends the operation to a specific server.
func (c *chain[T]) SetServer(server string) T {
	c.server = server
	return c.self
}

// Controls returns the attached controls in the order they were added.
func (c *chain[T]) Controls() []Control {
	return c.controls
}

// AddControl appends controls.
func (c *chain[T]) AddControl(controls ...Control) T {
	c.controls = append(c.controls, controls...)
	return c.self
}

// PreOperations returns the operations to run before this one.
func (c *chain[T]) PreOperations() []Operation {
	return c.pre
}

// AddPreOperation appends operations to run before this one.
func (c *chain[T]) AddPreOperation(ops ...Operation) T {
	c.pre = append(c.pre, ops...)
	return c.self
}

// PostOperations returns the operations to run after this one.
func (c *chain[T]) PostOperations() []Operation {
	return c.post
}

// AddPostOperation appends operations to run after this one.
func (c *chain[T]) AddPostOperation(ops ...Operation) T {
	c.post = append(c.post, ops...)
	return c.self
}

func (c *chain[T]) logFields() map[string]any {
	return map[string]any{
		"DN":       c.dn,
		"Server":   c.server,
		"Controls": controlsLog(c.controls),
	}
}

func controlsLog(controls []Control) []string {
	out := make([]string, 0, len(controls))
	for _, control := range controls {
		out = append(out, control.String())
	}
	return out
}

// sensitiveAttributes never have their values logged.
var sensitiveAttributes = []string{"unicodepwd", "userpassword", "password"}

func logValues(attribute string, values []string) any {
	lower := strings.ToLower(attribute)
	for _, name := range sensitiveAttributes {
		if strings.Contains(lower, name) {
			return "******"
		}
	}
	return values
}
