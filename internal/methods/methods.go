// Package methods holds the compiled-in catalogs of display and system power
// methods.
//
// Stored settings reference entries by position, so the order of each
// catalog is part of the on-disk format: append new methods, never reorder.
package methods

import (
	"errors"
	"fmt"
)

// Strategy identifies how an action is carried out.
type Strategy int

const (
	// Log only writes a log line.
	Log Strategy = iota
	// HostBuiltin runs a Kodi built-in by name.
	HostBuiltin
	// OsProcess spawns an external program.
	OsProcess
	// RemoteCall issues a JSON-RPC request against Kodi.
	RemoteCall
)

func (s Strategy) String() string {
	switch s {
	case Log:
		return "log"
	case HostBuiltin:
		return "builtin"
	case OsProcess:
		return "process"
	case RemoteCall:
		return "jsonrpc"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Params is the strategy-specific argument set of an action.
// It is implemented by LogParams, BuiltinParams, ProcessParams and RemoteCallParams.
type Params interface {
	Strategy() Strategy
}

// LogParams is a log-only action.
type LogParams struct {
	Level int
	Msg   string
}

// BuiltinParams names a Kodi built-in.
type BuiltinParams struct {
	Name string
	Wait bool
}

// ProcessParams is the argv (and optional working directory) of an external command.
type ProcessParams struct {
	Argv []string
	Dir  string
}

// RemoteCallParams is a JSON-RPC method with its named parameters.
type RemoteCallParams struct {
	Method string
	Params map[string]any
}

func (LogParams) Strategy() Strategy        { return Log }
func (BuiltinParams) Strategy() Strategy    { return HostBuiltin }
func (ProcessParams) Strategy() Strategy    { return OsProcess }
func (RemoteCallParams) Strategy() Strategy { return RemoteCall }

// NoopID is the id of the "do nothing" entry found at index 0 of every catalog.
const NoopID = "do-nothing"

// MethodEntry is one selectable method. Entries are immutable.
type MethodEntry struct {
	ID    string
	Title string
	Off   Params
	On    Params // nil for system power methods
}

// Strategy returns the invocation strategy of the entry.
func (e *MethodEntry) Strategy() Strategy {
	return e.Off.Strategy()
}

// IsNoop reports whether this is the "do nothing" placeholder.
func (e *MethodEntry) IsNoop() bool {
	return e.ID == NoopID
}

// Catalog is an ordered list of methods for one concern.
type Catalog struct {
	Name    string
	Entries []MethodEntry
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// ErrIndexOutOfRange is returned (wrapped) when a configured index does not
// select an entry.
var ErrIndexOutOfRange = errors.New("method index out of range")

// ResolutionError reports a configured method index that does not resolve.
type ResolutionError struct {
	Catalog string
	Index   int
	Len     int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s method index %d not in [0, %d)", e.Catalog, e.Index, e.Len)
}

func (e *ResolutionError) Unwrap() error {
	return ErrIndexOutOfRange
}

// Lookup returns the entry at index. It never falls back to a default: running
// the wrong power action is worse than running none.
func Lookup(c *Catalog, index int) (*MethodEntry, error) {
	if index < 0 || index >= len(c.Entries) {
		return nil, &ResolutionError{Catalog: c.Name, Index: index, Len: len(c.Entries)}
	}
	return &c.Entries[index], nil
}

// Find returns the entry with the given id and its index.
func Find(c *Catalog, id string) (*MethodEntry, int, bool) {
	for i := range c.Entries {
		if c.Entries[i].ID == id {
			return &c.Entries[i], i, true
		}
	}
	return nil, -1, false
}
