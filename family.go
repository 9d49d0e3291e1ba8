// FILE: family.go
package cclog

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Family lazily creates one Logger per worker name, each writing to
// <dir>/<basename>.<name>.log. Workers that each own a Logger never contend
// on a shared buffer.
type Family struct {
	mu       sync.Mutex
	reg      *Registry
	dir      string
	basename string
	capacity uint32
	opts     []Option
	members  map[string]*Logger
	closed   bool
}

// NewFamily prepares a family. No file is opened until Get.
func NewFamily(reg *Registry, dir, basename string, capacity uint32, opts ...Option) (*Family, error) {
	if reg == nil {
		return nil, ErrNotSetUp
	}
	if basename == "" {
		return nil, fmtErrorf("family basename cannot be empty")
	}
	if strings.ContainsRune(basename, filepath.Separator) {
		return nil, fmtErrorf("family basename '%s' must not contain a path separator", basename)
	}
	return &Family{
		reg:      reg,
		dir:      dir,
		basename: basename,
		capacity: capacity,
		opts:     opts,
		members:  make(map[string]*Logger),
	}, nil
}

// PathFor returns the sink path used for a worker name.
func (f *Family) PathFor(name string) string {
	return filepath.Join(f.dir, f.basename+"."+name+".log")
}

// Get returns the Logger for name, creating it on first use.
func (f *Family) Get(name string) (*Logger, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return nil, fmtErrorf("invalid family member name '%s'", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrDestroyed
	}
	if l, ok := f.members[name]; ok {
		return l, nil
	}

	l, err := Create(f.reg, f.PathFor(name), f.capacity, f.opts...)
	if err != nil {
		return nil, err
	}
	f.members[name] = l
	return l, nil
}

// Names returns the created member names in sorted order.
func (f *Family) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.members))
	for name := range f.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flush flushes every member, returning the combined errors.
func (f *Family) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var finalErr error
	for _, l := range f.members {
		finalErr = combineErrors(finalErr, l.Flush())
	}
	return finalErr
}

// Close destroys every member. Later calls are no-ops.
func (f *Family) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var finalErr error
	for name, l := range f.members {
		finalErr = combineErrors(finalErr, l.Destroy())
		delete(f.members, name)
	}
	return finalErr
}
