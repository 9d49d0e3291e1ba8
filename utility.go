// FILE: utility.go
package cclog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors
var (
	// ErrNotSetUp is returned when an operation runs before its subsystem was set up
	ErrNotSetUp = errors.New("cclog: not set up")
	// ErrAlreadySetUp is returned by a second Setup without an intervening Teardown
	ErrAlreadySetUp = errors.New("cclog: already set up")
	// ErrDestroyed is returned by any operation on a destroyed logger
	ErrDestroyed = errors.New("cclog: logger destroyed")
	// ErrOpen matches every *OpenError via errors.Is
	ErrOpen = errors.New("cclog: open failed")
	// ErrBufferUnavailable is returned when a buffer source cannot supply a buffer
	ErrBufferUnavailable = errors.New("cclog: buffer unavailable")
)

// OpenError reports a sink that could not be opened or created.
type OpenError struct {
	Op   string // "create" or "reopen"
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return "cclog: " + e.Op + " '" + e.Path + "': " + e.Err.Error()
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrOpen) match any OpenError.
func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "cclog: ") {
		format = "cclog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
