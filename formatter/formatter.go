// Package formatter renders log records for the bridge. A Formatter reuses
// its output buffer and is not safe for concurrent use; pool them.
package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/cclog"
	"github.com/lixenwraith/cclog/sanitizer"
)

// DefaultTimestampFormat renders UTC microseconds, e.g. 2024-01-01 12:00:00.000123
const DefaultTimestampFormat = "2006-01-02 15:04:05.000000"

var (
	txtSanitizer  = sanitizer.ForPolicy(sanitizer.PolicyTxt)
	jsonSanitizer = sanitizer.ForPolicy(sanitizer.PolicyJSON)

	// Single-line dumps for values without a native encoding
	dumper = &spew.ConfigState{
		Indent:                  " ",
		MaxDepth:                5,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
)

// Formatter turns a message and key-value fields into one record
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	format          string
	timestampFormat string
	utc             bool
	buf             []byte
	scratch         []byte
}

// New creates a txt formatter. Without a sanitizer the format's own policy applies.
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 {
		san = s[0]
	}
	return &Formatter{
		sanitizer:       san,
		format:          "txt",
		timestampFormat: DefaultTimestampFormat,
		utc:             true,
		buf:             make([]byte, 0, 256),
	}
}

// Type sets the output format, "txt" or "json". Unknown values keep the current one.
func (f *Formatter) Type(format string) *Formatter {
	switch format {
	case "txt", "json":
		f.format = format
	}
	return f
}

// TimestampFormat sets the time layout
func (f *Formatter) TimestampFormat(layout string) *Formatter {
	if layout != "" {
		f.timestampFormat = layout
	}
	return f
}

// LocalTime renders timestamps in the local zone instead of UTC
func (f *Formatter) LocalTime(local bool) *Formatter {
	f.utc = !local
	return f
}

// Format renders one record. The result is valid until the next call.
// Fields are alternating keys and values; a trailing value without a key is
// reported under "arg".
func (f *Formatter) Format(ts time.Time, level cclog.Level, module, msg string, fields []any) []byte {
	f.buf = f.buf[:0]
	if f.utc {
		ts = ts.UTC()
	}
	if f.format == "json" {
		f.formatJSON(ts, level, module, msg, fields)
	} else {
		f.formatTxt(ts, level, module, msg, fields)
	}
	return f.buf
}

// formatTxt writes "TIMESTAMP LEVEL [module] msg k=v ...\n"
func (f *Formatter) formatTxt(ts time.Time, level cclog.Level, module, msg string, fields []any) {
	f.buf = ts.AppendFormat(f.buf, f.timestampFormat)
	f.buf = append(f.buf, ' ')
	f.buf = appendPadded(f.buf, level.String(), 5)
	f.buf = append(f.buf, " ["...)
	f.buf = f.appendTxt(f.buf, module)
	f.buf = append(f.buf, "] "...)
	f.buf = f.appendTxt(f.buf, msg)

	for i := 0; i < len(fields); i += 2 {
		key, val := fieldPair(fields, i)
		f.buf = append(f.buf, ' ')
		f.buf = f.appendTxt(f.buf, key)
		f.buf = append(f.buf, '=')
		f.buf = f.appendTxtValue(f.buf, val)
	}
	f.buf = append(f.buf, '\n')
}

// formatJSON writes {"time":..,"level":..,"module":..,"msg":..,"fields":{..}}\n
func (f *Formatter) formatJSON(ts time.Time, level cclog.Level, module, msg string, fields []any) {
	f.buf = append(f.buf, `{"time":"`...)
	f.buf = ts.AppendFormat(f.buf, f.timestampFormat)
	f.buf = append(f.buf, `","level":"`...)
	f.buf = append(f.buf, level.String()...)
	f.buf = append(f.buf, `","module":`...)
	f.buf = f.appendJSONString(f.buf, module)
	f.buf = append(f.buf, `,"msg":`...)
	f.buf = f.appendJSONString(f.buf, msg)

	if len(fields) > 0 {
		f.buf = append(f.buf, `,"fields":{`...)
		for i := 0; i < len(fields); i += 2 {
			if i > 0 {
				f.buf = append(f.buf, ',')
			}
			key, val := fieldPair(fields, i)
			f.buf = f.appendJSONString(f.buf, key)
			f.buf = append(f.buf, ':')
			f.buf = f.appendJSONValue(f.buf, val)
		}
		f.buf = append(f.buf, '}')
	}
	f.buf = append(f.buf, '}', '\n')
}

// fieldPair extracts the key and value at position i
func fieldPair(fields []any, i int) (string, any) {
	if i+1 >= len(fields) {
		return "arg", fields[i]
	}
	switch k := fields[i].(type) {
	case string:
		return k, fields[i+1]
	case fmt.Stringer:
		return k.String(), fields[i+1]
	default:
		return fmt.Sprint(k), fields[i+1]
	}
}

// appendTxt sanitizes s for txt output
func (f *Formatter) appendTxt(dst []byte, s string) []byte {
	if f.sanitizer != nil {
		return f.sanitizer.Append(dst, s)
	}
	return txtSanitizer.Append(dst, s)
}

// appendTxtValue renders a field value, quoting strings that would break k=v parsing
func (f *Formatter) appendTxtValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return f.appendTxtString(dst, val)
	case []byte:
		return f.appendTxtString(dst, string(val))
	case error:
		return f.appendTxtString(dst, val.Error())
	case time.Time:
		return val.AppendFormat(dst, f.timestampFormat)
	case fmt.Stringer:
		return f.appendTxtString(dst, val.String())
	case nil:
		return append(dst, "nil"...)
	}
	if out, ok := appendScalar(dst, v); ok {
		return out
	}
	return f.appendTxtString(dst, dumper.Sprintf("%+v", v))
}

func (f *Formatter) appendTxtString(dst []byte, s string) []byte {
	f.scratch = f.appendTxt(f.scratch[:0], s)
	if !needsQuotes(f.scratch) {
		return append(dst, f.scratch...)
	}
	dst = append(dst, '"')
	for _, c := range f.scratch {
		if c == '"' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return append(dst, '"')
}

// appendJSONString writes s as a quoted JSON string
func (f *Formatter) appendJSONString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	if f.sanitizer != nil {
		f.scratch = f.sanitizer.Append(f.scratch[:0], s)
		dst = jsonSanitizer.AppendBytes(dst, f.scratch)
	} else {
		dst = jsonSanitizer.Append(dst, s)
	}
	return append(dst, '"')
}

// appendJSONValue renders a field value as a JSON value
func (f *Formatter) appendJSONValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return f.appendJSONString(dst, val)
	case []byte:
		return f.appendJSONString(dst, string(val))
	case error:
		return f.appendJSONString(dst, val.Error())
	case time.Time:
		dst = append(dst, '"')
		dst = val.AppendFormat(dst, f.timestampFormat)
		return append(dst, '"')
	case fmt.Stringer:
		return f.appendJSONString(dst, val.String())
	case nil:
		return append(dst, "null"...)
	case float32, float64:
		// NaN and Inf have no JSON encoding
		if out, ok := appendScalar(nil, v); ok {
			if s := string(out); s == "NaN" || s == "+Inf" || s == "-Inf" {
				return f.appendJSONString(dst, s)
			}
		}
	}
	if out, ok := appendScalar(dst, v); ok {
		return out
	}
	return f.appendJSONString(dst, dumper.Sprintf("%+v", v))
}

// appendScalar handles numbers and booleans
func appendScalar(dst []byte, v any) ([]byte, bool) {
	switch val := v.(type) {
	case bool:
		return strconv.AppendBool(dst, val), true
	case int:
		return strconv.AppendInt(dst, int64(val), 10), true
	case int8:
		return strconv.AppendInt(dst, int64(val), 10), true
	case int16:
		return strconv.AppendInt(dst, int64(val), 10), true
	case int32:
		return strconv.AppendInt(dst, int64(val), 10), true
	case int64:
		return strconv.AppendInt(dst, val, 10), true
	case uint:
		return strconv.AppendUint(dst, uint64(val), 10), true
	case uint8:
		return strconv.AppendUint(dst, uint64(val), 10), true
	case uint16:
		return strconv.AppendUint(dst, uint64(val), 10), true
	case uint32:
		return strconv.AppendUint(dst, uint64(val), 10), true
	case uint64:
		return strconv.AppendUint(dst, val, 10), true
	case float32:
		return strconv.AppendFloat(dst, float64(val), 'g', -1, 32), true
	case float64:
		return strconv.AppendFloat(dst, val, 'g', -1, 64), true
	}
	return dst, false
}

// needsQuotes reports whether a txt value would be ambiguous unquoted
func needsQuotes(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	for _, c := range b {
		switch c {
		case ' ', '=', '"', '\\':
			return true
		}
	}
	return false
}

// appendPadded left-aligns s in a field of width
func appendPadded(dst []byte, s string, width int) []byte {
	dst = append(dst, s...)
	for i := len(s); i < width; i++ {
		dst = append(dst, ' ')
	}
	return dst
}
