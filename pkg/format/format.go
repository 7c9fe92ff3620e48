// Package format serializes a resolved configuration into artifact bytes.
//
// Every format keeps property order and duplicates as produced by the
// resolver, so a consumer applying last-write-wins sees inherited values
// after the profile's own.
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/hconf/pkg/document"
	"github.com/ajitpratap0/hconf/pkg/errors"
	"github.com/ajitpratap0/hconf/pkg/profile"
)

// Format encodes one configuration into one artifact
type Format interface {
	// Name returns the registered name
	Name() string
	// Extension returns the default file extension, without the dot
	Extension() string
	// Description is a one-line summary for listings
	Description() string
	// Encode serializes the configuration's properties in order
	Encode(c *profile.Configuration) ([]byte, error)
}

// Factory creates a Format
type Factory func() Format

var (
	formatsMu sync.RWMutex
	formats   = map[string]Factory{}
)

func init() {
	_ = Register("xml", func() Format { return XML{} })
	_ = Register("json", func() Format { return JSON{} })
	_ = Register("yaml", func() Format { return YAML{} })
	_ = Register("properties", func() Format { return Properties{} })
}

// Register registers a format factory under name
func Register(name string, factory Factory) error {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if _, exists := formats[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "format %s already registered", name)
	}
	formats[name] = factory
	return nil
}

// New creates a registered format
func New(name string) (Format, error) {
	formatsMu.RLock()
	factory, exists := formats[strings.ToLower(name)]
	formatsMu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeCapability, "format %s not found", name).
			WithDetail("available", strings.Join(List(), ","))
	}
	return factory(), nil
}

// List returns the registered format names, sorted
func List() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatValue renders a leaf as text. Sequences are comma-joined, the way
// Hadoop reads list-valued properties; nil is the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	case *document.Map:
		data, err := gojson.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
