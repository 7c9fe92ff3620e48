package profile

import (
	"strings"

	"github.com/ajitpratap0/hconf/pkg/document"
)

// IsMetadataKey reports whether a top-level key describes the profile.
func IsMetadataKey(key string) bool {
	return strings.HasPrefix(key, MetadataPrefix)
}

// ExtractConfigurations returns one configuration per top-level key that is
// not profile metadata, in document order, each value flattened.
func ExtractConfigurations(doc *document.Map) []*Configuration {
	if doc == nil {
		return nil
	}
	var configs []*Configuration
	for p := doc.Oldest(); p != nil; p = p.Next() {
		if IsMetadataKey(p.Key) {
			continue
		}
		configs = append(configs, &Configuration{
			Name:       p.Key,
			Properties: Flatten(p.Value),
		})
	}
	return configs
}
