package sqlcollector

import (
	"fmt"
	"strings"

	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/platform"
)

// rejected logs a statement the platform refused to generate and wraps the
// error with the object it was generated for.
func rejected(p platform.Platform, context sqlContext, err error) error {
	logger.Get().Debug("Platform rejected statement",
		"platform", p.Name(),
		"object_type", context.objectType,
		"operation", context.operation,
		"object", context.objectPath,
		"error", err)
	return fmt.Errorf("failed to %s %s %s: %w",
		context.operation, strings.ReplaceAll(context.objectType, "_", " "), context.objectPath, err)
}
