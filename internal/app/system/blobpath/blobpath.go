// internal/app/system/blobpath/blobpath.go
package blobpath

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// For builds the storage path for an uploaded file:
// {namespace}/{unixMillis}_{originalFileName}.
// The millisecond prefix keeps same-named uploads from colliding while the
// original file name stays visible in the path. Path separators in the name
// are stripped so a crafted filename cannot escape its namespace.
func For(namespace, fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d_%s", namespace, time.Now().UnixMilli(), name)
}
