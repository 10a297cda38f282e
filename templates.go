package incomeform

import (
	"io/fs"

	vanilla "github.com/goliatone/go-incomeform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet served under /assets/.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
