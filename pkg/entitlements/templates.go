package entitlements

import (
	"embed"
	"io/fs"
)

//go:embed templates
var templatesFS embed.FS

// Templates holds the factory GameData record in every settings format,
// named as the settings store names its file.
var Templates fs.FS

func init() {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	Templates = sub
}
