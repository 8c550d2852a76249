// Package migrations embeds the MetadataStore's numbered schema files so
// they ship inside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
