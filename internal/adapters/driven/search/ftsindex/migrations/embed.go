// Package migrations embeds the InvertedIndex's own schema files, kept
// separate from the MetadataStore's so the BM25 engine lives in its own
// sqlite file under the index's tantivy/ directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
