// Package schemas bundles the JSON Schemas for profile records, weight
// configurations and ranking requests.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
