// Package migrations carries the SQL schema files applied at startup,
// in lexical order.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
