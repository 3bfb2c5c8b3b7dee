package migrations

import "embed"

// Files holds the ordered, forward-only schema migrations compiled into the binary.
//
//go:embed *.sql
var Files embed.FS
