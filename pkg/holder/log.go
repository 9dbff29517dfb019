package holder

import (
	"io"
	"log"
)

// Logger is the library's no-op log handler (§7 "The library attaches a
// no-op log handler by default so hosts control verbosity"): every adapter
// decision ("Selected version as current selection", "Falling back to tags
// API", stale-cache warnings) goes through it with a plain log.Printf call,
// the same sparing style the teacher uses throughout. Hosts (the CLI's
// -v/-vv flags) replace the output with their own *log.Logger.
var Logger = log.New(io.Discard, "", 0)
