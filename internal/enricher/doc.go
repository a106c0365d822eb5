// Package enricher turns one root's scanned files into FileInfo values,
// reusing cached results where they are still fresh and calling the
// Enrichment Service for the rest.
//
// Files of a root are processed strictly in order, one service call at a
// time. A per-file enrichment failure is logged and the file is left out of
// the result; a Cache Store failure ends the root.
package enricher
