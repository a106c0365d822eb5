// Command enrichd is the built-in Enrichment Service exposed over JSON-RPC
// on stdin and stdout, for use as media-browser's enrich_command.
//
// It answers getGreeting and createThumbnail. Logs go to stderr.
package main
