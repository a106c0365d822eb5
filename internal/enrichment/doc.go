// Package enrichment is the boundary to the Enrichment Service, the
// collaborator that writes a file's thumbnail and reports its properties.
//
// A Service answers one createThumbnail request at a time. Three
// implementations exist:
//
//   - LocalService generates JPEG thumbnails in-process with imaging (and
//     ffmpeg/ffprobe for video) and reports dimensions, duration and content
//     type.
//   - ProcessClient talks JSON-RPC 2.0 over the stdio of a child process,
//     so any executable speaking the same two methods can be plugged in.
//     cmd/enrichd serves LocalService this way.
//   - RPCService is the same client over an arbitrary stream.
//
// Client wraps a Service: it turns a non-empty exception or a transport
// error into a *Failure and parses the tabular property text into
// media.FileProperties.
//
// # Property text
//
// Properties travel as lines joined by CRLF, each "key\tvalue". String
// values are double-quoted; array values are bracketed and comma-joined,
// each element quoted if textual. Keys the media model knows are mapped to
// fields; every other line is kept verbatim in FileProperties.More.
package enrichment
