// Package mediatypes holds the extension tables media-browser uses to decide
// which files are worth scanning and what content type they carry.
//
// Extensions are handled without the leading dot and in lower case:
//
//	ext := mediatypes.Extension("IMG_0001.JPG") // "jpg"
//	allowed := mediatypes.NewAllowList(mediatypes.DefaultExtensions())
//	allowed.Allows(ext) // true
//
// The package has no dependencies beyond the standard library so any other
// package can import it without creating cycles.
package mediatypes
