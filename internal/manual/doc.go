// Package manual manages the PDF manual files on disk.
//
// Manuals are plain files in a single directory, addressed by sanitized
// filename. Nothing about them is persisted elsewhere: size, page count,
// and upload time are derived from the file itself at listing time.
// Deleting a manual also clears the reference from any device pointing at
// it.
package manual
