// Package dataset streams the suspicions CSV out of a compressed file
//
// Design choices:
// - Compression is sniffed from magic bytes, never from the file extension.
// - The file is decompressed and parsed as a stream; nothing is buffered past one row.
// - The header row names the columns; ragged rows are a parse error, not a skip.
// - Rows are plain column to raw value maps; typing belongs to core/suspicion
package dataset
