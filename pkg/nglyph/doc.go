// Package nglyph reads and writes NGlyph composition files.
//
// # Overview
//
// An NGlyph file is the intermediate JSON container between the label
// compiler and the audio tag writer. It carries the frame table and index
// as text rows, so it can be inspected, diffed and stored without an audio
// file:
//
//	{
//	    "VERSION": 1,
//	    "PHONE_MODEL": "PHONE1",
//	    "AUTHOR": ["0,0,0,0,0,", "4095,0,0,0,0,"],
//	    "CUSTOM1": ["1000-0"]
//	}
//
// # Optional Keys
//
//   - WATERMARK: the creator watermark, one array element per line
//   - SALT: standard base64 of the 16 byte watermark salt (required with WATERMARK)
//   - LEGACY: JSON boolean marking compositions from pre-v1 tools that may desync
//
// When WATERMARK is present the AUTHOR rows are sealed (see codec.Seal) with
// the key derived from the watermark and salt. [File.Table] always returns
// the plain table.
//
// # Reading and Writing
//
// [Read] and [ReadFile] validate every key and fail with a FORMAT_ERROR that
// names the offending key. [Write] emits 4-space indented JSON with CRLF line
// endings, the layout the desktop tools produce. [WriteFile] writes to a
// temporary file in the target directory and renames it into place so a
// failed run never leaves a truncated file behind.
package nglyph
