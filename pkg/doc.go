// Package pkg provides the libraries behind glyphtools, a compiler and codec
// for Nothing phone Glyph light compositions.
//
// # Overview
//
// A composition starts as an Audacity label file, becomes an NGlyph file and
// ends up as tags inside an OGG/Opus audio file:
//
//	label file (.txt)
//	     ↓  [labels] parse directives
//	     ↓  [frame] render the frame table and index
//	NGlyph file (.nglyph)
//	     ↓  [codec] compress and encode the rows
//	     ↓  [media] write the tags with ffmpeg
//	composed audio (.ogg)
//
// [pipeline] wires these steps together and runs them in both directions.
//
// # Packages
//
//   - [glyph]: phone models, column models and time constants
//   - [topology]: zone tables that map glyph numbers onto columns
//   - [raster]: brightness curves sampled onto the frame grid
//   - [labels]: label file parser
//   - [frame]: frame table builder
//   - [codec]: AUTHOR and CUSTOM1 tag encoding
//   - [watermark]: creator watermarks and key derivation
//   - [nglyph]: the NGlyph JSON container
//   - [media]: ffmpeg and ffprobe wrappers
//   - [cache]: translation caches (file, Redis)
//   - [store]: composition storage (memory, MongoDB)
//   - [errors]: coded errors and input validation
//   - [observability]: instrumentation hooks
//   - [buildinfo]: version information
//
// [glyph]: github.com/matzehuels/glyphtools/pkg/glyph
// [topology]: github.com/matzehuels/glyphtools/pkg/topology
// [raster]: github.com/matzehuels/glyphtools/pkg/raster
// [labels]: github.com/matzehuels/glyphtools/pkg/labels
// [frame]: github.com/matzehuels/glyphtools/pkg/frame
// [codec]: github.com/matzehuels/glyphtools/pkg/codec
// [watermark]: github.com/matzehuels/glyphtools/pkg/watermark
// [nglyph]: github.com/matzehuels/glyphtools/pkg/nglyph
// [media]: github.com/matzehuels/glyphtools/pkg/media
// [pipeline]: github.com/matzehuels/glyphtools/pkg/pipeline
// [cache]: github.com/matzehuels/glyphtools/pkg/cache
// [store]: github.com/matzehuels/glyphtools/pkg/store
// [errors]: github.com/matzehuels/glyphtools/pkg/errors
// [observability]: github.com/matzehuels/glyphtools/pkg/observability
// [buildinfo]: github.com/matzehuels/glyphtools/pkg/buildinfo
package pkg
