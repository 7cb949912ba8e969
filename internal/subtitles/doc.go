// Package subtitles owns the cue file: the transcript segments it is built
// from, the timestamp codec, the streaming writer, and the reader used to
// validate what was written.
//
// Cue files are UTF-8 blocks of
//
//	<index>
//	<H:MM:SS.mmm> --> <H:MM:SS.mmm>
//	<original text>
//	[<translated text or failure marker>]
//	<blank line>
//
// with hours always present and indexes contiguous from 1.
package subtitles
