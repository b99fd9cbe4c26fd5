// Package naming builds part file names and hands out exclusive
// destination directories.
//
// Media parts keep the source extension after a zero-padded index
// ("movie.part001.mkv") so every part stays playable on its own. Byte-split
// parts use split's numeric suffix ("archive.bin.001"). ListParts discovers
// either kind in a directory; the segment engine never returns a file list.
package naming
