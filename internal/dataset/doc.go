// Package dataset loads face-image collections into the matrix form used
// by the factorization algorithms.
//
// A dataset root contains one subdirectory per subject, each holding that
// subject's images. The ORL and Cropped Extended YaleB collections ship as
// PGM files; PNG, JPEG and GIF are accepted as well. Ambient background
// frames in YaleB (files ending in "Ambient.pgm") are skipped.
//
// Images are converted to grayscale, downscaled by an integer reduce
// factor and normalized to [0,1]. Each image becomes one column of the
// data matrix V, flattened row-major, so V has (width/reduce)*(height/reduce)
// rows and one column per image. Subject labels are the 0-based index of
// the subject directory in lexical order.
package dataset
