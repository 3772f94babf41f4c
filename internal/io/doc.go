// Package ioutils provides small filesystem and image helpers: directory
// creation, plain and atomic file writes, and cover image downscaling.
//
// WriteFileAtomic is the primitive behind the history store's durability
// contract: write to a temp file in the target directory, then rename.
package ioutils
