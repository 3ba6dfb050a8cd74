// Package archive keeps a versioned history of built artifacts.
//
// Layout under the archive root, per base version:
//
//	<base>/latest/                      release and unknown-format builds
//	<base>/dev_builds/latest/           dev builds
//	<base>/dev_builds/<NNN>/            one folder per dev number
//	<base>/all_builds/<timestamp>/      one snapshot per run
//
// The "latest" folders are reset on every run. Numbered and timestamped
// folders are only written when archive_every_build is set.
//
// Index and Lookup read the tree back for the archive browser, and Mirror
// uploads the folders written by one run to S3.
package archive
