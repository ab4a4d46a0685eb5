// Command wavmeta inspects Broadcast WAV metadata and manages sound effect
// libraries.
//
// Subcommands:
//
//	info   print the merged metadata of one file
//	ale    write Avid Log Exchange files for a directory tree
//	aaf    write simplified AAF XML files per WAV
//	dupes  report, move or delete duplicate files
package main
