// Package files locates raw dataset drops and archives processed ones.
//
// The CDC publishes the VSRR file on a monthly cadence, so the cleaner
// is usually pointed at a directory of dated downloads rather than a
// single file. Discovery picks the newest CSV; Manager moves consumed
// files into an archive subdirectory so reruns are idempotent.
package files
