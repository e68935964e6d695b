// Package export reads fault point files and writes fault tables and
// per-fault artefacts: CSV, JSON, an HTML chart summary, PNG footprint
// plots and CloudCompare-style ASC point files.
//
// All file access goes through fsutil.FileSystem so exporters can be tested
// against memory.
package export
