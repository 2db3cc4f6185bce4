// Package files stores uploaded inputs and locates processed outputs.
//
// Manager owns the uploads and processed directories. Client supplied names
// are sanitized and stored behind a short unique prefix, so two uploads of
// report.csv never collide:
//
//	m := files.NewManager(paths, 16<<20, logger)
//	stored, err := m.SaveUpload("report.csv", body) // "1a2b3c4d_report.csv"
//	in, err := m.UploadPath(stored)
//
// Discovery lists the files of a directory, newest first, and backs the
// file listing endpoint.
package files
