// Package export writes figures to the managed export folder and keeps
// that folder tidy.
//
// # Writing
//
// [Writer.Write] encodes a [chart.Figure] as png, jpg, pdf or svg and stores
// it under the writer's directory as
//
//	{base}[_{YYYYmmdd_HHMMSS}].{format}
//
// Raster formats honor the requested resolution (72 to 600 DPI); vector
// formats ignore it. Files are written to a temporary name first and renamed
// into place, then checked for existence before success is reported.
//
// [Encode] performs the same encoding into any io.Writer, which the web form
// uses for previews.
//
// # Retention
//
// [Writer.Sweep] deletes files older than a threshold and [Writer.Purge]
// deletes every file. Only visible regular files directly inside the folder
// are touched. All folder mutations of one Writer are serialized, so sweeping
// never races an export in progress.
package export
