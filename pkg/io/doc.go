// Package io provides JSON import and export for survey documents.
//
// # Overview
//
// Surveys reach surveyplot as UTF-8 JSON files, either uploaded through the
// web form or passed to the render command. This package decodes them into
// [dataset.Document] values and writes them back out, which the sample
// command uses to seed a working directory with example surveys.
//
// # JSON Format
//
//	{
//	  "title": "Digitalisierung Unterrichtsmaterialien in Fach 1",
//	  "category_names": ["Vollständig digital", "Überwiegend digital"],
//	  "results": {
//	    "derzeitiger Stand": [4, 7],
//	    "zukünftiger Stand": [7, 7]
//	  },
//	  "filename": "bar_chart.png"
//	}
//
// See [dataset] for the three accepted forms of the results block.
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	doc, err := io.ImportJSON("survey.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the document structure. Malformed JSON yields an
// INVALID_JSON error and structural problems an INVALID_INPUT error, so
// callers can report them as input errors.
//
// # Export
//
// Use [ExportJSON] to write a document to a file, or [WriteJSON] to write to
// any io.Writer. Series keep their order, so a document survives a round
// trip unchanged.
//
// [dataset]: github.com/matzehuels/surveyplot/pkg/dataset
package io
