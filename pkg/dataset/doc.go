// Package dataset models the survey documents that surveyplot renders and
// reshapes them for the chart builders.
//
// # Document Format
//
// A document is a JSON object with a title, an ordered list of category
// names and a results block:
//
//	{
//	  "title": "Digitale Tools in Fach 1",
//	  "category_names": ["Ja", "Nein"],
//	  "results": [21, 9],
//	  "filename": "pie_chart.png"
//	}
//
// The results block takes one of three shapes:
//
//   - a flat list of numbers, one per category ([ShapeFlat])
//   - an object with the single key "results" holding such a list ([ShapeKeyed])
//   - an object mapping series names to lists ([ShapeMulti])
//
// Series keep the order in which they appear in the document. For the
// stacked chart that order is the row order, top to bottom.
//
// # Filtering
//
// [Filter] narrows a document to a subset of its categories. The subset is
// matched against the full category list, so the result always follows the
// document order regardless of the order of the selection. Series whose
// length does not match the category count are handled by a
// [MismatchPolicy]: passed through untouched (the default) or rejected.
package dataset
