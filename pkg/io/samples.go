package io

import "github.com/matzehuels/surveyplot/pkg/dataset"

// Sample is an example survey together with the file name it is written to.
type Sample struct {
	File     string
	Document *dataset.Document
}

// Samples returns one example survey per chart type. Lists of the
// horizontal and pie examples are stored bottom-up so the largest entry of
// the original questionnaire reads first.
func Samples() []Sample {
	return []Sample{
		{
			File: "stacked.json",
			Document: &dataset.Document{
				Title: "Digitalisierung Unterrichtsmaterialien in Fach 1",
				CategoryNames: []string{
					"Vollständig digital", "Überwiegend digital",
					"Überwiegend analog", "Vollständig analog",
				},
				Results: dataset.Multi(
					dataset.Series{Name: "derzeitiger Stand", Values: []float64{4, 7, 9, 2}},
					dataset.Series{Name: "zukünftiger Stand", Values: []float64{7, 7, 6, 2}},
				),
				Filename: "bar_chart.png",
			},
		},
		{
			File: "horizontal.json",
			Document: &dataset.Document{
				Title: "Softwarenutzung in Fach 1",
				CategoryNames: []string{
					"Sonstige Software", "MS-Teams", "MS-Office Produkte",
					"Moodle (E-Learning)", "MathCAD", "Citrix", "Chat GPT", "CAD Software",
				},
				Results:  dataset.Keyed(2, 2, 3, 9, 23, 1, 4, 5),
				Filename: "horizontal_bar_chart.png",
			},
		},
		{
			File: "pie.json",
			Document: &dataset.Document{
				Title:         "Digitale Tools in Fach 1",
				CategoryNames: []string{"Nein", "Ja"},
				Results:       dataset.Flat(9, 21),
				Filename:      "pie_chart.png",
			},
		},
	}
}
