// Package palette resolves the fill colors of a chart.
//
// A chart asks for N colors, one per category, and gets them from one of
// three sources in fixed precedence:
//
//  1. a named continuous palette, sampled at N evenly spaced points over
//     [0.15, 0.85] so the washed-out ends are never used
//  2. a single base color, expanded into N shades whose brightness grows
//     with the index
//  3. the default diverging palette RdYlGn_r, sampled like (1)
//
// [Resolve] implements that precedence. [Scheme] maps the color-scheme
// names offered by the web form onto a [Selection].
package palette
