// Package html provides an Extractor for HTML files and the HTML-to-text
// routine shared with the web crawler. Documents are parsed with goquery;
// head, script, style and similar elements are dropped with their content.
package html
