// Package pdf provides the PDF Extractor and page Rasterizer.
// Both shell out to poppler-utils (pdftotext, pdftoppm) through a
// CommandRunner so they can be tested without the binaries installed.
package pdf
