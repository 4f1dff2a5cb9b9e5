package flow

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WidgetTitle derives a presentable widget title from a PDF file name:
// "hersheys-tlc_101.pdf" becomes "Hersheys Tlc 101". The raw file name is
// still sent as pdf_name; only the display title is prettified.
func WidgetTitle(pdfName string) string {
	base := strings.TrimSuffix(pdfName, filepath.Ext(pdfName))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return pdfName
	}
	return cases.Title(language.Und).String(base)
}
