package tracker

import (
	"fmt"

	"intake-go/internal/model"
)

// Placeholder content shown once a document has finished processing.
const (
	PlaceholderPDFURL   = "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf"
	PlaceholderImageURL = "https://picsum.photos/800/600?random=4"
)

// placeholderURL returns the renderable placeholder for a document kind.
func placeholderURL(kind model.Kind) string {
	if kind == model.KindPDF {
		return PlaceholderPDFURL
	}
	return PlaceholderImageURL
}

// extractData simulates field extraction. The policy number suffix is
// drawn from [100000, 999999] and the VIN suffix from [10000000, 99999999].
func extractData(r Random) *model.ExtractedData {
	return &model.ExtractedData{
		Name:           "Michael Brown",
		PolicyNumber:   fmt.Sprintf("POL-2024-%d", 100000+r.IntN(900000)),
		VIN:            fmt.Sprintf("3VW2A7AU%d", 10000000+r.IntN(90000000)),
		ExpirationDate: "2025-06-30",
	}
}
