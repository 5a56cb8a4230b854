package tracker

import (
	"time"

	"intake-go/internal/model"
)

// SampleDocuments returns the fixed sample collection a fresh session starts with.
func SampleDocuments() []*model.Document {
	at := func(hour, min int) time.Time {
		return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC)
	}

	return []*model.Document{
		{
			ID:         "1",
			Name:       "contract_agreement.pdf",
			Kind:       model.KindPDF,
			SizeMB:     0.85,
			Status:     model.StatusProcessing,
			UploadedAt: at(10, 30),
			SourceURL:  PlaceholderPDFURL,
		},
		{
			ID:         "2",
			Name:       "invoice_receipt.jpg",
			Kind:       model.KindImage,
			SizeMB:     0.65,
			Status:     model.StatusNeedApproval,
			UploadedAt: at(10, 25),
			SourceURL:  "https://picsum.photos/800/600?random=1",
			ExtractedData: &model.ExtractedData{
				Name:           "John Smith",
				PolicyNumber:   "POL-2024-001234",
				VIN:            "1HGBH41JXMN109186",
				ExpirationDate: "2025-03-15",
			},
		},
		{
			ID:         "3",
			Name:       "identity_document.pdf",
			Kind:       model.KindPDF,
			SizeMB:     0.92,
			Status:     model.StatusApproved,
			UploadedAt: at(10, 20),
			SourceURL:  "https://www.africau.edu/images/default/sample.pdf",
		},
		{
			ID:         "4",
			Name:       "bank_statement.png",
			Kind:       model.KindImage,
			SizeMB:     0.78,
			Status:     model.StatusProcessing,
			UploadedAt: at(10, 35),
			SourceURL:  "https://picsum.photos/800/600?random=2",
		},
		{
			ID:         "5",
			Name:       "tax_document.pdf",
			Kind:       model.KindPDF,
			SizeMB:     0.43,
			Status:     model.StatusNeedApproval,
			UploadedAt: at(10, 15),
			SourceURL:  "https://www.clickdimensions.com/links/TestPDFfile.pdf",
			ExtractedData: &model.ExtractedData{
				Name:           "Sarah Johnson",
				PolicyNumber:   "POL-2024-005678",
				VIN:            "2T1BURHE0JC014567",
				ExpirationDate: "2024-12-20",
			},
		},
		{
			ID:              "6",
			Name:            "passport_scan.jpg",
			Kind:            model.KindImage,
			SizeMB:          0.56,
			Status:          model.StatusRejected,
			UploadedAt:      at(10, 10),
			SourceURL:       "https://picsum.photos/800/600?random=3",
			RejectionReason: "Image quality too low",
		},
	}
}
