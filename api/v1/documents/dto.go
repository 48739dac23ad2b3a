package documents

import (
	"peo_admin/internal/model"

	"github.com/dustin/go-humanize"
)

// DocumentDTO is a document with display fields
type DocumentDTO struct {
	model.Document
	FileSizeLabel string `json:"fileSizeLabel"` // e.g. "1.2 MB"
}

func toDTO(d *model.Document) DocumentDTO {
	dto := DocumentDTO{Document: *d}
	if d.FileSize != nil {
		dto.FileSizeLabel = humanize.Bytes(uint64(*d.FileSize))
	}
	return dto
}

func toDTOs(docs []model.Document) []DocumentDTO {
	out := make([]DocumentDTO, len(docs))
	for i := range docs {
		out[i] = toDTO(&docs[i])
	}
	return out
}
