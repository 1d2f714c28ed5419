package transfer

import (
	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return &dto.TransferResponse{
		ID:                 t.ID,
		EstablishmentID:    t.EstablishmentID,
		SourceStoreID:      t.SourceStoreID,
		DestinationStoreID: t.DestinationStoreID,
		Items:              items,
		Status:             t.Status,
		Notes:              t.Notes,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
		CompletedBy:        t.CompletedBy,
		CompletedAt:        t.CompletedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
