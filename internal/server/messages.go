package server

import (
	"github.com/joseph-ayodele/order-assistant/internal/announce"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
	"github.com/joseph-ayodele/order-assistant/internal/tts"
)

type UploadOrderRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type OrderResponse struct {
	Order *entity.Order `json:"order"`
}

type ListOrdersRequest struct{}

type ListOrdersResponse struct {
	Orders []*entity.Order `json:"orders"`
}

type OrderRequest struct {
	OrderID int64 `json:"order_id"`
}

type PrepareAssemblyResponse struct {
	Order     *entity.Order           `json:"order"`
	Items     []announce.PreparedItem `json:"items"`
	Announced int                     `json:"announced"`
}

type UpdateItemStatusRequest struct {
	OrderID int64  `json:"order_id"`
	ItemID  int64  `json:"item_id"`
	Status  string `json:"status"`
}

type ItemResponse struct {
	Item *entity.OrderItem `json:"item"`
}

type CompleteOrderRequest struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

type ListFiltersRequest struct{}

type ListFiltersResponse struct {
	Filters []entity.FilterWord `json:"filters"`
}

type AddFilterRequest struct {
	Word string `json:"word"`
}

type FilterResponse struct {
	Filter *entity.FilterWord `json:"filter"`
}

type DeleteFilterRequest struct {
	FilterID int64 `json:"filter_id"`
}

type Empty struct{}

type AnnounceItemRequest struct {
	ItemID int64 `json:"item_id"`
}

// AnnounceResponse points at a rendered artifact served under /audio/.
type AnnounceResponse struct {
	AudioURL string `json:"audio_url"`
	Provider string `json:"provider"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type ExportOrderResponse struct {
	Filename string `json:"filename"`
	Xlsx     []byte `json:"xlsx"`
}

func announceResponse(a *tts.Artifact, url string) *AnnounceResponse {
	return &AnnounceResponse{
		AudioURL: url,
		Provider: a.Provider,
		MIMEType: a.Format.MIMEType,
		Size:     a.Size,
	}
}
