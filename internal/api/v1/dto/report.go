package dto

// ExportRequest selects the export encoding.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv json CSV JSON"`
}

// SyncResponse acknowledges a queued sync.
type SyncResponse struct {
	Queued bool `json:"queued"`
}
