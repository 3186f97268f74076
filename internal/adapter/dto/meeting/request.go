package meeting

// CreateMeetingRequest is the payload for creating a meeting
type CreateMeetingRequest struct {
	Title string `json:"title" validate:"required,min=1,max=512"`
}

// ListMeetingsRequest holds list filters passed as query parameters
type ListMeetingsRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=pending uploaded ready error"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ProcessMeetingRequest triggers a pipeline run. Force clears prior
// insight rows and reprocesses from the stored media.
type ProcessMeetingRequest struct {
	Force bool `json:"force"`
}

// SearchRequest is a semantic search over indexed transcript segments.
// MeetingID scopes the search to one meeting when set.
type SearchRequest struct {
	Query     string `json:"query" query:"q" validate:"required"`
	MeetingID string `json:"meeting_id" query:"meeting_id"`
	TopK      int    `json:"top_k" query:"top_k" validate:"omitempty,min=1,max=50"`
}
