package dto

type EvidenceResponse struct {
	PayloadRef  string `json:"payload_ref"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url,omitempty"`
}
