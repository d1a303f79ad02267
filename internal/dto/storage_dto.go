package dto

type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}
