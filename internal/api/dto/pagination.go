package dto

// PageInfo describes the slice of a paginated listing.
type PageInfo struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Page is the listing envelope consumed by the web client.
type Page[T any] struct {
	Content []T      `json:"content"`
	Page    PageInfo `json:"page"`
}

// NewPage assembles the envelope. Content is never null in JSON.
func NewPage[T any](content []T, number, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	if size <= 0 {
		size = 20
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Page[T]{
		Content: content,
		Page: PageInfo{
			Size:          size,
			Number:        number,
			TotalElements: total,
			TotalPages:    totalPages,
		},
	}
}
