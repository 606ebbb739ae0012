package view

type Video struct {
	Title        string `json:"title"`
	Duration     string `json:"duration"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Chapter struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	PDFURL      string  `json:"pdf_url,omitempty"`
	Videos      []Video `json:"videos"`
}

type CourseSummary struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Language      string `json:"language"`
	Duration      string `json:"duration"`
	ActualPrice   Money  `json:"actual_price"`
	DiscountPrice Money  `json:"discount_price"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

type Course struct {
	CourseSummary
	Description   string    `json:"description"`
	IntroVideoURL string    `json:"intro_video_url,omitempty"`
	Chapters      []Chapter `json:"chapters"`
	CreatedAt     string    `json:"created_at"`
}

type CourseList struct {
	Items      []CourseSummary `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}
