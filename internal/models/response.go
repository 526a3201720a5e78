package models

// Response is the success envelope shared by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope. Detail is included only outside
// production mode.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

type PagedReviews struct {
	Reviews   []Review      `json:"reviews"`
	Total     int64         `json:"total"`
	Page      int64         `json:"page"`
	Limit     int64         `json:"limit"`
	Histogram map[int]int64 `json:"histogram"`
}

type SearchResult struct {
	Products []RatedProduct `json:"products"`
	Total    int64          `json:"total"`
	Page     int64          `json:"page"`
	Limit    int64          `json:"limit"`
	// ApproximateTotal is set when a post-fetch rating filter was applied;
	// Total is then the in-page count, not a full-dataset count.
	ApproximateTotal bool `json:"approximate_total,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
