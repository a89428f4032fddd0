package dto

// ResearchRequest asks for web research on a topic.
type ResearchRequest struct {
	Query      string `json:"query" validate:"required,min=3,max=512"`
	MaxResults int    `json:"max_results" validate:"omitempty,gte=1,lte=10"`
}

// ResearchSource is one cited search hit.
type ResearchSource struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// ResearchResponse carries the assembled research context plus its
// sources.
type ResearchResponse struct {
	Query   string           `json:"query"`
	Context string           `json:"context"`
	Sources []ResearchSource `json:"sources"`
	Cached  bool             `json:"cached"`
}
