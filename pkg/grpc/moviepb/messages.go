package moviepb

type RecommendRequest struct {
	Title string `json:"title"`
	K     int32  `json:"k,omitempty"` // 0 means the server default
}

func (r *RecommendRequest) GetTitle() string {
	if r == nil {
		return ""
	}
	return r.Title
}

func (r *RecommendRequest) GetK() int32 {
	if r == nil {
		return 0
	}
	return r.K
}

type Recommendation struct {
	Title     string  `json:"title"`
	Id        int64   `json:"id"`
	Score     float64 `json:"score"`
	PosterUrl string  `json:"poster_url,omitempty"`
}

type RecommendResponse struct {
	Title string            `json:"title"`
	K     int32             `json:"k"`
	Items []*Recommendation `json:"items"`
}

type ListTitlesRequest struct{}

type ListTitlesResponse struct {
	Titles []string `json:"titles"`
}
