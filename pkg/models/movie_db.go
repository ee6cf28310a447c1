package models

type MovieDB struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Overview string `json:"overview,omitempty"`
	Genres   string `json:"genres,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Cast     string `json:"cast,omitempty"`
	Director string `json:"director,omitempty"`
}
