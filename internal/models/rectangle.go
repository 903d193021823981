package models

// Rectangle is an on-page highlight region in PDF point coordinates,
// origin at the top-left of the page. Page is 1-based.
type Rectangle struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
