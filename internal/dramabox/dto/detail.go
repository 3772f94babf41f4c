package dto

// DetailData is the payload of the chapters endpoint: drama metadata plus
// the full chapter list.
type DetailData struct {
	BookID       StringID  `json:"bookId"`
	BookName     string    `json:"bookName"`
	Cover        string    `json:"cover"`
	ChapterCount int       `json:"chapterCount"`
	ChapterList  []Chapter `json:"chapterList"`

	// Some deployments serve the chapter list under "list" instead.
	List []Chapter `json:"list"`
}

// Chapters returns the chapter list regardless of which field the origin
// used to serve it.
func (d *DetailData) Chapters() []Chapter {
	if len(d.ChapterList) > 0 {
		return d.ChapterList
	}
	return d.List
}

// Chapter is one episode reference inside a detail response.
//
// ChapterIndex is a pointer because 0 is a valid index; a chapter without
// an index cannot be ordered or named and is skipped by the caller.
type Chapter struct {
	ChapterID    StringID `json:"chapterId"`
	ChapterIndex *int     `json:"chapterIndex"`
	ChapterName  string   `json:"chapterName"`
	VideoPath    string   `json:"videoPath"`
}

// WatchData is the payload of the watch and player endpoints.
type WatchData struct {
	VideoURL string `json:"videoUrl"`
}
