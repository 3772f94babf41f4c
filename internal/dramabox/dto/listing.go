package dto

import (
	"fmt"

	"github.com/saputra/dramabox-dl/internal/model"
)

// ListingData is the payload of the paginated catalog endpoints
// (new, search, rank, foryou).
type ListingData struct {
	List   []ListingBook `json:"list"`
	IsMore bool          `json:"isMore"`
}

// ListingBook is one catalog entry in a listing page.
type ListingBook struct {
	BookID       StringID `json:"bookId"`
	BookName     string   `json:"bookName"`
	ChapterCount int      `json:"chapterCount"`
	Cover        string   `json:"cover"`
}

// ToDrama converts a listing entry into a model.Drama.
//
// bookId and bookName are required; a listing entry missing either is
// rejected rather than silently defaulted.
func (b *ListingBook) ToDrama(cfg *model.PathConfig) (*model.Drama, error) {
	if b.BookID == "" {
		return nil, fmt.Errorf("listing entry missing bookId")
	}
	if b.BookName == "" {
		return nil, fmt.Errorf("listing entry %s missing bookName", b.BookID)
	}
	return model.NewDrama(string(b.BookID), b.BookName, b.ChapterCount, b.Cover, cfg), nil
}
