package models

import (
	"time"

	"gorm.io/gorm"
)

// PAGE_SIZE is the number of rows returned per listing page.
const PAGE_SIZE = 100

type BaseModel struct {
	ID        uint      `json:"id,omitempty" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Paging describes the page of a listing that was returned.
type Paging struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Pages int64 `json:"pages"`
}

func newPaging(page int, total int64) *Paging {
	pages := (total + PAGE_SIZE - 1) / PAGE_SIZE
	if pages < 1 {
		pages = 1
	}

	return &Paging{Total: total, Page: int64(firstPageOr(page)), Pages: pages}
}

// firstPageOr maps page numbers below one to the first page.
func firstPageOr(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func paginate(page int) func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset((firstPageOr(page) - 1) * PAGE_SIZE).Limit(PAGE_SIZE)
	}
}
