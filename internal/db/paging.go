package db

import "gorm.io/gorm"

// MaxLimit caps the page size of any list query.
const MaxLimit = 100

// Page selects one page of a list query. Zero values fall back to page 1
// and the caller's default limit.
type Page struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps the limit to MaxLimit.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns how many pages of size Limit hold total rows.
func (p Page) Pages(total int64) int {
	if p.Limit < 1 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Scope applies LIMIT/OFFSET for a normalized page.
func (p Page) Scope(tx *gorm.DB) *gorm.DB {
	return tx.Offset(p.Offset()).Limit(p.Limit)
}
