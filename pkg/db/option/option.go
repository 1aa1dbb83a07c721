package option

import (
	"fmt"
	"strings"
	"time"

	"vendas-platform/pkg/db/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption is a gorm scope applied by repository reads.
type QueryOption func(*gorm.DB) *gorm.DB

type Operator string

const (
	EQ   Operator = "="
	NE   Operator = "<>"
	GT   Operator = ">"
	GTE  Operator = ">="
	LT   Operator = "<"
	LTE  Operator = "<="
	IN   Operator = "IN"
	LIKE Operator = "LIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	// Allow whitelists sortable columns; empty means only created_at.
	Allow map[string]bool
}

// LockingUpdate is a scope adding SELECT ... FOR UPDATE.
func LockingUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

// WithWhere adds a raw condition, e.g. "transaction_code = ? OR id = ?".
func WithWhere(query string, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

func WithLimit(limit int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	}
}

func WithSortBy(s QuerySortBy) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(s.SortBy))
		if column == "" {
			column = "created_at"
		}
		if column != "created_at" && !s.Allow[column] {
			column = "created_at"
		}

		desc := strings.EqualFold(strings.TrimSpace(s.OrderBy), "desc")
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
	}
}

func ApplyOperator(conds ...Condition) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range conds {
			op := c.Operator
			if op == "" {
				op = EQ
			}
			switch op {
			case IN:
				db = db.Where(fmt.Sprintf("%s IN ?", quoteField(c.Field)), c.Value)
			default:
				db = db.Where(fmt.Sprintf("%s %s ?", quoteField(c.Field), op), c.Value)
			}
		}
		return db
	}
}

// ApplyPagination orders newest first by (created_at, id) and resumes after
// the cursor when one is given. It fetches Limit+1 rows so callers can
// compute HasMore with pagination.BuildCursorPageInfo.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		limit := p.Limit
		if limit <= 0 {
			limit = 10
		}
		if limit > 250 {
			limit = 250
		}

		if p.Cursor != "" {
			if cur, err := pagination.DecodeCursor(p.Cursor); err == nil {
				if ts, err := time.Parse(time.RFC3339Nano, cur.CreatedAt); err == nil {
					db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", ts, ts, cur.ID)
				}
			} else {
				_ = db.AddError(fmt.Errorf("invalid cursor: %w", err))
			}
		}

		return db.Order("created_at DESC").Order("id DESC").Limit(limit + 1)
	}
}

func quoteField(field string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		}
		return -1
	}, field)
}
