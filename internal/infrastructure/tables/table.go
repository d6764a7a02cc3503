// Package tables is a generic paginated record store over GORM. Every table it
// serves carries an id (uuid) primary key and a soft-delete "deleted" flag;
// deleted rows are invisible to every operation.
package tables

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 50
	// MaxPageSize also bounds the page size used by All.
	MaxPageSize = 1000
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownColumn = errors.New("unknown column")
)

// Schema whitelists the columns a table may be searched, sorted and filtered on.
type Schema struct {
	SearchColumns []string
	SortColumns   []string
	FilterColumns []string
	// DefaultSort uses the ListParams.Sort syntax.
	DefaultSort string
}

// ListParams selects one page of records.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	// Sort is a comma-separated list of columns, each optionally prefixed by "-" for descending.
	Sort    string
	Filters map[string]interface{}
}

// Page is one page of records plus the total matching count.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Store is the record store contract consumed by application services.
type Store[T any] interface {
	List(ctx context.Context, p ListParams) (*Page[T], error)
	All(ctx context.Context, p ListParams) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, id uuid.UUID, rec *T) error
	Replace(ctx context.Context, id uuid.UUID, rec *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Table is the GORM implementation of Store for model T.
type Table[T any] struct {
	DB     *gorm.DB
	Schema Schema
}

var _ Store[struct{}] = (*Table[struct{}])(nil)

func New[T any](db *gorm.DB, schema Schema) *Table[T] {
	return &Table[T]{DB: db, Schema: schema}
}

func (t *Table[T]) live(ctx context.Context) *gorm.DB {
	return t.DB.WithContext(ctx).Model(new(T)).Where("deleted = ?", false)
}

func (t *Table[T]) List(ctx context.Context, p ListParams) (*Page[T], error) {
	p = normalize(p)
	q, err := t.filtered(ctx, p)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	order, err := t.orderBy(p.Sort)
	if err != nil {
		return nil, err
	}
	rows := make([]T, 0, p.Limit)
	if err := q.Clauses(order).Offset((p.Page - 1) * p.Limit).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return &Page[T]{Data: rows, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// All pages through every matching record, MaxPageSize at a time, until a short page.
func (t *Table[T]) All(ctx context.Context, p ListParams) ([]T, error) {
	p.Limit = MaxPageSize
	var out []T
	for page := 1; ; page++ {
		p.Page = page
		res, err := t.List(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Data...)
		if len(res.Data) < MaxPageSize {
			return out, nil
		}
	}
}

func (t *Table[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	rec := new(T)
	if err := t.live(ctx).Where("id = ?", id).First(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (t *Table[T]) Create(ctx context.Context, rec *T) error {
	return t.DB.WithContext(ctx).Create(rec).Error
}

// Update writes the non-zero fields of rec onto the live record id.
func (t *Table[T]) Update(ctx context.Context, id uuid.UUID, rec *T) error {
	res := t.live(ctx).Where("id = ?", id).Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace overwrites every column of the live record id with rec, zero values
// included. The key, creation time and delete flag are left alone.
func (t *Table[T]) Replace(ctx context.Context, id uuid.UUID, rec *T) error {
	res := t.live(ctx).Where("id = ?", id).Select("*").Omit("id", "created_at", "deleted").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is a soft delete.
func (t *Table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := t.live(ctx).Where("id = ?", id).Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalize(p ListParams) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (t *Table[T]) filtered(ctx context.Context, p ListParams) (*gorm.DB, error) {
	q := t.live(ctx)

	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(t.Schema.FilterColumns, k) {
			return nil, fmt.Errorf("%w: filter %q", ErrUnknownColumn, k)
		}
		q = q.Where(clause.Eq{Column: clause.Column{Name: k}, Value: p.Filters[k]})
	}

	if s := strings.TrimSpace(p.Search); s != "" && len(t.Schema.SearchColumns) > 0 {
		like := "%" + strings.ToLower(s) + "%"
		conds := make([]string, len(t.Schema.SearchColumns))
		args := make([]interface{}, len(t.Schema.SearchColumns))
		for i, col := range t.Schema.SearchColumns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return q, nil
}

// orderBy parses a sort spec. The id column is always the final tie-breaker so
// that paging is stable.
func (t *Table[T]) orderBy(spec string) (clause.OrderBy, error) {
	if strings.TrimSpace(spec) == "" {
		spec = t.Schema.DefaultSort
	}
	var cols []clause.OrderByColumn
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if !contains(t.Schema.SortColumns, name) {
			return clause.OrderBy{}, fmt.Errorf("%w: sort %q", ErrUnknownColumn, name)
		}
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc})
	}
	cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	return clause.OrderBy{Columns: cols}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
