package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DRSN-tech/product-catalog/pkg/e"
)

// Product описывает товар каталога.
// Поля закрыты: изменить категорию и название можно только через ReplaceDetails,
// поэтому сохранённый продукт никогда не содержит пустых значений.
type Product struct {
	id        int64
	category  string
	name      string
	createdAt time.Time
	updatedAt *time.Time
}

// NewProduct создаёт ещё не сохранённый (transient) продукт.
func NewProduct(category, name string) (*Product, error) {
	if err := validateDetails(category, name); err != nil {
		return nil, err
	}

	return &Product{
		category: category,
		name:     name,
	}, nil
}

// RestoreProduct восстанавливает сохранённый продукт из хранилища. Валидация не выполняется.
func RestoreProduct(id int64, category, name string, createdAt time.Time, updatedAt *time.Time) *Product {
	return &Product{
		id:        id,
		category:  category,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Product) ID() int64             { return p.id }
func (p *Product) Category() string      { return p.category }
func (p *Product) Name() string          { return p.name }
func (p *Product) CreatedAt() time.Time  { return p.createdAt }
func (p *Product) UpdatedAt() *time.Time { return p.updatedAt }

// IsPersisted сообщает, присвоен ли продукту идентификатор хранилищем.
func (p *Product) IsPersisted() bool {
	return p.id != 0
}

// ReplaceDetails полностью заменяет категорию и название.
// Слияния с текущими значениями нет: вызывающий передаёт итоговое состояние целиком.
func (p *Product) ReplaceDetails(category, name string) error {
	if err := validateDetails(category, name); err != nil {
		return err
	}

	p.category = category
	p.name = name
	return nil
}

func validateDetails(category, name string) error {
	if strings.TrimSpace(category) == "" {
		return e.ErrCategoryRequired
	}

	if !isStorableText(category) {
		return e.ErrCategoryMalformed
	}

	if strings.TrimSpace(name) == "" {
		return e.ErrNameRequired
	}

	if !isStorableText(name) {
		return e.ErrNameMalformed
	}

	return nil
}

// isStorableText отсекает строки, которые PostgreSQL TEXT не примет.
func isStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
