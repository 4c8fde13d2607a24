package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/product-catalog/pkg/e"
)

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name     string
		category string
		product  string
		wantErr  error
	}{
		{name: "valid", category: "tools", product: "hammer"},
		{name: "empty category", category: "", product: "hammer", wantErr: e.ErrCategoryRequired},
		{name: "blank category", category: "  \t", product: "hammer", wantErr: e.ErrCategoryRequired},
		{name: "empty name", category: "tools", product: "", wantErr: e.ErrNameRequired},
		{name: "both empty reports category first", category: "", product: "", wantErr: e.ErrCategoryRequired},
		{name: "nul in category", category: "to\x00ols", product: "hammer", wantErr: e.ErrCategoryMalformed},
		{name: "nul in name", category: "tools", product: "ham\u0000mer", wantErr: e.ErrNameMalformed},
		{name: "invalid utf-8 in category", category: "tools\xff", product: "hammer", wantErr: e.ErrCategoryMalformed},
		{name: "invalid utf-8 in name", category: "tools", product: "\xc3\x28", wantErr: e.ErrNameMalformed},
		{name: "non ascii is fine", category: "инструменты", product: "молоток"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.category, tt.product)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProduct() error = %v, want %v", err, tt.wantErr)
				}
				if !e.IsValidation(err) {
					t.Errorf("expected validation error kind, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewProduct() unexpected error = %v", err)
			}
			if p.IsPersisted() {
				t.Error("new product must be transient")
			}
			if p.Category() != tt.category || p.Name() != tt.product {
				t.Errorf("got %q/%q, want %q/%q", p.Category(), p.Name(), tt.category, tt.product)
			}
		})
	}
}

func TestProduct_ReplaceDetails(t *testing.T) {
	created := time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC)
	p := RestoreProduct(7, "tools", "hammer", created, nil)

	if err := p.ReplaceDetails("garden", "rake"); err != nil {
		t.Fatalf("ReplaceDetails() error = %v", err)
	}
	if p.Category() != "garden" || p.Name() != "rake" {
		t.Errorf("details not replaced: %q/%q", p.Category(), p.Name())
	}
	if p.ID() != 7 || !p.CreatedAt().Equal(created) {
		t.Errorf("identity changed: id=%d created=%v", p.ID(), p.CreatedAt())
	}
}

func TestProduct_ReplaceDetailsRejectsBlankAndKeepsState(t *testing.T) {
	p := RestoreProduct(1, "tools", "hammer", time.Now(), nil)

	err := p.ReplaceDetails("tools", " ")
	if !errors.Is(err, e.ErrNameRequired) {
		t.Fatalf("ReplaceDetails() error = %v, want ErrNameRequired", err)
	}
	if p.Name() != "hammer" {
		t.Errorf("failed transition mutated name to %q", p.Name())
	}
}
