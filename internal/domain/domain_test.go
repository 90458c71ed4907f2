package domain

import (
	"testing"
	"time"
)

func TestSession_ExpiredAt(t *testing.T) {
	expires := time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: expires}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before expiry", now: expires.Add(-time.Nanosecond), want: false},
		{name: "exactly at expiry", now: expires, want: true},
		{name: "after expiry", now: expires.Add(time.Second), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ExpiredAt(tt.now); got != tt.want {
				t.Errorf("ExpiredAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestAccount_PublicOmitsCredential(t *testing.T) {
	acc := &Account{ID: "acc-1", Email: "a@x.com", PasswordHash: "$2a$12$secret", FirstName: "A", LastName: "B"}

	pub := acc.Public()
	if pub.ID != acc.ID || pub.Email != acc.Email {
		t.Errorf("Public() = %+v, want id/email copied", pub)
	}
	if (*Account)(nil).Public() != nil {
		t.Error("nil Account Public() should be nil")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Shopper@Example.COM "); got != "shopper@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestCatalogQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   CatalogQuery
		want int
	}{
		{name: "zero uses default", in: CatalogQuery{}, want: 50},
		{name: "explicit kept", in: CatalogQuery{First: 12}, want: 12},
		{name: "clamped", in: CatalogQuery{First: 1000}, want: MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(50).First; got != tt.want {
				t.Errorf("Normalize().First = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCatalogQuery_Key(t *testing.T) {
	a := CatalogQuery{First: 50}.Key()
	b := CatalogQuery{First: 50, After: "cursor-1"}.Key()
	if a == b {
		t.Errorf("Key() collision: %q", a)
	}
}

func TestCollection_Clone(t *testing.T) {
	price, compare, qty := 40.0, 50.0, 3
	c := &Collection{Products: []Product{{
		ID:            "1",
		OriginalPrice: &price,
		Images:        []string{"a.png"},
		Tags:          []string{"tee"},
		Variants: []Variant{{
			ID:                "v1",
			CompareAtPrice:    &compare,
			QuantityAvailable: &qty,
			Options:           []VariantOption{{Name: "Size", Value: "M"}},
		}},
	}}}

	cp := c.Clone()
	p := &cp.Products[0]
	p.ID = "changed"
	*p.OriginalPrice = 1
	p.Images[0] = "changed.png"
	p.Tags[0] = "changed"
	*p.Variants[0].CompareAtPrice = 1
	*p.Variants[0].QuantityAvailable = 0
	p.Variants[0].Options[0].Value = "XL"

	orig := c.Products[0]
	if orig.ID != "1" || *orig.OriginalPrice != 40 {
		t.Errorf("product fields shared: id=%q originalPrice=%v", orig.ID, *orig.OriginalPrice)
	}
	if orig.Images[0] != "a.png" || orig.Tags[0] != "tee" {
		t.Errorf("slices shared: images=%v tags=%v", orig.Images, orig.Tags)
	}
	v := orig.Variants[0]
	if *v.CompareAtPrice != 50 || *v.QuantityAvailable != 3 || v.Options[0].Value != "M" {
		t.Errorf("variant shared: compareAt=%v qty=%v options=%v", *v.CompareAtPrice, *v.QuantityAvailable, v.Options)
	}
}

func TestCollection_CloneKeepsNil(t *testing.T) {
	var nilCol *Collection
	if nilCol.Clone() != nil {
		t.Error("nil Clone() != nil")
	}
	cp := (&Collection{Products: []Product{{ID: "1"}}}).Clone()
	if p := cp.Products[0]; p.Images != nil || p.Tags != nil || p.Variants != nil || p.OriginalPrice != nil {
		t.Errorf("Clone() invented values: %+v", p)
	}
}
