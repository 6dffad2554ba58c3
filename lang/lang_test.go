package lang

import (
	"testing"

	"lunch-telegram/models"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ru", Ru},
		{"en", En},
		{"en-US", En},
		{"en-GB", En},
		{"", Ru},
		{"not a tag!", Ru},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.code, Ru))
		})
	}
}

func TestMatch_Fallback(t *testing.T) {
	assert.Equal(t, En, Match("", En))
}

func TestT(t *testing.T) {
	assert.Equal(t, "Ошибка входа", T(Ru, "login_error"))
	assert.Equal(t, "Sign-in failed", T(En, "login_error"))
	assert.Equal(t, "Введите корректную цену (например, 250.00)", T(Ru, "publish_price_invalid"))
	assert.Equal(t, "Добавлено: Борщ (×2)", T(Ru, "item_added", "Борщ", 2))
	assert.Equal(t, "Итого: 310.50 ₽", T(Ru, "cart_total", "310.50"))
}

func TestT_UnknownLanguageUsesRussian(t *testing.T) {
	assert.Equal(t, "Ошибка публикации", T("uz", "publish_error"))
}

func TestCatalogComplete(t *testing.T) {
	for key := range keys[Ru] {
		assert.True(t, Has(En, key), "en is missing %q", key)
	}
	for key := range keys[En] {
		assert.True(t, Has(Ru, key), "ru is missing %q", key)
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Все", Category(Ru, ""))
	labels := []string{"Супы", "Салаты", "Горячее", "Гарниры", "Напитки", "Десерты", "Другое"}
	for i, c := range models.Categories {
		assert.Equal(t, labels[i], Category(Ru, c))
		assert.True(t, Has(En, "cat_"+c))
	}
}
