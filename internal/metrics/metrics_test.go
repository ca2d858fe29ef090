package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "order id", in: "/api/v1/orders/6f1f6f2a-9f5c-4ac8-9f57-2d9f31c1f8a7", want: "/api/v1/orders/{id}"},
		{name: "nested id", in: "/api/v1/orders/6f1f6f2a-9f5c-4ac8-9f57-2d9f31c1f8a7/status", want: "/api/v1/orders/{id}/status"},
		{name: "cart item id", in: "/api/v1/carts/items/6f1f6f2a-9f5c-4ac8-9f57-2d9f31c1f8a7", want: "/api/v1/carts/items/{id}"},
		{name: "no id", in: "/api/v1/products", want: "/api/v1/products"},
		{name: "literal segment untouched", in: "/api/v1/products/low-stock", want: "/api/v1/products/low-stock"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizePath(tc.in))
		})
	}
}
