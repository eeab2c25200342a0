package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 5, 11, 0, 0, 0, loc)
	assert.Equal(t, "2026-03-05T10:00:00Z", formatTimePtr(&ts))
}

func TestParseUserIDQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantID uint
		wantOK bool
	}{
		{name: "valid", query: "userId=42", wantID: 42, wantOK: true},
		{name: "missing", query: "", wantID: 0, wantOK: false},
		{name: "zero", query: "userId=0", wantID: 0, wantOK: false},
		{name: "negative", query: "userId=-1", wantID: 0, wantOK: false},
		{name: "not a number", query: "userId=abc", wantID: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var gotID uint
			var gotOK bool
			app.Get("/probe", func(c *fiber.Ctx) error {
				gotID, gotOK = parseUserIDQuery(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/probe?"+tt.query, nil)
			_, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantID, gotID)
			assert.Equal(t, tt.wantOK, gotOK)
		})
	}
}
