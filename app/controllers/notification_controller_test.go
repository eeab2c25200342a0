package controllers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMarkReadRequestValidation(t *testing.T) {
	v := validator.New()

	// Any present id is acceptable; unknown ids are a storage-level no-op,
	// so the shape of the id must not turn the request into a 400.
	assert.NoError(t, v.Struct(markReadRequest{UserID: 1, NotificationID: "0b1f0a70-1d9a-4c8e-9f3e-1a2b3c4d5e6f"}))
	assert.NoError(t, v.Struct(markReadRequest{UserID: 1, NotificationID: "legacy-id-17"}))

	assert.Error(t, v.Struct(markReadRequest{UserID: 0, NotificationID: "x"}))
	assert.Error(t, v.Struct(markReadRequest{UserID: 1, NotificationID: ""}))
}
