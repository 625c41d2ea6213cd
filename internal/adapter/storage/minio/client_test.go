package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://minio.internal", endpointURL("minio.internal", true))
	assert.Equal(t, "https://s3.example.com", endpointURL("https://s3.example.com/", false))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t,
		"http://localhost:9000/workouts/icons/1/2",
		objectURL("http://localhost:9000/", "workouts", "icons/1/2"))
	assert.Equal(t,
		"https://cdn.example.com/workouts/exports/1/2/a%20b.json",
		objectURL("https://cdn.example.com", "workouts", "exports/1/2/a b.json"))
}
