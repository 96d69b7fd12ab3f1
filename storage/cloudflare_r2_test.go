package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCloudflareR2UploaderRequiresAllFields(t *testing.T) {
	_, err := NewCloudflareR2Uploader(CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "bucket",
		// PublicBaseURL не задан.
	})
	assert.Error(t, err)
}

func TestGetPublicURL(t *testing.T) {
	uploader := &cloudflareR2Uploader{publicBaseURL: "https://tabs.example.com/"}

	assert.Equal(t, "https://tabs.example.com/tabs/1/standings.csv",
		uploader.GetPublicURL("tabs/1/standings.csv"))
	assert.Equal(t, "https://tabs.example.com/tabs/1/standings.csv",
		uploader.GetPublicURL("/tabs/1/standings.csv"))
	assert.Equal(t, "", uploader.GetPublicURL(""))
}
