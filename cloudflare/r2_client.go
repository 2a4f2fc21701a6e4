// Package cloudflare provides a client for interacting with the Cloudflare API.
package cloudflare

import (
	"context"
	"fmt"

	"bitwise74/studio-api/aws"

	"github.com/spf13/viper"
)

// NewR2 returns an S3 client pointed at the account's R2 endpoint
func NewR2() (*aws.S3Client, error) {
	return aws.New(context.TODO(), aws.Options{
		AccessKeyID:     viper.GetString("storage.access_key_id"),
		SecretAccessKey: viper.GetString("storage.secret_access_key"),
		Region:          "auto",
		Bucket:          viper.GetString("storage.bucket"),
		Endpoint:        R2Endpoint(viper.GetString("storage.account_id")),
		PublicURL:       viper.GetString("storage.public_url"),
	})
}

func R2Endpoint(accountID string) string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
}
