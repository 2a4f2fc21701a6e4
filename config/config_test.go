package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	require.NoError(t, Validate())
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{"log level", "app.log_level", "verbose", "invalid log level provided"},
		{"port", "host.port", 0, "invalid port provided"},
		{"driver", "db.driver", "mysql", "invalid database driver provided"},
		{"upload size", "upload.max_size", 0, "upload.max_size must be bigger than 0"},
		{"clip duration", "studio.clip_duration", -1, "studio.clip_duration must be bigger than 0"},
		{"storage type", "storage.type", "ftp", "invalid storage type provided"},
		{"s3 without bucket", "storage.type", "s3", "bucket can't be empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			SetDefaults()
			viper.Set(tc.key, tc.val)

			err := Validate()
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestValidate_R2NeedsAccountID(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("storage.type", "r2")
	viper.Set("storage.bucket", "media")
	viper.Set("storage.access_key_id", "id")
	viper.Set("storage.secret_access_key", "secret")

	err := Validate()
	require.Error(t, err)
	assert.Equal(t, "account id can't be empty", err.Error())

	viper.Set("storage.account_id", "acc")
	assert.NoError(t, Validate())
}
