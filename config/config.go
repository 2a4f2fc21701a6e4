// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"local", "s3", "r2"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	// A .env file is only a convenience for local development
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("No .env file found, using environment variables")
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	bindEnvs()
	SetDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		zap.L().Warn("config.toml file is missing, relying on environment variables")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if err := Validate(); err != nil {
		return err
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func bindEnvs() {
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors", "HOST_CORS")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("jwt.secret", "JWT_SECRET")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.local_dir", "STORAGE_LOCAL_DIR")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.region", "STORAGE_REGION")
	v.BindEnv("storage.account_id", "STORAGE_ACCOUNT_ID")
	v.BindEnv("storage.access_key_id", "STORAGE_ACCESS_KEY_ID")
	v.BindEnv("storage.secret_access_key", "STORAGE_SECRET_ACCESS_KEY")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")
	v.BindEnv("upload.allowed_types", "UPLOAD_ALLOWED_TYPES")

	v.BindEnv("studio.clip_duration", "STUDIO_CLIP_DURATION")
	v.BindEnv("studio.movie_minutes", "STUDIO_MOVIE_MINUTES")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	v.BindEnv("ffmpeg.ffprobe_path", "FFMPEG_FFPROBE_PATH")

	v.BindEnv("demo.sample_video_url", "DEMO_SAMPLE_VIDEO_URL")
}

// SetDefaults registers every default value. Exported so tests can
// get a usable configuration without a config file.
func SetDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", "http://localhost:5173")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_url", "http://localhost:8080/media")

	v.SetDefault("upload.max_size", 100)
	v.SetDefault("upload.allowed_types", []string{"image/", "video/", "audio/"})

	v.SetDefault("studio.clip_duration", 5)
	v.SetDefault("studio.movie_minutes", 5)

	v.SetDefault("security.rate_limit", 5)

	v.SetDefault("demo.sample_video_url", "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4")
	v.SetDefault("demo.stock_images", []string{
		"https://images.unsplash.com/photo-1485846234645-a62644f84728",
		"https://images.unsplash.com/photo-1440404653325-ab127d49abc1",
		"https://images.unsplash.com/photo-1536440136628-849c177e76a1",
		"https://images.unsplash.com/photo-1478720568477-152d9b164e26",
	})
}

// Validate checks the currently loaded values. upload.max_size is
// expected in MiB at this point.
func Validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any file type will be accepted")
	}

	if v.GetFloat64("studio.clip_duration") <= 0 {
		return errors.New("studio.clip_duration must be bigger than 0")
	}

	if v.GetInt("studio.movie_minutes") <= 0 {
		return errors.New("studio.movie_minutes must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	st := v.GetString("storage.type")
	if !slices.Contains(validStorageTypes, st) {
		return errors.New("invalid storage type provided")
	}

	switch st {
	case "local":
		if v.GetString("storage.local_dir") == "" {
			return errors.New("storage.local_dir can't be empty")
		}
	case "s3", "r2":
		if v.GetString("storage.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("storage.access_key_id") == "" {
			return errors.New("access key id can't be empty")
		}
		if v.GetString("storage.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if st == "r2" && v.GetString("storage.account_id") == "" {
			return errors.New("account id can't be empty")
		}
		if st == "s3" && v.GetString("storage.region") == "" {
			return errors.New("region can't be empty")
		}
	}

	if v.GetString("storage.public_url") == "" {
		return errors.New("storage.public_url can't be empty")
	}

	return nil
}
