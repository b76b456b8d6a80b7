package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	StorageBucket   string `env:"STORAGE_BUCKET,required"`
	SignedURLTTLMin int    `env:"SIGNED_URL_TTL_MINUTES" envDefault:"15"`
	FirebaseProject string `env:"FIREBASE_PROJECT_ID"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	PreviewMaxWidth  int `env:"PREVIEW_MAX_WIDTH" envDefault:"600"`
	PreviewMaxHeight int `env:"PREVIEW_MAX_HEIGHT" envDefault:"800"`
	PreviewQuality   int `env:"PREVIEW_QUALITY" envDefault:"80"`
	ThumbMaxWidth    int `env:"THUMB_MAX_WIDTH" envDefault:"300"`
	ThumbMaxHeight   int `env:"THUMB_MAX_HEIGHT" envDefault:"400"`
	ThumbQuality     int `env:"THUMB_QUALITY" envDefault:"60"`

	// CleanupMinAgeHours is how long an orphaned draft image must stay untouched
	// before the cleanup job may delete it.
	CleanupMinAgeHours int `env:"CLEANUP_MIN_AGE_HOURS" envDefault:"24"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
