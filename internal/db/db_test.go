package db

import (
	"testing"

	"github.com/ktsujino/inventory-backend/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{DBUser: "app", DBPassword: "secret", DBName: "inventory", DBPort: "3306"}

	tests := []struct {
		name string
		mut  func(c *config.Config)
		want string
	}{
		{"plain host gets tcp wrapper", func(c *config.Config) {
			c.DBHost = "127.0.0.1"
		}, "app:secret@tcp(127.0.0.1:3306)/inventory?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"instance connection name wins over host", func(c *config.Config) {
			c.DBHost = "127.0.0.1"
			c.InstanceConnectionName = "proj:region:db"
		}, "app:secret@unix(/cloudsql/proj:region:db)/inventory?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"bare path means unix socket", func(c *config.Config) {
			c.DBHost = "/var/run/mysqld/mysqld.sock"
		}, "app:secret@unix(/var/run/mysqld/mysqld.sock)/inventory?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"wrapped host passes through", func(c *config.Config) {
			c.DBHost = "tcp(db.internal:3307)"
		}, "app:secret@tcp(db.internal:3307)/inventory?charset=utf8mb4&parseTime=True&loc=UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mut(&cfg)
			assert.Equal(t, tt.want, BuildDSN(&cfg))
		})
	}
}
