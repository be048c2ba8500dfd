package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"90m": 90 * time.Minute,
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"2w":  14 * 24 * time.Hour,
		" 3D": 3 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuration("soon")
	assert.Error(t, err)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{Timezone: "Not/AZone"}).Location())
	assert.Equal(t, time.UTC, (&Config{Timezone: "UTC"}).Location())
}

func TestGetDSN(t *testing.T) {
	c := &Config{DBUser: "tour", DBPassword: "pw", DBHost: "db", DBPort: "3306", DBName: "thaitour"}
	assert.Equal(t, "tour:pw@tcp(db:3306)/thaitour?charset=utf8mb4&parseTime=True&loc=Local", c.GetDSN())
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("THAITOUR_TEST_VALUE", "set")
	assert.Equal(t, "set", getEnv("THAITOUR_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", getEnv("THAITOUR_TEST_MISSING", "fallback"))
}
