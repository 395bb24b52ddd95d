package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerGetLocation(t *testing.T) {
	cfg := SchedulerConfig{Timezone: "UTC"}
	loc, err := cfg.GetLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = "Asia/Shanghai"
	loc, err = cfg.GetLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())

	cfg.Timezone = "Not/AZone"
	_, err = cfg.GetLocation()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{}
	valid.Database.Postgres.Host = "localhost"
	valid.Database.Postgres.Database = "invites"
	valid.Database.Postgres.User = "app"
	valid.Database.Redis.Host = "localhost"
	valid.Codes.ExpiryDays = 15
	valid.Codes.MaxAttempts = 10
	require.NoError(t, valid.Validate())

	missingHost := valid
	missingHost.Database.Postgres.Host = ""
	assert.Error(t, missingHost.Validate())

	badExpiry := valid
	badExpiry.Codes.ExpiryDays = 0
	assert.Error(t, badExpiry.Validate())

	notifierNoURL := valid
	notifierNoURL.Notifier.Enabled = true
	assert.Error(t, notifierNoURL.Validate())
}
