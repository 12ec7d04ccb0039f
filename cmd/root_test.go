package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/L4er70/ContactBook/shared"
	"github.com/stretchr/testify/assert"
)

func TestLoadServerConfigDevMode(t *testing.T) {
	serverConfig, err := loadServerConfig("", true)
	assert.Nil(t, err)
	assert.Equal(t, shared.SQLITE_DRIVER, serverConfig.Database.Driver)
	assert.Equal(t, 3000, serverConfig.ContactBook.Listener.Port)
	assert.True(t, serverConfig.ContactBook.SeedAdmin)
	assert.NotEmpty(t, serverConfig.ContactBook.PrivateKeyPem)
	assert.False(t, serverConfig.BackupEnabled())
}

func TestLoadServerConfigEnvOverride(t *testing.T) {
	os.Setenv("CONTACTBOOK_CONTACTBOOK_LISTENER_PORT", "4000")
	defer os.Unsetenv("CONTACTBOOK_CONTACTBOOK_LISTENER_PORT")

	serverConfig, err := loadServerConfig("", true)
	assert.Nil(t, err)
	assert.Equal(t, 4000, serverConfig.ContactBook.Listener.Port)
}

func TestLoadServerConfigRequiresFile(t *testing.T) {
	_, err := loadServerConfig("", false)
	assert.NotNil(t, err)
}

func TestLoadServerConfigValidation(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "server.yml")
	err := os.WriteFile(configFile, []byte(`
contactbook:
  cron:
    timeZone: UTC
  listener:
    port: 3000
database:
  driver: postgres
`), 0600)
	assert.Nil(t, err)

	_, err = loadServerConfig(configFile, false)
	assert.NotNil(t, err, "privateKeyPem is required")

	err = os.WriteFile(configFile, []byte(`
contactbook:
  privateKeyPem: not-checked-here
  cron:
    timeZone: UTC
  listener:
    port: 3000
database:
  driver: postgres
`), 0600)
	assert.Nil(t, err)

	_, err = loadServerConfig(configFile, false)
	assert.Contains(t, err.Error(), "database.dsn is required")
}
