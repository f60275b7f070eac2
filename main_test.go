package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LoadConfigTestSuite struct {
	suite.Suite
}

func (suite *LoadConfigTestSuite) TearDownTest() {
	*baseURL = ""
	*timeout = 0
}

func (suite *LoadConfigTestSuite) TestFlagsOverrideFile() {
	path := filepath.Join(suite.T().TempDir(), "config.toml")

	suite.NoError(os.WriteFile(path, []byte(`base_url = "https://api.ipstack.test"`), 0600))

	*baseURL = "https://other.ipstack.test"
	*timeout = 3 * time.Second

	conf, err := loadConfig(path)

	suite.NoError(err)
	suite.Equal("https://other.ipstack.test", conf.GetBaseURL())
	suite.Equal(3*time.Second, conf.GetHTTPTimeout())
}

func (suite *LoadConfigTestSuite) TestBaseURLFlagIsValidated() {
	testData := []string{
		"api.ipstack.com",
		"ftp://api.ipstack.com",
		"http://",
		"http://[::1",
	}

	for _, v := range testData {
		value := v

		suite.T().Run(value, func(t *testing.T) {
			*baseURL = value

			_, err := loadConfig("")

			assert.Error(t, err)
		})
	}
}

func (suite *LoadConfigTestSuite) TestNegativeTimeoutFlag() {
	*timeout = -time.Second

	_, err := loadConfig("")

	suite.Error(err)
}

func TestLoadConfig(t *testing.T) {
	suite.Run(t, &LoadConfigTestSuite{})
}
