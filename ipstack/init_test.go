package ipstack_test

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/9seconds/ipstack/ipstack"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testAccessKey = "8743r8dew:4398:fed3efwewf9843j3f9jru49r"
	testBaseURL   = "https://api.ipstack.test"

	freeResponseJSON = `{
        "ip": "1.1.1.1",
        "hostname": "",
        "type": "ipv4",
        "continent_code": "NA",
        "continent_name": "North America",
        "country_code": "US",
        "country_name": "United States",
        "region_code": "CA",
        "region_name": "California",
        "city": "Beverly Hills",
        "zip": 90210,
        "latitude": 34.0,
        "longitude": -118.0
    }`

	secondResponseJSON = `{
        "ip": "2.2.2.2",
        "hostname": "",
        "type": "ipv4",
        "continent_code": "EU",
        "continent_name": "Europe",
        "country_code": "FR",
        "country_name": "France",
        "region_code": "IDF",
        "region_name": "Île-de-France",
        "city": "Paris",
        "zip": "75001",
        "latitude": 48.86,
        "longitude": 2.34
    }`

	paidResponseJSON = `{
        "ip": "134.201.250.155",
        "hostname": "134.201.250.155",
        "type": "ipv4",
        "continent_code": "NA",
        "continent_name": "North America",
        "country_code": "US",
        "country_name": "United States",
        "region_code": "CA",
        "region_name": "California",
        "city": "Los Angeles",
        "zip": 90013,
        "latitude": 34.0453,
        "longitude": -118.2413,
        "location": {
            "geoname_id": 5368361,
            "capital": "Washington D.C.",
            "languages": [
                {"code": "en", "name": "English", "native": "English"}
            ],
            "country_flag": "https://assets.ipstack.com/images/assets/flags_svg/us.svg",
            "country_flag_emoji": "🇺🇸",
            "country_flag_emoji_unicode": "U+1F1FA U+1F1F8",
            "calling_code": "1",
            "is_eu": false
        },
        "time_zone": {
            "id": "America/Los_Angeles",
            "current_time": "2018-03-29T07:35:08-07:00",
            "gmt_offset": -25200,
            "code": "PDT",
            "is_daylight_saving": true
        },
        "currency": {
            "code": "USD",
            "name": "US Dollar",
            "plural": "US dollars",
            "symbol": "$",
            "symbol_native": "$"
        },
        "connection": {
            "asn": 25876,
            "isp": "Los Angeles Department of Water & Power"
        },
        "security": {
            "is_proxy": false,
            "proxy_type": null,
            "is_crawler": false,
            "crawler_name": null,
            "crawler_type": null,
            "is_tor": false,
            "threat_level": "low",
            "threat_types": null
        }
    }`
)

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) MethodNotAllowed(method string) {
	m.Called(method)
}

func (m *LoggerMock) Retry(url string, statusCode int) {
	m.Called(url, statusCode)
}

func (m *LoggerMock) RetryFailed(url string, statusCode int, text string) {
	m.Called(url, statusCode, text)
}

func (m *LoggerMock) DecodeFailure(url string, statusCode int, err error) {
	m.Called(url, statusCode, err)
}

func (m *LoggerMock) EnvelopeFailure(url string) {
	m.Called(url)
}

func (m *LoggerMock) APIFailure(url string, code int, message string) {
	m.Called(url, code, message)
}

func (m *LoggerMock) NetworkFailure(url string, err error) {
	m.Called(url, err)
}

type LookuperMock struct {
	mock.Mock
}

func (m *LookuperMock) Lookup(ctx context.Context,
	address string,
	params url.Values,
	opts ...ipstack.RequestOption) (*ipstack.StandardResponse, error) {
	args := m.Called(ctx, address, params)

	resp, _ := args.Get(0).(*ipstack.StandardResponse)

	return resp, args.Error(1)
}

func (m *LookuperMock) BulkLookup(ctx context.Context,
	addresses []string,
	params url.Values,
	opts ...ipstack.RequestOption) ([]ipstack.StandardResponse, error) {
	args := m.Called(ctx, addresses, params)

	resp, _ := args.Get(0).([]ipstack.StandardResponse)

	return resp, args.Error(1)
}

func (m *LookuperMock) LookupTarget(ctx context.Context,
	target ipstack.Target,
	params url.Values,
	opts ...ipstack.RequestOption) ([]ipstack.StandardResponse, error) {
	args := m.Called(ctx, target, params)

	resp, _ := args.Get(0).([]ipstack.StandardResponse)

	return resp, args.Error(1)
}

type MockedHTTPTestSuite struct {
	suite.Suite

	transport *httpmock.MockTransport
	http      ipstack.HTTPClient
}

func (suite *MockedHTTPTestSuite) SetupTest() {
	suite.transport = httpmock.NewMockTransport()
	suite.http = ipstack.NewHTTPClient(&http.Client{Transport: suite.transport},
		"test-agent",
		0,
		1,
		100,
		time.Minute,
		time.Minute)
}

func (suite *MockedHTTPTestSuite) RegisterSequence(method, url string, responders ...httpmock.Responder) {
	calls := 0

	suite.transport.RegisterResponder(method, url, func(req *http.Request) (*http.Response, error) {
		responder := responders[len(responders)-1]

		if calls < len(responders) {
			responder = responders[calls]
		}

		calls++

		return responder(req)
	})
}

func (suite *MockedHTTPTestSuite) CallCount() int {
	return suite.transport.GetTotalCallCount()
}
