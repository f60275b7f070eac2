package ipstack_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/9seconds/ipstack/ipstack"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CachingClientTestSuite struct {
	suite.Suite

	ctx       context.Context
	ctxCancel context.CancelFunc
	lookuper  *LookuperMock
	client    *ipstack.CachingClient
}

func (suite *CachingClientTestSuite) SetupTest() {
	suite.ctx, suite.ctxCancel = context.WithCancel(context.Background())
	suite.lookuper = &LookuperMock{}

	client, err := ipstack.NewCachingClient(suite.lookuper, 100, time.Minute)

	suite.NoError(err)

	suite.client = client
}

func (suite *CachingClientTestSuite) TearDownTest() {
	suite.ctxCancel()
	suite.client.Close()
	suite.lookuper.AssertExpectations(suite.T())
}

func (suite *CachingClientTestSuite) TestLookupIsCached() {
	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.SingleTarget("1.1.1.1"), url.Values(nil)).
		Once().
		Return([]ipstack.StandardResponse{{IP: "1.1.1.1", City: "Beverly Hills"}}, nil)

	resp, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)
	suite.Equal("Beverly Hills", resp.City)

	time.Sleep(100 * time.Millisecond)

	resp, err = suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)
	suite.Equal("Beverly Hills", resp.City)
}

func (suite *CachingClientTestSuite) TestCachedRecordIsNotShared() {
	proxyType := "vpn"

	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.SingleTarget("1.1.1.1"), url.Values(nil)).
		Once().
		Return([]ipstack.StandardResponse{{
			IP: "1.1.1.1",
			Location: &ipstack.Location{
				Capital:   "Washington D.C.",
				Languages: []ipstack.Language{{Code: "en"}},
			},
			Connection: &ipstack.Connection{ASN: 13335},
			Security: &ipstack.Security{
				ProxyType:   &proxyType,
				ThreatTypes: []string{"tor"},
			},
		}}, nil)

	first, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)

	first.Location.Capital = "Paris"
	first.Location.Languages[0].Code = "fr"
	first.Connection.ASN = 1
	*first.Security.ProxyType = "tor"
	first.Security.ThreatTypes[0] = "spam"

	time.Sleep(100 * time.Millisecond)

	second, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)
	suite.Equal("Washington D.C.", second.Location.Capital)
	suite.Equal("en", second.Location.Languages[0].Code)
	suite.Equal(13335, second.Connection.ASN)
	suite.Equal("vpn", *second.Security.ProxyType)
	suite.Equal([]string{"tor"}, second.Security.ThreatTypes)

	second.Location.Capital = "Berlin"

	time.Sleep(10 * time.Millisecond)

	third, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)
	suite.Equal("Washington D.C.", third.Location.Capital)
}

func (suite *CachingClientTestSuite) TestCacheKeyHasParams() {
	params := ipstack.NewParams().Language("de").Values()

	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.SingleTarget("1.1.1.1"), url.Values(nil)).
		Once().
		Return([]ipstack.StandardResponse{{IP: "1.1.1.1", City: "Beverly Hills"}}, nil)
	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.SingleTarget("1.1.1.1"), params).
		Once().
		Return([]ipstack.StandardResponse{{IP: "1.1.1.1", City: "Beverly Hills", CountryName: "Vereinigte Staaten"}}, nil)

	resp, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.NoError(err)
	suite.Equal("", resp.CountryName)

	time.Sleep(100 * time.Millisecond)

	resp, err = suite.client.Lookup(suite.ctx, "1.1.1.1", params)

	suite.NoError(err)
	suite.Equal("Vereinigte Staaten", resp.CountryName)
}

func (suite *CachingClientTestSuite) TestErrorIsNotCached() {
	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.SingleTarget("1.1.1.1"), url.Values(nil)).
		Twice().
		Return(nil, &ipstack.APIError{Code: 104, Message: "limit reached"})

	_, err := suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	suite.Error(err)

	time.Sleep(100 * time.Millisecond)

	_, err = suite.client.Lookup(suite.ctx, "1.1.1.1", nil)

	var apiErr *ipstack.APIError

	suite.True(errors.As(err, &apiErr))
	suite.Equal(104, apiErr.Code)
}

func (suite *CachingClientTestSuite) TestBulkIsNotCached() {
	addresses := []string{"1.1.1.1", "2.2.2.2"}

	suite.lookuper.
		On("BulkLookup", mock.Anything, addresses, url.Values(nil)).
		Twice().
		Return([]ipstack.StandardResponse{{IP: "1.1.1.1"}, {IP: "2.2.2.2"}}, nil)

	for i := 0; i < 2; i++ {
		resp, err := suite.client.BulkLookup(suite.ctx, addresses, nil)

		suite.NoError(err)
		suite.Len(resp, 2)

		time.Sleep(100 * time.Millisecond)
	}
}

func (suite *CachingClientTestSuite) TestRequesterIsNotCached() {
	suite.lookuper.
		On("LookupTarget", mock.Anything, ipstack.RequesterTarget(), url.Values(nil)).
		Twice().
		Return([]ipstack.StandardResponse{{IP: "3.3.3.3"}}, nil)

	for i := 0; i < 2; i++ {
		resp, err := suite.client.LookupTarget(suite.ctx, ipstack.RequesterTarget(), nil)

		suite.NoError(err)
		suite.Equal("3.3.3.3", resp[0].IP)

		time.Sleep(100 * time.Millisecond)
	}
}

func TestCachingClient(t *testing.T) {
	suite.Run(t, &CachingClientTestSuite{})
}
