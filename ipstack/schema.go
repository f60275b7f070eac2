package ipstack

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	errFieldIsMissing = errors.New("field is missing")
	errNullRecord     = errors.New("record is null")
)

// StandardResponse is a result of IP lookup. Nested records are set
// only if access key has a plan which provides them, otherwise they are
// nil.
type StandardResponse struct {
	IP            string  `json:"ip"`
	Hostname      string  `json:"hostname"`
	Type          string  `json:"type"`
	ContinentCode string  `json:"continent_code"`
	ContinentName string  `json:"continent_name"`
	CountryCode   string  `json:"country_code"`
	CountryName   string  `json:"country_name"`
	RegionCode    string  `json:"region_code"`
	RegionName    string  `json:"region_name"`
	City          string  `json:"city"`
	Zip           int     `json:"zip"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`

	Location   *Location   `json:"location,omitempty"`
	TimeZone   *TimeZone   `json:"time_zone,omitempty"`
	Currency   *Currency   `json:"currency,omitempty"`
	Connection *Connection `json:"connection,omitempty"`
	Security   *Security   `json:"security,omitempty"`
}

func (s *StandardResponse) UnmarshalJSON(data []byte) error {
	const record = "StandardResponse"

	raw := struct {
		IP            *string         `json:"ip"`
		Hostname      *string         `json:"hostname"`
		Type          *string         `json:"type"`
		ContinentCode *string         `json:"continent_code"`
		ContinentName *string         `json:"continent_name"`
		CountryCode   *string         `json:"country_code"`
		CountryName   *string         `json:"country_name"`
		RegionCode    *string         `json:"region_code"`
		RegionName    *string         `json:"region_name"`
		City          *string         `json:"city"`
		Zip           json.RawMessage `json:"zip"`
		Latitude      *float64        `json:"latitude"`
		Longitude     *float64        `json:"longitude"`

		Location   *Location   `json:"location"`
		TimeZone   *TimeZone   `json:"time_zone"`
		Currency   *Currency   `json:"currency"`
		Connection *Connection `json:"connection"`
		Security   *Security   `json:"security"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	zip, err := parseZip(raw.Zip)
	if err != nil {
		return &ValidationError{Record: record, Field: "zip", err: err}
	}

	fields := requiredFields{record: record}
	rv := StandardResponse{
		IP:            require(&fields, "ip", raw.IP),
		Hostname:      require(&fields, "hostname", raw.Hostname),
		Type:          require(&fields, "type", raw.Type),
		ContinentCode: require(&fields, "continent_code", raw.ContinentCode),
		ContinentName: require(&fields, "continent_name", raw.ContinentName),
		CountryCode:   require(&fields, "country_code", raw.CountryCode),
		CountryName:   require(&fields, "country_name", raw.CountryName),
		RegionCode:    require(&fields, "region_code", raw.RegionCode),
		RegionName:    require(&fields, "region_name", raw.RegionName),
		City:          require(&fields, "city", raw.City),
		Zip:           require(&fields, "zip", zip),
		Latitude:      require(&fields, "latitude", raw.Latitude),
		Longitude:     require(&fields, "longitude", raw.Longitude),
		Location:      raw.Location,
		TimeZone:      raw.TimeZone,
		Currency:      raw.Currency,
		Connection:    raw.Connection,
		Security:      raw.Security,
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*s = rv

	return nil
}

type Location struct {
	GeonameID               int        `json:"geoname_id"`
	Capital                 string     `json:"capital"`
	Languages               []Language `json:"languages"`
	CountryFlag             string     `json:"country_flag"`
	CountryFlagEmoji        string     `json:"country_flag_emoji"`
	CountryFlagEmojiUnicode string     `json:"country_flag_emoji_unicode"`
	CallingCode             string     `json:"calling_code"`
	IsEU                    bool       `json:"is_eu"`
}

func (l *Location) UnmarshalJSON(data []byte) error {
	const record = "Location"

	raw := struct {
		GeonameID               *int        `json:"geoname_id"`
		Capital                 *string     `json:"capital"`
		Languages               *[]Language `json:"languages"`
		CountryFlag             *string     `json:"country_flag"`
		CountryFlagEmoji        *string     `json:"country_flag_emoji"`
		CountryFlagEmojiUnicode *string     `json:"country_flag_emoji_unicode"`
		CallingCode             *string     `json:"calling_code"`
		IsEU                    *bool       `json:"is_eu"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := Location{
		GeonameID:               require(&fields, "geoname_id", raw.GeonameID),
		Capital:                 require(&fields, "capital", raw.Capital),
		Languages:               require(&fields, "languages", raw.Languages),
		CountryFlag:             require(&fields, "country_flag", raw.CountryFlag),
		CountryFlagEmoji:        require(&fields, "country_flag_emoji", raw.CountryFlagEmoji),
		CountryFlagEmojiUnicode: require(&fields, "country_flag_emoji_unicode", raw.CountryFlagEmojiUnicode),
		CallingCode:             require(&fields, "calling_code", raw.CallingCode),
		IsEU:                    require(&fields, "is_eu", raw.IsEU),
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*l = rv

	return nil
}

type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

func (l *Language) UnmarshalJSON(data []byte) error {
	const record = "Language"

	raw := struct {
		Code   *string `json:"code"`
		Name   *string `json:"name"`
		Native *string `json:"native"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := Language{
		Code:   require(&fields, "code", raw.Code),
		Name:   require(&fields, "name", raw.Name),
		Native: require(&fields, "native", raw.Native),
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*l = rv

	return nil
}

// TimeZone is a timezone of IP. GMTOffset is in seconds.
type TimeZone struct {
	ID               string `json:"id"`
	CurrentTime      string `json:"current_time"`
	GMTOffset        int    `json:"gmt_offset"`
	Code             string `json:"code"`
	IsDaylightSaving bool   `json:"is_daylight_saving"`
}

func (t *TimeZone) UnmarshalJSON(data []byte) error {
	const record = "TimeZone"

	raw := struct {
		ID               *string `json:"id"`
		CurrentTime      *string `json:"current_time"`
		GMTOffset        *int    `json:"gmt_offset"`
		Code             *string `json:"code"`
		IsDaylightSaving *bool   `json:"is_daylight_saving"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := TimeZone{
		ID:               require(&fields, "id", raw.ID),
		CurrentTime:      require(&fields, "current_time", raw.CurrentTime),
		GMTOffset:        require(&fields, "gmt_offset", raw.GMTOffset),
		Code:             require(&fields, "code", raw.Code),
		IsDaylightSaving: require(&fields, "is_daylight_saving", raw.IsDaylightSaving),
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*t = rv

	return nil
}

type Currency struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Plural       string `json:"plural"`
	Symbol       string `json:"symbol"`
	SymbolNative string `json:"symbol_native"`
}

func (c *Currency) UnmarshalJSON(data []byte) error {
	const record = "Currency"

	raw := struct {
		Code         *string `json:"code"`
		Name         *string `json:"name"`
		Plural       *string `json:"plural"`
		Symbol       *string `json:"symbol"`
		SymbolNative *string `json:"symbol_native"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := Currency{
		Code:         require(&fields, "code", raw.Code),
		Name:         require(&fields, "name", raw.Name),
		Plural:       require(&fields, "plural", raw.Plural),
		Symbol:       require(&fields, "symbol", raw.Symbol),
		SymbolNative: require(&fields, "symbol_native", raw.SymbolNative),
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*c = rv

	return nil
}

type Connection struct {
	ASN int    `json:"asn"`
	ISP string `json:"isp"`
}

func (c *Connection) UnmarshalJSON(data []byte) error {
	const record = "Connection"

	raw := struct {
		ASN *int    `json:"asn"`
		ISP *string `json:"isp"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := Connection{
		ASN: require(&fields, "asn", raw.ASN),
		ISP: require(&fields, "isp", raw.ISP),
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*c = rv

	return nil
}

// Security is a threat assessment of IP. ipstack sends null for proxy
// and crawler details if IP is not a proxy or crawler, so these are
// pointers.
//
// Types follow what live API actually sends: is_* flags are JSON
// booleans and threat_types is a list of strings (or null), not a
// single string.
type Security struct {
	IsProxy     bool     `json:"is_proxy"`
	ProxyType   *string  `json:"proxy_type"`
	IsCrawler   bool     `json:"is_crawler"`
	CrawlerName *string  `json:"crawler_name"`
	CrawlerType *string  `json:"crawler_type"`
	IsTor       bool     `json:"is_tor"`
	ThreatLevel string   `json:"threat_level"`
	ThreatTypes []string `json:"threat_types"`
}

func (s *Security) UnmarshalJSON(data []byte) error {
	const record = "Security"

	raw := struct {
		IsProxy     *bool    `json:"is_proxy"`
		ProxyType   *string  `json:"proxy_type"`
		IsCrawler   *bool    `json:"is_crawler"`
		CrawlerName *string  `json:"crawler_name"`
		CrawlerType *string  `json:"crawler_type"`
		IsTor       *bool    `json:"is_tor"`
		ThreatLevel *string  `json:"threat_level"`
		ThreatTypes []string `json:"threat_types"`
	}{}

	if err := decodeRecord(record, data, &raw); err != nil {
		return err
	}

	fields := requiredFields{record: record}
	rv := Security{
		IsProxy:     require(&fields, "is_proxy", raw.IsProxy),
		ProxyType:   raw.ProxyType,
		IsCrawler:   require(&fields, "is_crawler", raw.IsCrawler),
		CrawlerName: raw.CrawlerName,
		CrawlerType: raw.CrawlerType,
		IsTor:       require(&fields, "is_tor", raw.IsTor),
		ThreatLevel: require(&fields, "threat_level", raw.ThreatLevel),
		ThreatTypes: raw.ThreatTypes,
	}

	if err := fields.Err(); err != nil {
		return err
	}

	*s = rv

	return nil
}

// clone makes a deep copy: nested records and slices are not shared.
func (s StandardResponse) clone() StandardResponse {
	rv := s

	if s.Location != nil {
		location := *s.Location

		if s.Location.Languages != nil {
			location.Languages = make([]Language, len(s.Location.Languages))
			copy(location.Languages, s.Location.Languages)
		}

		rv.Location = &location
	}

	if s.TimeZone != nil {
		timeZone := *s.TimeZone
		rv.TimeZone = &timeZone
	}

	if s.Currency != nil {
		currency := *s.Currency
		rv.Currency = &currency
	}

	if s.Connection != nil {
		connection := *s.Connection
		rv.Connection = &connection
	}

	if s.Security != nil {
		security := *s.Security
		security.ProxyType = cloneString(s.Security.ProxyType)
		security.CrawlerName = cloneString(s.Security.CrawlerName)
		security.CrawlerType = cloneString(s.Security.CrawlerType)

		if s.Security.ThreatTypes != nil {
			security.ThreatTypes = make([]string, len(s.Security.ThreatTypes))
			copy(security.ThreatTypes, s.Security.ThreatTypes)
		}

		rv.Security = &security
	}

	return rv
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}

	rv := *value

	return &rv
}

type requiredFields struct {
	record  string
	missing []string
}

func (r *requiredFields) Err() error {
	if len(r.missing) == 0 {
		return nil
	}

	return &ValidationError{
		Record: r.record,
		Field:  strings.Join(r.missing, ","),
		err:    errFieldIsMissing,
	}
}

func require[T any](fields *requiredFields, name string, value *T) T {
	if value == nil {
		fields.missing = append(fields.missing, name)

		var zero T

		return zero
	}

	return *value
}

func decodeRecord(record string, data []byte, v interface{}) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return &ValidationError{Record: record, err: errNullRecord}
	}

	if err := json.Unmarshal(data, v); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return err
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Record: record, Field: typeErr.Field, err: err}
		}

		return &ValidationError{Record: record, err: err}
	}

	return nil
}

// parseZip accepts both integer and a string with integer: ipstack
// sends zip codes as strings. Missing or null zip gives nil.
func parseZip(raw json.RawMessage) (*int, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var text string

		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, err
		}

		value, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}

		return &value, nil
	}

	var value int

	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, err
	}

	return &value, nil
}
