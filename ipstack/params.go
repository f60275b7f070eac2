package ipstack

import (
	"net/url"
	"strings"
)

// Params is a builder of optional query parameters of ipstack API.
//
//	params := ipstack.NewParams().Fields("ip", "country_code").Language("de")
//	client.Lookup(ctx, "1.1.1.1", params.Values())
type Params struct {
	values url.Values
}

// Fields limits a set of returned fields. Nested fields are addressed
// like location.capital.
func (p *Params) Fields(fields ...string) *Params {
	return p.set("fields", strings.Join(fields, ","))
}

func (p *Params) Language(language string) *Params {
	return p.set("language", language)
}

func (p *Params) Hostname(enabled bool) *Params {
	return p.set("hostname", boolParam(enabled))
}

func (p *Params) Security(enabled bool) *Params {
	return p.set("security", boolParam(enabled))
}

func (p *Params) Output(format string) *Params {
	return p.set("output", format)
}

func (p *Params) Set(key, value string) *Params {
	return p.set(key, value)
}

// Values returns a copy of collected parameters.
func (p *Params) Values() url.Values {
	rv := make(url.Values, len(p.values))

	for k, v := range p.values {
		rv[k] = append([]string(nil), v...)
	}

	return rv
}

func (p *Params) set(key, value string) *Params {
	if value == "" {
		p.values.Del(key)
	} else {
		p.values.Set(key, value)
	}

	return p
}

func NewParams() *Params {
	return &Params{
		values: url.Values{},
	}
}

func boolParam(value bool) string {
	if value {
		return "1"
	}

	return "0"
}
