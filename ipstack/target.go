package ipstack

import (
	"strings"

	"inet.af/netaddr"
)

type targetKind uint8

const (
	targetSingle targetKind = iota
	targetBulk
	targetRequester
)

const requesterEndpoint = "/check"

// Target is what should be looked up: a single address, a list of
// addresses or an address of the requester itself. Addresses are IPs
// or hostnames.
type Target struct {
	kind      targetKind
	addresses []string
}

func (t Target) IsBulk() bool {
	return t.kind == targetBulk
}

func (t Target) Addresses() []string {
	return append([]string(nil), t.addresses...)
}

func (t Target) String() string {
	if t.kind == targetRequester {
		return "requester"
	}

	return strings.Join(t.addresses, ",")
}

// Endpoint builds a path for API: /1.1.1.1, /1.1.1.1,2.2.2.2 or /check.
func (t Target) Endpoint() (string, error) {
	if t.kind == targetRequester {
		return requesterEndpoint, nil
	}

	if len(t.addresses) == 0 {
		return "", &TargetError{Reason: "no addresses are given"}
	}

	for _, v := range t.addresses {
		switch {
		case v == "":
			return "", &TargetError{Target: t.String(), Reason: "empty address"}
		case strings.ContainsAny(v, ",/?#% "):
			return "", &TargetError{Target: v, Reason: "address has forbidden characters"}
		}
	}

	return "/" + strings.Join(t.addresses, ","), nil
}

// SingleTarget is a target for a single IP address or hostname.
// Textual IPs are canonicalized.
func SingleTarget(address string) Target {
	return Target{
		kind:      targetSingle,
		addresses: []string{canonicalAddress(address)},
	}
}

// BulkTargets is a target for bulk lookup. ipstack returns one record
// per address, in the same order.
func BulkTargets(addresses ...string) Target {
	rv := Target{
		kind:      targetBulk,
		addresses: make([]string, 0, len(addresses)),
	}

	for _, v := range addresses {
		rv.addresses = append(rv.addresses, canonicalAddress(v))
	}

	return rv
}

func IPTarget(ip netaddr.IP) Target {
	addr := ""
	if !ip.IsZero() {
		addr = ip.String()
	}

	return Target{
		kind:      targetSingle,
		addresses: []string{addr},
	}
}

// RequesterTarget is a target for IP address of the requester
// (ipstack /check endpoint).
func RequesterTarget() Target {
	return Target{
		kind: targetRequester,
	}
}

func canonicalAddress(address string) string {
	address = strings.TrimSpace(address)

	if ip, err := netaddr.ParseIP(address); err == nil {
		return ip.String()
	}

	return address
}
