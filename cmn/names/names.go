// Package names centralizes the pure-function name/format validators of
// spec §4.9: bucket, object, instance, zone, service-account id, and CIDR
// validation. Modeled on aistore's cmn.Bck name validation (cmn/bucket.go),
// which keeps every naming rule in one place instead of scattered regexes.
package names

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
	"net"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

var (
	bucketRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,61}[a-z0-9]$`)
	instRe    = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)
	zoneRe    = regexp.MustCompile(`^[a-z]+-[a-z0-9]+-[a-z]$`)
	acctIDRe  = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
)

// ValidateBucketName enforces spec §4.1: 3-63 chars, lowercase
// alphanumerics/dashes/dots, must not start or end with '-' or '.'.
func ValidateBucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return cmnerr.Invalidf("bucket name %q must be 3-63 characters", name)
	}
	if !bucketRe.MatchString(name) {
		return cmnerr.Invalidf("bucket name %q is invalid: lowercase alphanumerics, dashes and dots only", name)
	}
	if strings.Contains(name, "..") {
		return cmnerr.Invalidf("bucket name %q cannot contain '..'", name)
	}
	first, last := name[0], name[len(name)-1]
	if first == '-' || first == '.' || last == '-' || last == '.' {
		return cmnerr.Invalidf("bucket name %q cannot start or end with '-' or '.'", name)
	}
	return nil
}

// ValidateObjectName enforces spec §4.1's path-safety + length rule.
// Names may contain '/'; they may not contain '..', a leading '/', a
// drive letter, or a backslash.
func ValidateObjectName(name string) error {
	if name == "" {
		return cmnerr.Invalidf("object name cannot be empty")
	}
	if len(name) > 1024 {
		return cmnerr.Invalidf("object name exceeds 1024 bytes")
	}
	if strings.HasPrefix(name, "/") {
		return cmnerr.Invalidf("object name %q cannot start with '/'", name)
	}
	if strings.Contains(name, "..") {
		return cmnerr.Invalidf("object name %q cannot contain '..'", name)
	}
	if strings.ContainsRune(name, '\\') {
		return cmnerr.Invalidf("object name %q cannot contain '\\'", name)
	}
	if len(name) >= 2 && name[1] == ':' {
		return cmnerr.Invalidf("object name %q cannot contain a drive letter", name)
	}
	return nil
}

// ValidateInstanceName enforces spec §4.2: 1-63 chars, [a-z]([a-z0-9-]*[a-z0-9])?
func ValidateInstanceName(name string) error {
	if len(name) < 1 || len(name) > 63 {
		return cmnerr.Invalidf("instance name %q must be 1-63 characters", name)
	}
	if !instRe.MatchString(name) {
		return cmnerr.Invalidf("instance name %q is invalid", name)
	}
	return nil
}

// ValidateNetworkName reuses the instance-name grammar; both the real
// provider and spec §4.9 describe the same RFC1035-ish label rule for
// every user-chosen resource name.
func ValidateNetworkName(name string) error { return ValidateInstanceName(name) }

// ValidateZone enforces spec §4.9's `<region>-<letter>` format, e.g. "us-central1-a".
func ValidateZone(zone string) error {
	if !zoneRe.MatchString(zone) {
		return cmnerr.Invalidf("zone %q is invalid: expected <region>-<letter>", zone)
	}
	return nil
}

// ValidateServiceAccountID enforces spec §3: [a-z][a-z0-9-]{4,28}[a-z0-9].
func ValidateServiceAccountID(id string) error {
	if !acctIDRe.MatchString(id) {
		return cmnerr.Invalidf("service account id %q is invalid", id)
	}
	return nil
}

// ValidateSubnetCIDR enforces spec §4.3's subnet prefix range /8..29.
func ValidateSubnetCIDR(cidrStr string) error {
	return validateCIDR(cidrStr, 8, 29)
}

// ValidateFirewallCIDR enforces spec §4.3's firewall prefix range /0..32 —
// wider than the subnet validator, deliberately, per spec.
func ValidateFirewallCIDR(cidrStr string) error {
	return validateCIDR(cidrStr, 0, 32)
}

func validateCIDR(cidrStr string, minPrefix, maxPrefix int) error {
	ip, ipnet, err := net.ParseCIDR(cidrStr)
	if err != nil {
		return cmnerr.Invalidf("%q is not a valid CIDR: %v", cidrStr, err)
	}
	ones, _ := ipnet.Mask.Size()
	if ones < minPrefix || ones > maxPrefix {
		return cmnerr.Invalidf("%q prefix length /%d out of range [/%d, /%d]", cidrStr, ones, minPrefix, maxPrefix)
	}
	// AddressRange yields the network's first address; a written address
	// that differs from it has host bits set (e.g. 10.0.0.5/24).
	first, _ := cidr.AddressRange(ipnet)
	if !ip.Equal(first) {
		return cmnerr.Invalidf("%q has host bits set", cidrStr)
	}
	return nil
}

// ValidatePreconditionInt parses a precondition query parameter
// (ifGenerationMatch, ifMetagenerationMatch, ...) and requires it to be a
// non-negative integer (spec §4.9).
func ValidatePreconditionInt(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, cmnerr.Invalidf("precondition value %q must be a non-negative integer", raw)
	}
	return n, nil
}

// ContentRange is a parsed `Content-Range: bytes <start>-<end>/<total|*>` header.
type ContentRange struct {
	Start       int64
	End         int64
	Total       int64 // -1 when '*'
	StatusQuery bool  // true for "bytes */<total>" (empty-body status probe)
}

var contentRangeRe = regexp.MustCompile(`^bytes (\d+)-(\d+)/(\d+|\*)$`)
var contentRangeStatusRe = regexp.MustCompile(`^bytes \*/(\d+|\*)$`)

// ParseContentRange implements spec §4.9's Content-Range grammar, including
// the empty-body status-probe form `bytes */<total>`.
func ParseContentRange(header string) (ContentRange, error) {
	if m := contentRangeStatusRe.FindStringSubmatch(header); m != nil {
		total := int64(-1)
		if m[1] != "*" {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return ContentRange{}, cmnerr.Invalidf("invalid Content-Range %q", header)
			}
			total = n
		}
		return ContentRange{StatusQuery: true, Total: total}, nil
	}
	m := contentRangeRe.FindStringSubmatch(header)
	if m == nil {
		return ContentRange{}, cmnerr.Invalidf("invalid Content-Range %q", header)
	}
	start, _ := strconv.ParseInt(m[1], 10, 64)
	end, _ := strconv.ParseInt(m[2], 10, 64)
	total := int64(-1)
	if m[3] != "*" {
		n, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return ContentRange{}, cmnerr.Invalidf("invalid Content-Range %q", header)
		}
		total = n
	}
	if end < start {
		return ContentRange{}, cmnerr.Invalidf("invalid Content-Range %q: end before start", header)
	}
	return ContentRange{Start: start, End: end, Total: total}, nil
}

// String renders cr back in Content-Range form:
// "bytes <start>-<end>/<total>".
func (cr ContentRange) String() string {
	return fmt.Sprintf("bytes %d-%d/%d", cr.Start, cr.End, cr.Total)
}
