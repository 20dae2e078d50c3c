package partner

import (
	"fmt"
	"strings"
)

// Family is a group of local routes that share one upstream path transform.
type Family int

const (
	FamilyReports Family = iota + 1
	FamilyMobileAdmin
	FamilyUserDetails
)

func (f Family) String() string {
	switch f {
	case FamilyReports:
		return "reports"
	case FamilyMobileAdmin:
		return "mobile-admin"
	case FamilyUserDetails:
		return "user-details"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// TargetURL maps the suffix of a local path (the part after the family prefix) to the
// upstream URL. rawQuery is appended unchanged. The base URL may carry a trailing slash.
func TargetURL(baseURL string, family Family, suffix string, rawQuery string) string {
	base := strings.TrimRight(baseURL, "/")

	var target string
	switch family {
	case FamilyReports:
		target = base + "/reports" + suffix
	case FamilyMobileAdmin, FamilyUserDetails:
		target = strings.TrimSuffix(base, "/admin") + "/admin/users" + suffix
	default:
		panic(fmt.Sprintf("partner: no target mapping for %s", family))
	}

	if rawQuery != "" {
		target += "?" + rawQuery
	}

	return target
}
