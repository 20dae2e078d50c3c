package proxy

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/katatrina/complaint-BE/internal/partner"
)

// Action identifies the report operations that carry extra behaviour.
type Action int

const (
	ActionNone Action = iota
	ActionAssignAdmin
	ActionRevokeAdmin
	ActionResolve
	ActionClose
	ActionChatroomInitiate
	ActionChatSend
	ActionFeedbacks
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionAssignAdmin:      "assign-admin",
	ActionRevokeAdmin:      "revoke-admin",
	ActionResolve:          "resolve",
	ActionClose:            "close",
	ActionChatroomInitiate: "chatroom-initiate",
	ActionChatSend:         "chat-send",
	ActionFeedbacks:        "feedbacks",
}

func (a Action) String() string {
	return actionNames[a]
}

// Match is the result of routing a local request.
type Match struct {
	Family partner.Family
	Action Action
	// Suffix is the path remainder after the family prefix, passed to partner.TargetURL.
	Suffix     string
	ReportID   string
	ChatroomID string
}

type route struct {
	family  partner.Family
	action  Action
	methods map[string]struct{}
	pattern *regexp.Regexp
}

func newRoute(family partner.Family, action Action, pattern string, methods ...string) route {
	r := route{
		family:  family,
		action:  action,
		pattern: regexp.MustCompile(pattern),
	}
	if len(methods) > 0 {
		r.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			r.methods[m] = struct{}{}
		}
	}
	return r
}

func (r route) allows(method string) bool {
	if r.methods == nil {
		return true
	}
	_, ok := r.methods[method]
	return ok
}

// routes is ordered: the first entry that matches wins.
var routes = []route{
	newRoute(partner.FamilyReports, ActionAssignAdmin,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/assign-admin/?)$`, http.MethodPatch),
	newRoute(partner.FamilyReports, ActionRevokeAdmin,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/revoke-admin/?)$`, http.MethodPatch),
	newRoute(partner.FamilyReports, ActionResolve,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/resolve/?)$`, http.MethodPatch),
	newRoute(partner.FamilyReports, ActionClose,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/close/?)$`, http.MethodPatch),
	newRoute(partner.FamilyReports, ActionChatroomInitiate,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/chatrooms/initiate/?)$`, http.MethodPost),
	newRoute(partner.FamilyReports, ActionChatSend,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/chatrooms/(?P<chatroom>[^/]+)/chats/?)$`, http.MethodPost),
	newRoute(partner.FamilyReports, ActionFeedbacks,
		`^/admin/reports(?P<suffix>/(?P<report>[^/]+)/feedbacks/?)$`, http.MethodGet),
	newRoute(partner.FamilyReports, ActionNone,
		`^/admin/reports(?P<suffix>/.*)?$`),
	newRoute(partner.FamilyMobileAdmin, ActionNone,
		`^/admin/mobileAdmin(?P<suffix>/.*)?$`),
	newRoute(partner.FamilyUserDetails, ActionNone,
		`^/admin/users(?P<suffix>/[^/]+/details/?)$`, http.MethodGet),
}

// MatchRoute finds the route for a local request path. path must be the escaped form
// (url.URL.EscapedPath) so that the suffix reaches the partner byte for byte;
// the extracted ids are unescaped.
func MatchRoute(method, path string) (Match, bool) {
	for _, r := range routes {
		if !r.allows(method) {
			continue
		}
		groups := r.pattern.FindStringSubmatch(path)
		if groups == nil {
			continue
		}

		m := Match{Family: r.family, Action: r.action}
		for i, name := range r.pattern.SubexpNames() {
			switch name {
			case "suffix":
				m.Suffix = groups[i]
			case "report":
				m.ReportID = unescapeSegment(groups[i])
			case "chatroom":
				m.ChatroomID = unescapeSegment(groups[i])
			}
		}
		return m, true
	}

	return Match{}, false
}

func unescapeSegment(segment string) string {
	unescaped, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return unescaped
}
