package proxy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/katatrina/complaint-BE/internal/notifier"
	"github.com/katatrina/complaint-BE/internal/partner"
	"github.com/katatrina/complaint-BE/internal/token"
	"github.com/rs/zerolog/log"
)

// Request is an inbound call to one of the proxied route families.
type Request struct {
	Method        string
	Path          string // escaped, as url.URL.EscapedPath returns it
	RawQuery      string
	ContentType   string
	Authorization string
	Body          []byte
	Principal     token.Principal
}

// Response is written back to the caller unchanged.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forwarder performs the upstream call.
type Forwarder interface {
	Forward(ctx context.Context, req partner.ForwardRequest) *partner.ForwardResponse
}

// TaskSubmitter accepts post-response notification work without blocking.
type TaskSubmitter interface {
	Submit(task notifier.Task) bool
}

var triggers = map[Action]notifier.Trigger{
	ActionAssignAdmin:      notifier.TriggerAssignAdmin,
	ActionRevokeAdmin:      notifier.TriggerRevokeAdmin,
	ActionResolve:          notifier.TriggerResolve,
	ActionClose:            notifier.TriggerClose,
	ActionChatroomInitiate: notifier.TriggerChatroomInitiate,
}

// Router sequences gate, enrichment, forwarding and the detached notification hand-off.
type Router struct {
	baseURL   string
	forwarder Forwarder
	gate      *Gate
	enricher  *Enricher
	tasks     TaskSubmitter
}

func NewRouter(baseURL string, forwarder Forwarder, gate *Gate, enricher *Enricher, tasks TaskSubmitter) *Router {
	return &Router{
		baseURL:   baseURL,
		forwarder: forwarder,
		gate:      gate,
		enricher:  enricher,
		tasks:     tasks,
	}
}

// Serve handles one proxied request. The returned response is the partner's, except
// for gate rejections (400), unknown routes (404) and unreachable partner (502).
func (r *Router) Serve(ctx context.Context, req *Request) *Response {
	m, ok := MatchRoute(req.Method, req.Path)
	if !ok {
		return errorJSON(http.StatusNotFound, "route not found")
	}

	// Once a request is accepted it runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if blocked := r.gate.Check(ctx, m, req); blocked != nil {
		log.Info().Str("action", m.Action.String()).Str("report", m.ReportID).
			Int("status", blocked.StatusCode).Msg("request blocked before forwarding")
		return blocked
	}

	r.enricher.Enrich(ctx, m, req)

	resp := r.forwarder.Forward(ctx, partner.ForwardRequest{
		Method:        req.Method,
		URL:           partner.TargetURL(r.baseURL, m.Family, m.Suffix, req.RawQuery),
		ContentType:   req.ContentType,
		Authorization: req.Authorization,
		Body:          req.Body,
	})
	if resp.Err != nil {
		log.Error().Err(resp.Err).Str("family", m.Family.String()).Str("path", req.Path).Msg("partner unreachable")
	}

	r.handOff(m, req, resp)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     partner.PassthroughHeaders(resp.Header),
		Body:       resp.Body,
	}
}

func (r *Router) handOff(m Match, req *Request, resp *partner.ForwardResponse) {
	if m.Family != partner.FamilyReports || m.ReportID == "" || resp.Err != nil {
		return
	}
	trigger, ok := triggers[m.Action]
	if !ok || !trigger.AcceptsStatus(resp.StatusCode) {
		return
	}

	submitted := r.tasks.Submit(notifier.Task{
		Trigger:        trigger,
		ReportID:       m.ReportID,
		Principal:      req.Principal,
		Authorization:  req.Authorization,
		RequestBody:    req.Body,
		ResponseStatus: resp.StatusCode,
		ResponseBody:   resp.Body,
	})
	if !submitted {
		log.Warn().Str("trigger", string(trigger)).Str("report", m.ReportID).Msg("notification task not accepted")
	}
}

func errorJSON(status int, message string) *Response {
	body, _ := json.Marshal(map[string]string{"error": message})

	header := http.Header{}
	header.Set("Content-Type", "application/json; charset=utf-8")

	return &Response{
		StatusCode: status,
		Header:     header,
		Body:       body,
	}
}
