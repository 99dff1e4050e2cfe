package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	eventbus "github.com/hanpama/sdlcompose/internal/eventbus"
	events "github.com/hanpama/sdlcompose/internal/events"
	language "github.com/hanpama/sdlcompose/internal/language"
	project "github.com/hanpama/sdlcompose/internal/project"
	reqid "github.com/hanpama/sdlcompose/internal/reqid"
	schema "github.com/hanpama/sdlcompose/internal/schema"
	source "github.com/hanpama/sdlcompose/internal/source"
)

// Handler is an http.Handler that composes a posted source.
// The body is either the source itself (text/plain, application/graphql) or
// a JSON ComposeRequest.
type Handler struct {
	opt Options
}

type Options struct {
	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Validate builds the composed schema and checks every binding.
	Validate bool

	// Render replaces typeDefs with the canonical SDL of the built schema.
	// Implies Validate.
	Render bool
}

type Option func(*Options)

func WithPretty() Option              { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option { return func(o *Options) { o.MaxBodyBytes = n } }
func WithValidation() Option          { return func(o *Options) { o.Validate = true } }
func WithRender() Option              { return func(o *Options) { o.Render, o.Validate = true, true } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a compose handler.
func New(opts ...Option) *Handler {
	op := Options{MaxBodyBytes: 1 << 20}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, _ := reqid.NewContext(r.Context())
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}
	if r.Method == http.MethodOptions {
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}
	if r.Method != http.MethodPost {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(&responseError{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	req, rerr := parseRequest(r, h.opt.MaxBodyBytes)
	if rerr != nil {
		status = http.StatusBadRequest
		if rerr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(rerr), h.opt.Pretty)
		return
	}

	var res ComposeResponse
	status, res = h.compose(ctx, req)
	writeJSON(w, status, res, h.opt.Pretty)
}

func (h *Handler) compose(ctx context.Context, req ComposeRequest) (int, ComposeResponse) {
	var opts []project.Option
	if h.opt.Validate {
		opts = append(opts, project.WithValidation())
	}
	disc := source.NewInMemoryDiscovery([]source.InMemorySource{{Name: req.Name, Content: req.Source}})
	p, err := project.Load(ctx, disc, opts...)
	if err != nil {
		return http.StatusUnprocessableEntity, ComposeResponse{Errors: toResponseErrors(err)}
	}
	typeDefs := p.TypeDefs
	if h.opt.Render && p.Schema != nil {
		typeDefs = schema.Render(p.Schema)
	}
	return http.StatusOK, ComposeResponse{TypeDefs: typeDefs, Resolvers: p.Bindings()}
}

// ------------------ Request parsing ------------------

type ComposeRequest struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
}

const defaultSourceName = "request.graphql"

func parseRequest(r *http.Request, maxBody int64) (ComposeRequest, *responseError) {
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return ComposeRequest{}, &responseError{Message: "failed to read body"}
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return ComposeRequest{}, &responseError{Message: errBodyTooLargeMessage}
	}

	req := ComposeRequest{Name: defaultSourceName}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		if err := json.Unmarshal(body, &req); err != nil {
			return ComposeRequest{}, &responseError{Message: "invalid JSON"}
		}
		if req.Name == "" {
			req.Name = defaultSourceName
		}
	case "", "text/plain", "application/graphql":
		req.Source = string(body)
	default:
		return ComposeRequest{}, &responseError{Message: "unsupported Content-Type"}
	}
	if strings.TrimSpace(req.Source) == "" {
		return ComposeRequest{}, &responseError{Message: "missing 'source'"}
	}
	return req, nil
}

// ------------------ Response formatting ------------------

type responseLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type responseError struct {
	Message    string             `json:"message"`
	Coordinate string             `json:"coordinate,omitempty"`
	Locations  []responseLocation `json:"locations,omitempty"`
}

type ComposeResponse struct {
	TypeDefs  string                       `json:"typeDefs,omitempty"`
	Resolvers map[string]map[string]string `json:"resolvers,omitempty"`
	Errors    []*responseError             `json:"errors,omitempty"`
}

func errorResponse(err *responseError) ComposeResponse {
	return ComposeResponse{Errors: []*responseError{err}}
}

func toResponseErrors(err error) []*responseError {
	var violations schema.ValidationError
	if errors.As(err, &violations) {
		out := make([]*responseError, len(violations))
		for i, v := range violations {
			re := &responseError{Message: v.Message, Coordinate: v.Coordinate}
			if v.File != "" {
				re.Locations = []responseLocation{{File: v.File, Line: v.Line, Column: v.Column}}
			}
			out[i] = re
		}
		return out
	}
	var list language.ErrorList
	if errors.As(err, &list) {
		out := make([]*responseError, 0, len(list))
		for _, ge := range list {
			out = append(out, fromLanguageError(ge))
		}
		return out
	}
	var ge *language.Error
	if errors.As(err, &ge) {
		return []*responseError{fromLanguageError(ge)}
	}
	var se *source.SyntaxError
	if errors.As(err, &se) {
		return []*responseError{{
			Message:   se.Message,
			Locations: []responseLocation{{File: se.File, Line: se.Line, Column: se.Column}},
		}}
	}
	return []*responseError{{Message: err.Error()}}
}

func fromLanguageError(ge *language.Error) *responseError {
	re := &responseError{Message: ge.Message}
	for _, loc := range ge.Locations {
		re.Locations = append(re.Locations, responseLocation{Line: loc.Line, Column: loc.Column})
	}
	return re
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := false
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
		if o == "*" || o == origin {
			allowed = true
		}
	}
	if !allowed {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
	}
}
