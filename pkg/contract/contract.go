// Package contract carries the OpenAPI description of the portal backend and
// validates outgoing JSON requests against it before they leave the process.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var document []byte

// ErrNoRoute is returned for requests that match no documented operation.
var ErrNoRoute = errors.New("contract: no matching operation")

// Document returns a copy of the embedded OpenAPI document.
func Document() []byte {
	return append([]byte(nil), document...)
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	return doc, nil
}

// Operation summarises one documented backend call.
type Operation struct {
	ID     string
	Method string
	Path   string
}

type route struct {
	template string
	segments []string
	params   int
	item     *openapi3.PathItem
}

// Validator matches requests to documented operations and checks their
// parameters and JSON bodies.
type Validator struct {
	doc      *openapi3.T
	routes   []route
	basePath string
}

// Option configures a Validator.
type Option func(*Validator)

// WithBasePath strips a prefix such as "/api" before matching paths.
func WithBasePath(prefix string) Option {
	return func(v *Validator) {
		v.basePath = "/" + strings.Trim(prefix, "/")
		if v.basePath == "/" {
			v.basePath = ""
		}
	}
}

// NewValidator loads the embedded document and indexes its paths.
func NewValidator(ctx context.Context, opts ...Option) (*Validator, error) {
	doc, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	v := &Validator{doc: doc}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	for template, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		segments := strings.Split(template, "/")
		params := 0
		for _, segment := range segments {
			if isParam(segment) {
				params++
			}
		}
		v.routes = append(v.routes, route{template: template, segments: segments, params: params, item: item})
	}
	sort.Slice(v.routes, func(i, j int) bool {
		if v.routes[i].params != v.routes[j].params {
			return v.routes[i].params < v.routes[j].params
		}
		return v.routes[i].template < v.routes[j].template
	})
	return v, nil
}

// Operations lists the documented operations ordered by path then method.
func (v *Validator) Operations() []Operation {
	var out []Operation
	for _, r := range v.routes {
		for method, op := range r.item.Operations() {
			out = append(out, Operation{ID: op.OperationID, Method: method, Path: r.template})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Find resolves method and path to a documented route.
func (v *Validator) Find(method, path string) (*routers.Route, map[string]string, error) {
	if v.basePath != "" {
		if !strings.HasPrefix(path, v.basePath+"/") {
			return nil, nil, fmt.Errorf("%w: %s %s", ErrNoRoute, method, path)
		}
		path = strings.TrimPrefix(path, v.basePath)
	}
	segments := strings.Split(path, "/")
	for _, r := range v.routes {
		params, ok := r.match(segments)
		if !ok {
			continue
		}
		op := r.item.GetOperation(strings.ToUpper(method))
		if op == nil {
			continue
		}
		return &routers.Route{
			Spec:      v.doc,
			Path:      r.template,
			PathItem:  r.item,
			Method:    strings.ToUpper(method),
			Operation: op,
		}, params, nil
	}
	return nil, nil, fmt.Errorf("%w: %s %s", ErrNoRoute, method, path)
}

// ValidateRequest checks req against its documented operation. The request
// body is consumed and restored by the validator.
func (v *Validator) ValidateRequest(ctx context.Context, req *http.Request) error {
	route, params, err := v.Find(req.Method, req.URL.Path)
	if err != nil {
		return err
	}
	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return fmt.Errorf("contract: %s %s: %w", req.Method, route.Path, err)
	}
	return nil
}

func (r route) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(r.segments) {
		return nil, false
	}
	params := make(map[string]string, r.params)
	for i, want := range r.segments {
		got := segments[i]
		if isParam(want) {
			if got == "" {
				return nil, false
			}
			params[strings.Trim(want, "{}")] = got
			continue
		}
		if got != want {
			return nil, false
		}
	}
	return params, true
}

func isParam(segment string) bool {
	return strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}
