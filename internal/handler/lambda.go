package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/samber/lo"
)

// LambdaAdapter serves Lambda Function URL invocations through an http.Handler.
type LambdaAdapter struct {
	handler http.Handler
}

func NewLambdaAdapter(handler http.Handler) *LambdaAdapter {
	return &LambdaAdapter{handler: handler}
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (r *bufferedResponse) Header() http.Header { return r.header }

func (r *bufferedResponse) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *bufferedResponse) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (a *LambdaAdapter) Handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	req, err := toRequest(ctx, event)
	if err != nil {
		return events.LambdaFunctionURLResponse{}, err
	}

	res := &bufferedResponse{header: http.Header{}}
	a.handler.ServeHTTP(res, req)

	out := events.LambdaFunctionURLResponse{
		StatusCode: lo.Ternary(res.status == 0, http.StatusOK, res.status),
		Headers: lo.MapValues(res.header, func(v []string, _ string) string {
			return strings.Join(v, ",")
		}),
	}
	if isText(res.header.Get("Content-Type")) {
		out.Body = res.body.String()
	} else {
		out.Body = base64.StdEncoding.EncodeToString(res.body.Bytes())
		out.IsBase64Encoded = true
	}
	return out, nil
}

func toRequest(ctx context.Context, event events.LambdaFunctionURLRequest) (*http.Request, error) {
	var body io.Reader = strings.NewReader(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(decoded)
	}

	path := lo.Ternary(event.RawPath == "", "/", event.RawPath)
	target := path + lo.Ternary(event.RawQueryString == "", "", "?"+event.RawQueryString)

	req, err := http.NewRequestWithContext(ctx, event.RequestContext.HTTP.Method, target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get(RequestIDHeader) == "" && event.RequestContext.RequestID != "" {
		req.Header.Set(RequestIDHeader, event.RequestContext.RequestID)
	}
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP
	req.Host = event.RequestContext.DomainName
	return req, nil
}

func isText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") || strings.HasPrefix(contentType, "application/json")
}
