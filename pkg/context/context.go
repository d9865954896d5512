package context

import "context"

// Request is the metadata the HTTP middleware attaches to every request context.
type Request struct {
	ID       string
	Method   string
	Route    string
	RemoteIP string
}

type requestKey struct{}

func WithRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}

// RequestFrom returns the request metadata on ctx, or the zero Request.
func RequestFrom(ctx context.Context) Request {
	req, _ := ctx.Value(requestKey{}).(Request)
	return req
}

func RequestID(ctx context.Context) string {
	return RequestFrom(ctx).ID
}

// Fields renders the non-empty metadata as log fields.
func (r Request) Fields() map[string]any {
	fields := make(map[string]any, 4)
	for key, value := range map[string]string{
		"request_id": r.ID,
		"method":     r.Method,
		"route":      r.Route,
		"remote_ip":  r.RemoteIP,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
