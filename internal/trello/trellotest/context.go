package trellotest

import "context"

func withBody(ctx context.Context, body map[string]interface{}) context.Context {
	return context.WithValue(ctx, requestBodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]interface{} {
	body, _ := ctx.Value(requestBodyKey{}).(map[string]interface{})
	if body == nil {
		return map[string]interface{}{}
	}
	return body
}
