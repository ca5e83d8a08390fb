package step

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/dockwa/seatrial/internal/action"
	"github.com/dockwa/seatrial/internal/pipe"
	"github.com/dockwa/seatrial/internal/stepresult"
)

// HTTPHandler issues the single HTTP request an action.Http describes
//. One handler, and one underlying *resty.Client, is built per
// grunt and reused across every request it makes.
type HTTPHandler struct {
	client *resty.Client
}

// NewHTTPHandler builds a reusable client carrying the
// "seatrial/grunt=<name>/persona=<name>" user agent and the persona's
// default timeout.
func NewHTTPHandler(gruntName string, persona *action.Persona) *HTTPHandler {
	client := resty.New().
		SetHeader("User-Agent", fmt.Sprintf("seatrial/grunt=%s/persona=%s", gruntName, persona.Name)).
		SetTimeout(persona.Timeout.AsDuration())

	return &HTTPHandler{client: client}
}

// Step issues the request described by act and converts the response into
// pipe contents. A response outside the 2xx range is still success at this
// layer: downstream validators decide whether it passes.
// Once the request is issued, only a transport-level failure (network, DNS,
// TLS, timeout) is an error; before that, a URL that won't join against the
// base URL or a header/param reference that can't be realized also fails
// the step.
func (h *HTTPHandler) Step(pl PipelineContext, act action.Http) (Completion, error) {
	target, err := pl.BaseURL().Parse(act.URL)
	if err != nil {
		return Completion{}, stepresult.NewURLParsingError(err)
	}

	req := h.client.R()
	if act.Timeout != nil {
		ctx, cancel := context.WithTimeout(context.Background(), act.Timeout.AsDuration())
		defer cancel()
		req.SetContext(ctx)
	}

	headers, err := realizeMap(pl, act.Headers)
	if err != nil {
		return Completion{}, err
	}
	for k, v := range pl.Persona().Headers {
		if _, overridden := act.Headers[k]; overridden {
			continue
		}
		realized, err := pipe.TryIntoString(pl.Bridge(), v, pl.Pipe())
		if err != nil {
			return Completion{}, err
		}
		headers[k] = realized
	}
	req.SetHeaders(headers)

	params, err := realizeMap(pl, act.Params)
	if err != nil {
		return Completion{}, err
	}
	req.SetQueryParams(params)

	resp, err := issue(req, act.Verb, target.String())
	if err != nil {
		return Completion{}, stepresult.NewHTTPError(err)
	}

	contents := pipe.FromResponse(&pipe.Response{
		StatusCode:  resp.StatusCode(),
		Headers:     flattenHeaders(resp.Header()),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	})

	return Normal(contents), nil
}

func issue(req *resty.Request, verb action.Verb, url string) (*resty.Response, error) {
	switch verb {
	case action.VerbDelete:
		return req.Delete(url)
	case action.VerbGet:
		return req.Get(url)
	case action.VerbHead:
		return req.Head(url)
	case action.VerbPost:
		return req.Post(url)
	case action.VerbPut:
		return req.Put(url)
	default:
		return nil, fmt.Errorf("unknown http verb %q", verb)
	}
}

func realizeMap(pl PipelineContext, refs map[string]action.Reference) (map[string]string, error) {
	out := make(map[string]string, len(refs))
	for key, ref := range refs {
		val, err := pipe.TryIntoString(pl.Bridge(), ref, pl.Pipe())
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func flattenHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
