package snapshot

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/ucl-replacement-race/internal/usecase"
)

const defaultReadTimeout = 20 * time.Second

// Reader loads a previously written snapshot from disk or over HTTP.
type Reader struct {
	client  *fasthttp.Client
	timeout time.Duration
}

func NewReader(timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	return &Reader{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: timeout,
	}
}

func IsRemote(location string) bool {
	lower := strings.ToLower(strings.TrimSpace(location))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Read returns found=false when the snapshot does not exist yet.
func (r *Reader) Read(ctx context.Context, location string) ([]byte, bool, error) {
	if IsRemote(location) {
		return r.fetch(ctx, location)
	}

	raw, err := os.ReadFile(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read snapshot %s", location)
	}
	return raw, true, nil
}

func (r *Reader) fetch(ctx context.Context, location string) ([]byte, bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(location)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(r.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := r.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, false, errors.Wrapf(err, "fetch snapshot %s", location)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusNotFound {
		return nil, false, nil
	}
	if status < 200 || status > 299 {
		return nil, false, usecase.NewUpstreamRequestError(location, status, resp.Body())
	}

	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, true, nil
}
