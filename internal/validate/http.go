package validate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bmatcuk/doublestar/v4"

	"mlc/internal/pipeline"
)

const (
	userAgent = "mlc (github.com/becheran/mlc)"
	acceptHdr = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	maxRedirects = 10
)

// HTTPDoer is the external collaborator the HTTP validator depends on: an
// HTTP client capable of issuing a request and returning its response. A
// *http.Client satisfies it directly; tests substitute a stub.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient builds the shared *http.Client used for every HTTP validation
// in a run, capping redirect hops at maxRedirects exactly as spec.md's
// redirect-chain limit mandates.
func NewClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// HTTP validates target with a HEAD request first. A HEAD that transport-
// fails retries once as GET. A HEAD that completes but is neither a success
// nor a redirect (e.g. 404, 405, 500) also retries as GET, mirroring the
// original validator's two-step strategy for servers that reject HEAD.
func HTTP(ctx context.Context, client HTTPDoer, target string, headers map[string]string, doNotWarnForRedirectTo []string) pipeline.CheckOutcome {
	resp, err := doRequest(ctx, client, http.MethodHead, target, headers)
	if err != nil {
		resp, err = doRequest(ctx, client, http.MethodGet, target, headers)
		if err != nil {
			return pipeline.OutcomeFailed(fmt.Sprintf("Http(s) request failed. %s", err))
		}
		defer resp.Body.Close()
		return evaluate(resp, target, doNotWarnForRedirectTo, true)
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) || isRedirection(resp.StatusCode) {
		return evaluate(resp, target, doNotWarnForRedirectTo, false)
	}

	resp.Body.Close()
	resp, err = doRequest(ctx, client, http.MethodGet, target, headers)
	if err != nil {
		return pipeline.OutcomeFailed(fmt.Sprintf("Http(s) request failed. %s", err))
	}
	defer resp.Body.Close()
	return evaluate(resp, target, doNotWarnForRedirectTo, true)
}

// evaluate turns a completed response into a CheckOutcome. finalAttempt is
// not read: a non-success, non-redirect status is always reported as
// Failed, and a HEAD attempt with such a status never reaches evaluate
// since HTTP retries it as GET first.
func evaluate(resp *http.Response, target string, doNotWarnForRedirectTo []string, finalAttempt bool) pipeline.CheckOutcome {
	status := resp.StatusCode
	finalURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if isSuccess(status) {
		if sameIgnoringFragment(target, finalURL) || matchesAny(doNotWarnForRedirectTo, finalURL) {
			return pipeline.OutcomeOK()
		}
		return pipeline.OutcomeWarning("Request was redirected to " + finalURL)
	}
	if isRedirection(status) {
		return pipeline.OutcomeWarning(statusToString(status))
	}
	return pipeline.OutcomeFailed(statusToString(status))
}

func isSuccess(status int) bool    { return status >= 200 && status < 300 }
func isRedirection(status int) bool { return status >= 300 && status < 400 }

func doRequest(ctx context.Context, client HTTPDoer, method, target string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHdr)
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return client.Do(req)
}

func sameIgnoringFragment(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	ua.Fragment = ""
	ub.Fragment = ""
	return ua.String() == ub.String()
}

func matchesAny(patterns []string, target string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, target); err == nil && ok {
			return true
		}
	}
	return false
}

func statusToString(status int) string {
	return fmt.Sprintf("%d - %s", status, http.StatusText(status))
}
