/*
Package fakejudge runs an in-process imitation of the oj.uz pages the
session code talks to: the login form, per-problem submit forms, submission
pages and the json summary endpoint.

Anti-forgery tokens are derived from the session cookie, so fetching the same
page twice yields the same token. Knobs on Judge make the next submits bounce
back to the submit page (soft block) or drop an account's server-side
sessions (expiry), and counters record every form POST so tests can assert
exact call counts.

	judge := fakejudge.New(t, map[string]string{"alice": "secret"})
	site := ojuz.DefaultSite()
	site.BaseURL = judge.URL()
*/
package fakejudge
