package ojuz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// FetchToken loads pageURL and returns the anti-forgery token from its form.
// Tokens are request scoped: every protected POST fetches its own.
func (s *Session) FetchToken(ctx context.Context, pageURL string) (string, error) {
	resp, err := s.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	doc, err := htmlquery.Parse(bytes.NewReader(resp.body))
	if err != nil {
		return "", &ProtocolError{URL: pageURL, Reason: "unparsable html: " + err.Error()}
	}
	return extractToken(doc, s.site.TokenField, pageURL)
}

func extractToken(doc *html.Node, field, pageURL string) (string, error) {
	node, err := htmlquery.Query(doc, fmt.Sprintf("//input[@name=%q]", field))
	if err != nil {
		return "", fmt.Errorf("bad token field name %q: %w", field, err)
	}
	if node == nil {
		return "", &ProtocolError{URL: pageURL, Reason: "no " + field + " input"}
	}
	for _, attr := range node.Attr {
		if attr.Key == "value" && attr.Val != "" {
			return attr.Val, nil
		}
	}
	return "", &ProtocolError{URL: pageURL, Reason: field + " input has no value"}
}

// findElementHTML returns the outer html of the element with the given id.
func findElementHTML(body []byte, id, pageURL string) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", &ProtocolError{URL: pageURL, Reason: "unparsable html: " + err.Error()}
	}
	node, err := htmlquery.Query(doc, fmt.Sprintf("//*[@id=%q]", id))
	if err != nil {
		return "", fmt.Errorf("bad element id %q: %w", id, err)
	}
	if node == nil {
		return "", &ProtocolError{URL: pageURL, Reason: "no element #" + id}
	}
	return htmlquery.OutputHTML(node, true), nil
}
