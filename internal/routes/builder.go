package routes

import (
	"net/http"

	"github.com/zlin-dev/userhub/internal/api/middleware"
)

// RuleBuilder assembles a Rule fluently. Handlers declare their routes as
//
//	routes.Get("/{id}").Summary("Fetch a user").Handle(h.Get)
//
// so the one descriptor drives both dispatch and the generated docs.
type RuleBuilder struct {
	rule Rule
}

// Get starts a GET rule for the given pattern.
func Get(pattern string) *RuleBuilder { return newRule(http.MethodGet, pattern) }

// Post starts a POST rule for the given pattern.
func Post(pattern string) *RuleBuilder { return newRule(http.MethodPost, pattern) }

// Put starts a PUT rule for the given pattern.
func Put(pattern string) *RuleBuilder { return newRule(http.MethodPut, pattern) }

// Delete starts a DELETE rule for the given pattern.
func Delete(pattern string) *RuleBuilder { return newRule(http.MethodDelete, pattern) }

func newRule(method, pattern string) *RuleBuilder {
	return &RuleBuilder{rule: Rule{Method: method, Pattern: pattern}}
}

// Summary sets the docs summary for the rule.
func (b *RuleBuilder) Summary(s string) *RuleBuilder {
	b.rule.Summary = s
	return b
}

// Auth marks the rule as requiring a valid bearer token.
func (b *RuleBuilder) Auth() *RuleBuilder {
	b.rule.Auth = true
	return b
}

// Handle attaches the handler and finalizes the rule.
func (b *RuleBuilder) Handle(h middleware.HandlerFunc) Rule {
	b.rule.Handler = h
	return b.rule
}
