// Package routes classifies inbound requests by the credential they need.
//
// A [Table] is an ordered list of [Rule] values. The first rule whose method
// and pattern match a request decides its [Class]; a request no rule matches
// is AuthRequired. Tables can be reloaded from a JSON file while serving.
package routes

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
)

type Class int

const (
	AuthRequired Class = iota
	RefreshOnly
	Public
)

func (c Class) String() string {
	switch c {
	case AuthRequired:
		return "auth_required"
	case RefreshOnly:
		return "refresh_only"
	case Public:
		return "public"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

func (c Class) MarshalText() ([]byte, error) {
	switch c {
	case AuthRequired, RefreshOnly, Public:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("unknown route class %d", int(c))
	}
}

func (c *Class) UnmarshalText(text []byte) error {
	switch string(text) {
	case "auth_required":
		*c = AuthRequired
	case "refresh_only":
		*c = RefreshOnly
	case "public":
		*c = Public
	default:
		return fmt.Errorf("unknown route class '%s'", text)
	}
	return nil
}

// Rule maps a method and path pattern to a Class.
//
// Pattern segments are separated by "/". A "**" segment matches any number of
// segments, including none; every other segment is matched with path.Match,
// so "*" matches exactly one segment. Method "" or "*" matches every method.
type Rule struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Class   Class  `json:"class"`
}

func (r Rule) validate() error {
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("pattern '%s' must start with '/'", r.Pattern)
	}
	for _, seg := range splitPath(r.Pattern) {
		if seg == "**" {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return fmt.Errorf("pattern '%s': %v", r.Pattern, err)
		}
	}
	if _, err := r.Class.MarshalText(); err != nil {
		return err
	}
	return nil
}

func (r Rule) matches(method string, segments []string) bool {
	if r.Method != "" && r.Method != "*" && !strings.EqualFold(r.Method, method) {
		return false
	}
	return matchSegments(splitPath(r.Pattern), segments)
}

func matchSegments(pattern []string, segments []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(segments); i++ {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}
		if len(segments) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], segments[0]); !ok {
			return false
		}
		pattern = pattern[1:]
		segments = segments[1:]
	}
	return len(segments) == 0
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// DefaultRules is the classification the server starts with when no rules
// file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "OPTIONS", Pattern: "/**", Class: Public},
		{Method: "GET", Pattern: "/hc", Class: Public},
		{Method: "POST", Pattern: "/auth/login", Class: Public},
		{Method: "POST", Pattern: "/auth/signup", Class: Public},
		{Method: "POST", Pattern: "/auth/refresh", Class: RefreshOnly},
		{Method: "GET", Pattern: "/users/me", Class: AuthRequired},
		{Method: "GET", Pattern: "/users/*", Class: Public},
		{Method: "GET", Pattern: "/posts", Class: Public},
		{Method: "GET", Pattern: "/posts/**", Class: Public},
	}
}

type Table struct {
	mu          sync.RWMutex
	rules       []Rule
	logger      logging.Logger
	reloadDelay time.Duration
}

func NewTable(
	rules []Rule,
	logger logging.Logger,
) (
	*Table,
	error,
) {
	t := &Table{
		logger:      logger,
		reloadDelay: 500 * time.Millisecond,
	}
	if err := t.Replace(rules); err != nil {
		return nil, err
	}
	return t, nil
}

// Classify returns the class of the first rule matching method and path.
func (t *Table) Classify(
	method string,
	urlPath string,
) Class {
	segments := splitPath(urlPath)

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, rule := range t.rules {
		if rule.matches(method, segments) {
			return rule.Class
		}
	}
	return AuthRequired
}

// Replace validates rules and swaps them in. On error the table is unchanged.
func (t *Table) Replace(rules []Rule) error {
	for i, rule := range rules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	next := make([]Rule, len(rules))
	copy(next, rules)

	t.mu.Lock()
	t.rules = next
	t.mu.Unlock()
	return nil
}

func (t *Table) Rules() []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rules := make([]Rule, len(t.rules))
	copy(rules, t.rules)
	return rules
}
