package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// RetentionPolicy decides which external targets survive pruning even when
// nothing local depends on them. Patterns are `name`, `prefix*` or `*`,
// optionally scoped to one package as `package:pattern`.
type RetentionPolicy struct {
	Patterns         []string
	exactAny         map[string]struct{}
	exactByPackage   map[string]map[string]struct{}
	prefixAny        []string
	prefixByPackage  map[string][]string
	wildcardAny      bool
	wildcardPackages map[string]struct{}
}

func NewRetentionPolicy(patterns []string) (RetentionPolicy, error) {
	policy := RetentionPolicy{
		exactAny:         map[string]struct{}{},
		exactByPackage:   map[string]map[string]struct{}{},
		prefixByPackage:  map[string][]string{},
		wildcardPackages: map[string]struct{}{},
	}
	for _, pattern := range patterns {
		parsed, ok := parsePattern(pattern)
		if !ok {
			return RetentionPolicy{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid retention pattern %q", pattern))
		}
		policy.Patterns = append(policy.Patterns, strings.TrimSpace(pattern))
		policy.store(parsed)
	}
	return policy, nil
}

// Empty reports whether the policy retains nothing.
func (p RetentionPolicy) Empty() bool {
	return len(p.Patterns) == 0
}

// Retains reports whether the target name of package pkg matches a pattern.
func (p RetentionPolicy) Retains(pkg string, name string) bool {
	if p.wildcardAny {
		return true
	}
	if _, ok := p.wildcardPackages[pkg]; ok {
		return true
	}
	if _, ok := p.exactAny[name]; ok {
		return true
	}
	if _, ok := p.exactByPackage[pkg][name]; ok {
		return true
	}
	for _, prefix := range p.prefixAny {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, prefix := range p.prefixByPackage[pkg] {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

type parsedPattern struct {
	pkg  string
	kind patternKind
	name string
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternInvalid
)

func (p *RetentionPolicy) store(parsed parsedPattern) {
	switch parsed.kind {
	case patternWildcard:
		if parsed.pkg == "" {
			p.wildcardAny = true
			return
		}
		p.wildcardPackages[parsed.pkg] = struct{}{}
	case patternExact:
		if parsed.pkg == "" {
			p.exactAny[parsed.name] = struct{}{}
			return
		}
		if p.exactByPackage[parsed.pkg] == nil {
			p.exactByPackage[parsed.pkg] = map[string]struct{}{}
		}
		p.exactByPackage[parsed.pkg][parsed.name] = struct{}{}
	case patternPrefix:
		if parsed.pkg == "" {
			p.prefixAny = append(p.prefixAny, parsed.name)
			return
		}
		p.prefixByPackage[parsed.pkg] = append(p.prefixByPackage[parsed.pkg], parsed.name)
	}
}

func parsePattern(pattern string) (parsedPattern, bool) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return parsedPattern{kind: patternInvalid}, false
	}
	parts := strings.Split(trimmed, ":")
	switch len(parts) {
	case 1:
		name, kind := parseNamePattern(trimmed)
		return parsedPattern{kind: kind, name: name}, kind != patternInvalid
	case 2:
		pkg := strings.TrimSpace(parts[0])
		if pkg == "" {
			return parsedPattern{kind: patternInvalid}, false
		}
		name, kind := parseNamePattern(parts[1])
		return parsedPattern{pkg: pkg, kind: kind, name: name}, kind != patternInvalid
	default:
		return parsedPattern{kind: patternInvalid}, false
	}
}

func parseNamePattern(value string) (string, patternKind) {
	pattern := strings.TrimSpace(value)
	switch {
	case pattern == "":
		return "", patternInvalid
	case pattern == "*":
		return "", patternWildcard
	case strings.Count(pattern, "*") > 1:
		return "", patternInvalid
	case strings.HasSuffix(pattern, "*"):
		return strings.TrimSuffix(pattern, "*"), patternPrefix
	case strings.Contains(pattern, "*"):
		return "", patternInvalid
	default:
		return pattern, patternExact
	}
}
