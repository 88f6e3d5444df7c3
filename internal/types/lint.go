package types

type LintIssue struct {
	Severity Severity
	Reason   string
}

func (i LintIssue) String() string {
	return string(i.Severity) + ": " + i.Reason
}

func LintError(reason string) LintIssue {
	return LintIssue{Severity: SeverityError, Reason: reason}
}

func LintWarning(reason string) LintIssue {
	return LintIssue{Severity: SeverityWarning, Reason: reason}
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []LintIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FilterSeverity returns the issues with the given severity, keeping order.
func FilterSeverity(issues []LintIssue, severity Severity) []LintIssue {
	var out []LintIssue
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}
