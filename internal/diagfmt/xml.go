package diagfmt

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"bugfree/internal/diag"
)

type checkstyleXML struct {
	XMLName xml.Name            `xml:"checkstyle"`
	Version string              `xml:"version,attr"`
	Files   []checkstyleFileXML `xml:"file"`
}

type checkstyleFileXML struct {
	Name   string               `xml:"name,attr"`
	Errors []checkstyleErrorXML `xml:"error"`
}

type checkstyleErrorXML struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr,omitempty"`
}

// Checkstyle writes a checkstyle 4.3 report. Every file gets an element,
// clean ones stay empty.
func Checkstyle(w io.Writer, r *Report, mode PathMode) error {
	doc := checkstyleXML{Version: "4.3"}
	for i := range r.Files {
		f := &r.Files[i]
		cf := checkstyleFileXML{Name: displayPath(f.Path, mode, r.BaseDir)}
		if f.Err != nil {
			cf.Errors = append(cf.Errors, checkstyleErrorXML{
				Line: 1, Column: 1, Severity: "error", Message: f.Err.Error(), Source: "bugfree.failure",
			})
		}
		for _, d := range f.Diagnostics {
			cf.Errors = append(cf.Errors, checkstyleErrorXML{
				Line:     max(d.Line, 1),
				Column:   1,
				Severity: strings.ToLower(d.Severity.String()),
				Message:  d.Message,
				Source:   "bugfree." + d.Kind.Key(),
			})
		}
		doc.Files = append(doc.Files, cf)
	}
	return writeXML(w, doc)
}

type junitSuitesXML struct {
	XMLName xml.Name        `xml:"testsuites"`
	Suites  []junitSuiteXML `xml:"testsuite"`
}

type junitSuiteXML struct {
	Name     string         `xml:"name,attr"`
	Tests    int            `xml:"tests,attr"`
	Failures int            `xml:"failures,attr"`
	Errors   int            `xml:"errors,attr"`
	Cases    []junitCaseXML `xml:"testcase"`
}

type junitCaseXML struct {
	Name      string            `xml:"name,attr"`
	ClassName string            `xml:"classname,attr"`
	Failures  []junitFailureXML `xml:"failure"`
	Error     *junitFailureXML  `xml:"error"`
}

type junitFailureXML struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// JUnit writes one test case per file; every finding is a failure, a file
// that could not be checked is an error.
func JUnit(w io.Writer, r *Report, mode PathMode) error {
	suite := junitSuiteXML{Name: "bugfree namespace checks", Tests: len(r.Files)}
	for i := range r.Files {
		f := &r.Files[i]
		tc := junitCaseXML{Name: displayPath(f.Path, mode, r.BaseDir), ClassName: "bugfree"}
		if f.Err != nil {
			suite.Errors++
			tc.Error = &junitFailureXML{Type: "error", Message: f.Err.Error(), Body: f.Err.Error()}
		}
		for _, sev := range severityOrder {
			for _, d := range f.Diagnostics {
				if d.Severity != sev {
					continue
				}
				tc.Failures = append(tc.Failures, junitFailureXML{
					Type:    strings.ToLower(sev.String()),
					Message: d.Message,
					Body:    d.Formatted(),
				})
			}
		}
		if len(tc.Failures) > 0 {
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
	}
	return writeXML(w, junitSuitesXML{Suites: []junitSuiteXML{suite}})
}

type pmdXML struct {
	XMLName   xml.Name     `xml:"pmd"`
	Version   string       `xml:"version,attr"`
	Timestamp string       `xml:"timestamp,attr,omitempty"`
	Files     []pmdFileXML `xml:"file"`
}

type pmdFileXML struct {
	Name       string            `xml:"name,attr"`
	Violations []pmdViolationXML `xml:"violation"`
}

type pmdViolationXML struct {
	BeginLine int    `xml:"beginline,attr"`
	EndLine   int    `xml:"endline,attr"`
	Rule      string `xml:"rule,attr"`
	RuleSet   string `xml:"ruleset,attr"`
	Priority  int    `xml:"priority,attr"`
	Body      string `xml:",chardata"`
}

// PMD writes a PMD 1.5 XML report listing only files with findings.
func PMD(w io.Writer, r *Report, mode PathMode) error {
	doc := pmdXML{Version: "1.5.0"}
	if !r.Time.IsZero() {
		doc.Timestamp = r.Time.Format(time.RFC3339)
	}
	for i := range r.Files {
		f := &r.Files[i]
		if !f.Failed() {
			continue
		}
		pf := pmdFileXML{Name: displayPath(f.Path, mode, r.BaseDir)}
		if f.Err != nil {
			pf.Violations = append(pf.Violations, pmdViolation(1, diag.SevError, f.Err.Error()))
		}
		for _, d := range f.Diagnostics {
			pf.Violations = append(pf.Violations, pmdViolation(max(d.Line, 1), d.Severity, d.Message))
		}
		doc.Files = append(doc.Files, pf)
	}
	return writeXML(w, doc)
}

func pmdViolation(line int, sev diag.Severity, msg string) pmdViolationXML {
	return pmdViolationXML{
		BeginLine: line,
		EndLine:   line,
		Rule:      "bugfree_" + strings.ToLower(sev.String()),
		RuleSet:   "bugfree",
		Priority:  1,
		Body:      "Bugfree: " + msg,
	}
}

func writeXML(w io.Writer, doc any) error {
	data, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	pw := &errWriter{w: w}
	pw.printf("%s%s\n", xml.Header, data)
	return pw.err
}
