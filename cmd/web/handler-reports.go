package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// cspViolationReport is the legacy report-uri payload.
type cspViolationReport struct {
	CSPReport struct {
		DocumentURI        string `json:"document-uri"`
		Referrer           string `json:"referrer"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		Disposition        string `json:"disposition"`
		BlockedURI         string `json:"blocked-uri"`
		LineNumber         int    `json:"line-number"`
		ColumnNumber       int    `json:"column-number"`
		SourceFile         string `json:"source-file"`
		ScriptSample       string `json:"script-sample"`
	} `json:"csp-report"`
}

// browserReport is one entry of a Reporting API batch.
type browserReport struct {
	Type string         `json:"type"`
	URL  string         `json:"url"`
	Body map[string]any `json:"body"`
}

func (app *application) warnUnexpectedReportContentType(r *http.Request, allowed ...string) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return
	}
	for _, a := range allowed {
		if contentType == a {
			return
		}
	}
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "report with unexpected content type",
		slog.String("content_type", contentType))
}

// cspViolation logs a report sent to the report-uri directive.
func (app *application) cspViolation(w http.ResponseWriter, r *http.Request) {
	app.warnUnexpectedReportContentType(r, "application/csp-report", "application/json")
	body, ok := app.readBody(w, r)
	if !ok {
		return
	}
	var report cspViolationReport
	if err := json.Unmarshal(body, &report); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "failed to parse CSP violation report",
			slog.Any("error", err), slog.String("body", string(body)))
		app.clientError(w, r, http.StatusBadRequest, "malformed report")
		return
	}

	app.metrics.CounterReports.WithLabelValues("csp-violation").Inc()
	c := report.CSPReport
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, "CSP violation detected",
		slog.String("document_uri", c.DocumentURI),
		slog.String("violated_directive", c.ViolatedDirective),
		slog.String("effective_directive", c.EffectiveDirective),
		slog.String("blocked_uri", c.BlockedURI),
		slog.String("source_file", c.SourceFile),
		slog.Int("line_number", c.LineNumber),
		slog.Int("column_number", c.ColumnNumber),
		slog.String("script_sample", c.ScriptSample),
		slog.String("disposition", c.Disposition),
		slog.String("user_agent", r.Header.Get("User-Agent")),
		slog.String("referrer", c.Referrer))
	w.WriteHeader(http.StatusNoContent)
}

// reportingAPI logs a batch of reports sent to the Reporting-Endpoints endpoint.
func (app *application) reportingAPI(w http.ResponseWriter, r *http.Request) {
	app.warnUnexpectedReportContentType(r, "application/reports+json", "application/json")
	body, ok := app.readBody(w, r)
	if !ok {
		return
	}
	var reports []browserReport
	if err := json.Unmarshal(body, &reports); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "failed to parse reports",
			slog.Any("error", err), slog.String("body", string(body)))
		app.clientError(w, r, http.StatusBadRequest, "malformed report")
		return
	}

	for _, report := range reports {
		app.metrics.CounterReports.WithLabelValues(report.Type).Inc()
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "report received via Reporting API",
			slog.String("type", report.Type),
			slog.String("url", report.URL),
			slog.Any("body", report.Body),
			slog.String("user_agent", r.Header.Get("User-Agent")))
	}
	w.WriteHeader(http.StatusNoContent)
}
