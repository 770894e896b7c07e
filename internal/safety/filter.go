package safety

import (
	"regexp"
	"strings"
)

// Severity indicates how serious an unsafe input is
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// CheckResult contains the outcome of an input safety check
type CheckResult struct {
	IsSafe        bool     `json:"is_safe"`
	IsAdversarial bool     `json:"is_adversarial"`
	IsOffTopic    bool     `json:"is_off_topic"`
	Reason        string   `json:"reason,omitempty"`
	Severity      Severity `json:"severity,omitempty"`
}

// Filter performs multi-layer safety checks on user input
type Filter struct {
	allowPatterns       []*regexp.Regexp
	adversarialPatterns []*regexp.Regexp
	offTopicPatterns    []*regexp.Regexp
	encodingPatterns    []*regexp.Regexp
	leakagePatterns     []*regexp.Regexp
	phoneKeywords       []string
}

// NewFilter creates a safety filter with all pattern tables pre-compiled
func NewFilter() *Filter {
	return &Filter{
		// Phone-domain phrases that overlap adversarial vocabulary.
		// Checked first; a match here wins over everything below.
		allowPatterns: compilePatterns([]string{
			`system update`,
			`system version`,
			`operating system`,
			`android system`,
			`security patch`,
			`security update`,
			`security features`,
			`developer options`,
			`developer settings`,
			`password`,
			`fingerprint`,
			`face unlock`,
			`hack(?:athon|er\s+news)`,
		}),
		adversarialPatterns: compilePatterns([]string{
			// Instruction override
			`ignore\s+(previous|above|prior|all)\s+(instructions?|rules?|prompts?)`,
			`disregard\s+(previous|above|prior|all)\s+(instructions?|rules?)`,
			`forget\s+(everything|all|previous)`,
			`new\s+instructions?:`,
			`override\s+(system|instructions?|rules?)`,
			`system\s*:\s*`,
			`\[system\]`,
			`<\s*system\s*>`,
			`previous\s+instructions?\s+(are\s+)?cancel`,
			`new\s+role`,

			// Prompt/credential extraction
			`(reveal|show|display|print|output)\s+(your|the)\s+(prompt|system|instructions?|rules?|source\s*code)`,
			`what\s+(are|is)\s+your\s+(prompt|instructions?|rules?|system|hidden)`,
			`(tell|show)\s+me\s+(your|the)\s+(prompt|system|instructions?)`,
			`(give|provide)\s+me\s+(your|the)\s+(api|key|token|credentials?)`,
			`api\s*[-_]?\s*key`,
			`secret\s*[-_]?\s*key`,
			`access\s*[-_]?\s*token`,
			`hidden\s+instructions?`,
			`reveal.+source\s*code`,
			`your\s+source\s*code`,

			// Jailbreak / role-play
			`jailbreak`,
			`dan\s+mode`,
			`developer\s+mode`,
			`bypass\s+(safety|filter|restriction)`,
			`pretend\s+you\s+(are|can|don't|have)`,
			`act\s+as\s+if\s+you`,
			`roleplay\s+as`,
			`imagine\s+you\s+(are|can|don't)`,
			`you\s+are\s+now\s+a`,
			`from\s+now\s+on\s+you`,
			`your\s+new\s+(role|purpose|function)`,
			`switch\s+to\s+\w+\s+mode`,

			// Malicious intent
			`(how\s+to\s+)?(hack|exploit|attack|breach)`,
			`write\s+(malware|virus|trojan)`,
			`(steal|extract)\s+(data|information|credentials?)`,
			`extract\s+user\s+data`,
		}),
		offTopicPatterns: compilePatterns([]string{
			`(politics|political|election|vote|party)`,
			`(religion|religious|god|prayer)`,
			`(medical|health|doctor|disease|symptom|diagnosis)`,
			`(legal|lawyer|lawsuit|sue)`,
			`(invest|stock|crypto|bitcoin|trading)`,
			`(recipe|cook|food|restaurant)`,
			`(dating|relationship|love)`,
			`(weather|temperature|forecast)`,
		}),
		encodingPatterns: compilePatterns([]string{
			`base64`,
			`\\x[0-9a-f]{2}`,
			`%[0-9a-f]{2}`,
			`&#\d+;`,
		}),
		leakagePatterns: compilePatterns([]string{
			`system\s+prompt`,
			`my\s+instructions`,
			`i\s+was\s+told\s+to`,
			`i\s+am\s+programmed\s+to`,
			`my\s+rules\s+are`,
		}),
		phoneKeywords: []string{
			"phone", "mobile", "smartphone", "device", "app",
			"battery", "camera", "display", "screen", "processor",
			"ram", "storage", "android", "ios", "samsung", "oneplus",
			"google", "pixel", "xiaomi", "realme", "vivo", "oppo",
		},
	}
}

// CheckInput checks whether a query is safe to process.
// Layers are evaluated in strict order; the first match decides.
func (f *Filter) CheckInput(query string) CheckResult {
	if strings.TrimSpace(query) == "" {
		return CheckResult{
			IsSafe:   false,
			Reason:   "Empty query",
			Severity: SeverityLow,
		}
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))

	// Allowlist takes precedence over all rejection layers
	for _, pattern := range f.allowPatterns {
		if pattern.MatchString(queryLower) {
			return CheckResult{IsSafe: true}
		}
	}

	for _, pattern := range f.adversarialPatterns {
		if pattern.MatchString(queryLower) {
			return CheckResult{
				IsSafe:        false,
				IsAdversarial: true,
				Reason:        "Potential adversarial input detected",
				Severity:      severityFor(pattern.String()),
			}
		}
	}

	// Off-topic detection is lenient: a single match, or any phone
	// context at all, is tolerated.
	offTopicMatches := 0
	for _, pattern := range f.offTopicPatterns {
		if pattern.MatchString(queryLower) {
			offTopicMatches++
		}
	}
	if offTopicMatches >= 2 && !f.hasPhoneContext(queryLower) {
		return CheckResult{
			IsSafe:     false,
			IsOffTopic: true,
			Reason:     "Query appears to be off-topic (not phone-related)",
			Severity:   SeverityLow,
		}
	}

	// Oversized payload heuristic
	if len(query) > 2000 {
		return CheckResult{
			IsSafe:        false,
			IsAdversarial: true,
			Reason:        "Query exceeds maximum length",
			Severity:      SeverityMedium,
		}
	}

	if f.hasSuspiciousCharacters(query) {
		return CheckResult{
			IsSafe:        false,
			IsAdversarial: true,
			Reason:        "Suspicious character patterns detected",
			Severity:      SeverityMedium,
		}
	}

	return CheckResult{IsSafe: true}
}

// SanitizeOutput replaces any response that looks like prompt leakage
// with a fixed redirect. The whole text is replaced, not just the match.
func (f *Filter) SanitizeOutput(response string) string {
	lower := strings.ToLower(response)
	for _, pattern := range f.leakagePatterns {
		if pattern.MatchString(lower) {
			return "I'm a mobile phone shopping assistant. How can I help you find your perfect phone?"
		}
	}
	return response
}

// SafeResponse returns the canned reply for an unsafe check result
func (f *Filter) SafeResponse(result CheckResult) string {
	if result.IsAdversarial {
		return "I'm a mobile phone shopping assistant focused on helping you " +
			"find the perfect smartphone. I can help with phone recommendations, " +
			"comparisons, and feature explanations. How can I assist you with " +
			"your phone search today?"
	}

	if result.IsOffTopic {
		return "I specialize in mobile phone shopping assistance. I can help you " +
			"find phones based on your budget, compare different models, or " +
			"explain phone features. What would you like to know about smartphones?"
	}

	return "I didn't quite understand that. I'm here to help you find the perfect " +
		"mobile phone. You can ask me about phone recommendations, comparisons, " +
		"or specific features. How can I help?"
}

func (f *Filter) hasPhoneContext(queryLower string) bool {
	for _, kw := range f.phoneKeywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

func (f *Filter) hasSuspiciousCharacters(text string) bool {
	special := 0
	for _, c := range text {
		if strings.ContainsRune("{}[]<>\\|`~^", c) {
			special++
		}
	}
	if special > 10 {
		return true
	}

	lower := strings.ToLower(text)
	for _, pattern := range f.encodingPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// severityFor maps a matched adversarial pattern to a severity level.
// Credential and exploit vocabulary outranks override/jailbreak phrasing.
func severityFor(pattern string) Severity {
	highKeywords := []string{
		"api", "key", "token", "credentials", "hack", "exploit",
		"malware", "virus", "steal", "extract",
	}
	mediumKeywords := []string{
		"ignore", "override", "jailbreak", "bypass", "reveal",
	}

	lower := strings.ToLower(pattern)
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return SeverityHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return SeverityMedium
		}
	}
	return SeverityLow
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
