package dispatch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FinalResultMarker separates agent transcript noise from the formatted
// result block in the financial agent's output.
const FinalResultMarker = "----Final Result----"

var priceRe = regexp.MustCompile(`^\$\d[\d,]*\.?\d*$`)

// FormatGuard normalizes financial agent output to one price line followed by
// at most maxBullets "- Title – host" bullets, no URLs. When the output
// carries the final result marker only the section after it is rewritten.
func FormatGuard(out string, maxBullets int) string {
	if strings.TrimSpace(out) == "" {
		return out
	}
	if head, tail, found := strings.Cut(out, FinalResultMarker); found {
		return head + FinalResultMarker + "\n" + formatFinalBlock(tail, maxBullets) + "\n"
	}
	return formatFinalBlock(out, maxBullets)
}

func formatFinalBlock(block string, maxBullets int) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "(No output)"
	}

	// keep the first valid price line, falling back to the first line
	price := lines[0]
	for _, line := range lines {
		if priceRe.MatchString(line) {
			price = line
			break
		}
	}

	var bullets []string
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			b := strings.TrimSpace(rest)
			b = strings.ReplaceAll(b, " - ", " – ")
			b = strings.ReplaceAll(b, "’", "'")
			bullets = append(bullets, b)
		}
	}
	if len(bullets) == 0 {
		bullets = []string{"No recent headlines found."}
	}
	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets]
	}

	final := make([]string, 0, len(bullets)+1)
	final = append(final, price)
	for _, b := range bullets {
		final = append(final, "- "+b)
	}
	return strings.Join(final, "\n")
}

// Headline is one bullet of the JSON rendering
type Headline struct {
	Title string `json:"title"`
	Host  string `json:"host"`
}

// Result is the JSON rendering of a guarded output block
type Result struct {
	Price     string     `json:"price"`
	Headlines []Headline `json:"headlines"`
}

// ToJSON converts a guarded output block to its JSON rendering.
func ToJSON(out string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	result := Result{Headlines: []Headline{}}
	if len(lines) == 0 {
		bs, _ := json.MarshalIndent(&result, "", "  ")
		return string(bs)
	}
	result.Price = lines[0]
	for _, line := range lines[1:] {
		rest, ok := strings.CutPrefix(line, "- ")
		if !ok {
			continue
		}
		title, host, _ := strings.Cut(strings.TrimSpace(rest), " – ")
		result.Headlines = append(result.Headlines, Headline{
			Title: strings.TrimSpace(title),
			Host:  strings.TrimSpace(host),
		})
	}
	bs, err := json.MarshalIndent(&result, "", "  ")
	if err != nil {
		return ""
	}
	return string(bs)
}
