package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/uyouii/clinical-tokenizer/binning"
)

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]`)

var pyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Identifier turns a variable name into a lowercase identifier usable as a
// Python name and as a file name stem.
func Identifier(name string) string {
	id := nonIdentifier.ReplaceAllString(strings.TrimSpace(name), "_")
	if id == "" {
		return binning.DefaultVariableName
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return strings.ToLower(id)
}

func pyString(s string) string {
	return pyEscaper.Replace(s)
}

// fString escapes s for use inside a Python f-string literal.
func fString(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(pyString(s))
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// exact prints the shortest decimal that round-trips to v.
func exact(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
