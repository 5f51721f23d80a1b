package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// BuildStableSymbolID derives a deterministic ID from the unit's identity
// fields and a hash of its canonical signature. Body edits that keep the
// signature keep the ID.
func BuildStableSymbolID(unit *CodeUnit) string {
	if unit == nil {
		return ""
	}

	lang := orDefault(unit.Language, "unknown")
	pkg := orDefault(unit.Package, "_")
	kind := orDefault(unit.UnitType, "symbol")
	name := orDefault(unit.Name, "_")

	var receiver, signature string
	if d, ok := functionDetails(unit); ok {
		receiver = d.ReceiverType
		if receiver == "" {
			receiver = canonicalize(d.Receiver)
		}
		signature = canonicalize(d.Signature)
	}
	if signature == "" {
		signature = canonicalize(unit.Content)
	}

	fingerprint := strings.Join([]string{lang, pkg, kind, receiver, name, signature}, "|")
	sum := sha256.Sum256([]byte(fingerprint))
	return fmt.Sprintf("%s/%s:%s:%s:%s", lang, pkg, kind, name, hex.EncodeToString(sum[:8]))
}

func functionDetails(unit *CodeUnit) (GoFunctionDetails, bool) {
	switch d := unit.Details.(type) {
	case GoFunctionDetails:
		return d, true
	case *GoFunctionDetails:
		if d != nil {
			return *d, true
		}
	}
	return GoFunctionDetails{}, false
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
