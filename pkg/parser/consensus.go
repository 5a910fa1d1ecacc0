package parser

import (
	"regexp"
	"strings"
)

// consensusPattern pulls the consensus label out of an epoch marker line.
// The simulator logs the consensus valid-after time after "consensus from".
var consensusPattern = regexp.MustCompile(`consensus from\s+(.+)$`)

// ExtractConsensus returns the consensus label from an epoch marker line,
// or the empty string when the line carries none. The label is purely
// informational; epoch accounting does not depend on it.
func ExtractConsensus(line string) string {
	matches := consensusPattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(matches[1])
}
