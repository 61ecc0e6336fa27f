package submitfile

import "strings"

// ParseAttributes extracts the key = value pairs from a rendered submit
// description, skipping comment lines and the queue directive. A duplicate
// key keeps the last value, which is how the scheduler reads the file too.
func ParseAttributes(text string) map[string]string {
	attrs := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || line == "queue" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return attrs
}
