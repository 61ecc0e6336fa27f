package parser

import (
	"strings"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		want      string
		expectErr bool
	}{
		{
			name:  "bare attribute",
			input: "(HasStornext)",
			want:  "(HasStornext)",
		},
		{
			name:  "number comparison",
			input: "(CUDAGlobalMemoryMb > 2000)",
			want:  "(CUDAGlobalMemoryMb > 2000)",
		},
		{
			name:  "string comparison",
			input: `(Machine == "vm01.eps.ac.uk")`,
			want:  `(Machine == "vm01.eps.ac.uk")`,
		},
		{
			name:  "uneven spacing",
			input: "(CUDAGlobalMemoryMb>2000)",
			want:  "(CUDAGlobalMemoryMb > 2000)",
		},
		{
			name:  "and chain",
			input: "(HasStornext) && (CUDAGlobalMemoryMb > 2000) && (CUDAGlobalMemoryMb < 24000)",
			want:  "(HasStornext) && (CUDAGlobalMemoryMb > 2000) && (CUDAGlobalMemoryMb < 24000)",
		},
		{
			name:  "or group",
			input: `((Machine == "vm01") || (Machine == "vm02"))`,
			want:  `((Machine == "vm01") || (Machine == "vm02"))`,
		},
		{
			name:  "deny list",
			input: `(Machine != "vm01") && (Machine != "vm02")`,
			want:  `(Machine != "vm01") && (Machine != "vm02")`,
		},
		{
			name:  "capability threshold",
			input: "(CUDACapability > 2.0)",
			want:  "(CUDACapability > 2)",
		},
		{
			name:  "ident comparison",
			input: "(OpSysName == CentOS)",
			want:  "(OpSysName == CentOS)",
		},
		{
			name:      "scoped attribute unsupported",
			input:     "(TARGET.Machine == \"vm01\")",
			expectErr: true,
		},
		{
			name:  "full requirements line",
			input: `(HasStornext) && (CUDAGlobalMemoryMb > 2000) && (NotProjectOwned) && ((Machine == "vm01") || (Machine == "vm02"))`,
			want:  `(HasStornext) && (CUDAGlobalMemoryMb > 2000) && (NotProjectOwned) && ((Machine == "vm01") || (Machine == "vm02"))`,
		},
		{
			name:      "missing right operand",
			input:     "(CUDAGlobalMemoryMb >)",
			expectErr: true,
		},
		{
			name:      "unbalanced parenthesis",
			input:     "((HasStornext)",
			expectErr: true,
		},
		{
			name:      "empty input",
			input:     "",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			expr, err := Parse(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := expr.String(); got != tc.want {
				t.Fatalf("unexpected rendering: %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseRerenderStable(t *testing.T) {
	input := `(HasStornext) && ((Machine == "vm01") || (Machine == "vm02")) && (CUDACapability > 2.0)`

	expr, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := expr.String()
	again, err := Parse(first)
	if err != nil {
		t.Fatalf("unexpected error reparsing %q: %v", first, err)
	}
	if got := again.String(); got != first {
		t.Fatalf("rendering not stable: %q want %q", got, first)
	}
}

func TestExpressionTree(t *testing.T) {
	expr, err := Parse(`(HasStornext) && ((Machine == "vm01") || (Machine == "vm02"))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree := expr.Tree()
	if !strings.Contains(tree, "AND") {
		t.Fatalf("tree missing AND branch:\n%s", tree)
	}
	if !strings.Contains(tree, "OR") {
		t.Fatalf("tree missing OR branch:\n%s", tree)
	}
	if !strings.Contains(tree, "HasStornext") {
		t.Fatalf("tree missing leaf clause:\n%s", tree)
	}
	if !strings.Contains(tree, `Machine == "vm01"`) {
		t.Fatalf("tree missing comparison leaf:\n%s", tree)
	}
}
