package manifest

import (
	"testing"
)

func TestParseDataFileScalars(t *testing.T) {
	doc, err := parseDataFile(`@{
    Name    = 'O''Brien'
    Title   = "quoted ` + "`" + `" inner"
    Count   = 42
    Ratio   = 1.5
    Enabled = $true
    Hidden  = $false
    Missing = $null
}`)
	if err != nil {
		t.Fatalf("parseDataFile: %v", err)
	}
	if doc["Name"] != "O'Brien" {
		t.Errorf("single-quote escaping: got %q", doc["Name"])
	}
	if doc["Title"] != `quoted " inner` {
		t.Errorf("backtick escaping: got %q", doc["Title"])
	}
	if doc["Count"] != int64(42) {
		t.Errorf("integer: got %#v", doc["Count"])
	}
	if doc["Ratio"] != 1.5 {
		t.Errorf("float: got %#v", doc["Ratio"])
	}
	if doc["Enabled"] != true || doc["Hidden"] != false {
		t.Errorf("booleans: got %#v / %#v", doc["Enabled"], doc["Hidden"])
	}
	if doc["Missing"] != nil {
		t.Errorf("$null: got %#v", doc["Missing"])
	}
}

func TestParseDataFileNesting(t *testing.T) {
	doc, err := parseDataFile(`@{
    Modules = @(
        @{ Name = 'A' },
        @{ Name = 'B' }
        @{ Name = 'C' }
    )
    Empty = @()
}`)
	if err != nil {
		t.Fatalf("parseDataFile: %v", err)
	}
	items, ok := doc["Modules"].([]interface{})
	if !ok || len(items) != 3 {
		t.Fatalf("Modules: got %#v", doc["Modules"])
	}
	for i, want := range []string{"A", "B", "C"} {
		record, ok := items[i].(map[string]interface{})
		if !ok || record["Name"] != want {
			t.Fatalf("Modules[%d]: got %#v", i, items[i])
		}
	}
	if empty, ok := doc["Empty"].([]interface{}); !ok || len(empty) != 0 {
		t.Fatalf("Empty: got %#v", doc["Empty"])
	}
}

func TestParseDataFileComments(t *testing.T) {
	doc, err := parseDataFile(`
# leading comment
@{
    <# block
       comment #>
    Key = 'value' # trailing comment
}`)
	if err != nil {
		t.Fatalf("parseDataFile: %v", err)
	}
	if doc["Key"] != "value" {
		t.Fatalf("Key: got %#v", doc["Key"])
	}
}

func TestParseDataFileErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"not a hashtable", `'just a string'`},
		{"unterminated hashtable", `@{ Key = 'value'`},
		{"unterminated string", `@{ Key = 'value }`},
		{"missing equals", `@{ Key 'value' }`},
		{"duplicate key", `@{ Key = 1; Key = 2 }`},
		{"arbitrary variable", `@{ Key = $env }`},
		{"trailing content", `@{ Key = 1 } @{ More = 2 }`},
	}
	for _, tc := range cases {
		if _, err := parseDataFile(tc.input); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
